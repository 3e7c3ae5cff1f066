// pkg/ctrader/endpoints.go
package ctrader

const (
	hostDemo = "demo.ctraderapi.com"
	hostLive = "live.ctraderapi.com"

	portProtobuf = "5035"
	portJSON     = "5036"
)

// OAuth-эндпоинты Open API.
const (
	DefaultAuthorizeURL = "https://openapi.ctrader.com/apps/auth"
	DefaultTokenURL     = "https://openapi.ctrader.com/apps/token"
)

// Resolve возвращает WebSocket-адрес для выбранной среды и кодировки.
func Resolve(demo bool, enc Encoding) string {
	host := hostLive
	if demo {
		host = hostDemo
	}
	port := portProtobuf
	if enc == EncodingJSON {
		port = portJSON
	}
	return "wss://" + host + ":" + port
}
