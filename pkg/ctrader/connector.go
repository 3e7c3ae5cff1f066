// pkg/ctrader/connector.go
package ctrader

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/YaganovValera/ctrader-connect/pkg/logger"
)

// Connector устанавливает и закрывает WebSocket-соединение.
// Политика повторов живёт уровнем выше, в Session.
type Connector struct {
	url string
	log *logger.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewConnector создаёт Connector для указанного адреса.
func NewConnector(url string, log *logger.Logger) *Connector {
	return &Connector{url: url, log: log.Named("connector")}
}

// Connect выполняет одну попытку подключения. Уже открытое соединение
// предварительно закрывается.
func (c *Connector) Connect(ctx context.Context) (*websocket.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}

	dialer := websocket.Dialer{HandshakeTimeout: 15 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, &TransportError{Op: "dial", Err: err}
	}

	c.conn = conn
	c.log.Sugar().Infow("ws: connected", "url", c.url)
	return conn, nil
}

// Close закрывает текущее соединение. Повторные вызовы безопасны.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	// Вежливый close-фрейм; ошибки записи здесь не важны.
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Reconnect закрывает старое соединение и открывает новое.
func (c *Connector) Reconnect(ctx context.Context) (*websocket.Conn, error) {
	_ = c.Close()
	return c.Connect(ctx)
}
