// pkg/ctrader/errors.go
package ctrader

import (
	"errors"
	"fmt"

	"github.com/YaganovValera/ctrader-connect/pkg/ctrader/openapi"
)

// ErrConnClosed возвращается при попытке отправки через закрытую сессию.
var ErrConnClosed = errors.New("ctrader: connection closed")

// TransportError — ошибка уровня WebSocket-транспорта.
type TransportError struct {
	Op  string // "dial", "read", "write"
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("ctrader: transport %s: %v", e.Op, e.Err)
}
func (e *TransportError) Unwrap() error { return e.Err }

// EncodeError — полезная нагрузка не сериализуется выбранным кодеком.
type EncodeError struct {
	PayloadType openapi.PayloadType
	Err         error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("ctrader: encode %s: %v", e.PayloadType, e.Err)
}
func (e *EncodeError) Unwrap() error { return e.Err }

// HTTPError — неуспешный ответ OAuth-сервера.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("ctrader: http status %d: %s", e.StatusCode, e.Body)
}

// TimeoutError — запрос не получил ответа за отведённое время.
// Используется слоем корреляции при вытеснении ожидающих записей.
type TimeoutError struct {
	ClientMsgID string
	PayloadType openapi.PayloadType
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("ctrader: request %s (%s) timed out", e.ClientMsgID, e.PayloadType)
}
