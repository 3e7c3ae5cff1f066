// pkg/ctrader/listener.go
package ctrader

import (
	"context"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/YaganovValera/ctrader-connect/pkg/logger"
)

// FrameHandler получает каждый декодированный входящий фрейм.
// Реализация не должна блокироваться надолго: вызовы идут из
// единственной горутины чтения.
type FrameHandler interface {
	HandleFrame(ctx context.Context, f Frame)
}

// FrameHandlerFunc адаптирует функцию под FrameHandler.
type FrameHandlerFunc func(ctx context.Context, f Frame)

func (fn FrameHandlerFunc) HandleFrame(ctx context.Context, f Frame) { fn(ctx, f) }

// runListener читает фреймы до закрытия соединения. Ошибка декодирования
// отдельного фрейма логируется и пропускается; цикл завершается только
// по транспортной ошибке (nil — если соединение закрыто сознательно).
func runListener(conn *websocket.Conn, quit <-chan struct{}, codec Codec, handler FrameHandler, log *logger.Logger) error {
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-quit:
				return nil // teardown инициирован нами
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Info("ws: closed by peer", zap.Error(err))
			} else {
				log.Warn("ws: read error", zap.Error(err))
			}
			return &TransportError{Op: "read", Err: err}
		}

		if msgType != codec.MessageType() {
			metrics.UnexpectedFrames.Inc()
			log.Debug("ws: unexpected frame type", zap.Int("type", msgType))
			continue
		}

		frame, err := codec.Decode(data)
		if err != nil {
			metrics.DecodeErrors.Inc()
			log.Warn("ws: frame decode failed", zap.Error(err))
			continue
		}
		metrics.FramesRead.Inc()

		ctx := context.Background()
		if frame.ClientMsgID != "" {
			ctx = logger.ContextWithClientMsgID(ctx, frame.ClientMsgID)
		}
		handler.HandleFrame(ctx, frame)
	}
}
