// pkg/ctrader/heartbeat.go
package ctrader

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/YaganovValera/ctrader-connect/pkg/logger"
)

// runHeartbeat шлёт keep-alive каждые interval до закрытия quit.
// Ошибка отправки завершает цикл: соединение считается мёртвым.
func runHeartbeat(quit <-chan struct{}, interval time.Duration, send func(ctx context.Context) error, log *logger.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return nil
		case <-ticker.C:
			if err := send(context.Background()); err != nil {
				log.Warn("heartbeat send failed", zap.Error(err))
				return err
			}
			log.Debug("heartbeat sent")
		}
	}
}
