package dispatch

import (
	"context"

	"github.com/YaganovValera/ctrader-connect/pkg/ctrader"
)

// Processor обрабатывает незапрошенные события одного типа.
type Processor interface {
	// Process разбирает событие и публикует результат в Kafka.
	Process(ctx context.Context, f ctrader.Frame) error
}
