// Package ctrader — транспортная обвязка сессии: трассировка и метрики
// поверх ctrader.FrameHandler.
package ctrader

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/YaganovValera/ctrader-connect/pkg/ctrader"
)

var tracer = otel.Tracer("ctrader-connect/transport")

// WithMetrics оборачивает обработчик фреймов span-ом и счётчиком
// по типу сообщения.
func WithMetrics(next ctrader.FrameHandler) ctrader.FrameHandler {
	return ctrader.FrameHandlerFunc(func(ctx context.Context, f ctrader.Frame) {
		ctx, span := tracer.Start(ctx, "ctrader.frame")
		span.SetAttributes(attribute.String("payload_type", f.PayloadType.String()))
		IncFrame(f.PayloadType.String())
		next.HandleFrame(ctx, f)
		span.End()
	})
}
