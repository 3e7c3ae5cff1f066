package dispatch

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/YaganovValera/ctrader-connect/internal/metrics"
	"github.com/YaganovValera/ctrader-connect/pkg/ctrader"
	"github.com/YaganovValera/ctrader-connect/pkg/ctrader/openapi"
	"github.com/YaganovValera/ctrader-connect/pkg/kafka"
	"github.com/YaganovValera/ctrader-connect/pkg/logger"
)

// spotProcessor публикует спотовые котировки (2131) в Kafka как есть,
// в той кодировке, в которой они пришли. Ключ сообщения — symbolId,
// чтобы котировки одного символа попадали в одну партицию.
type spotProcessor struct {
	producer kafka.Producer
	topic    string
	log      *logger.Logger
}

// NewSpotProcessor создаёт обработчик спотовых событий.
func NewSpotProcessor(p kafka.Producer, topic string, log *logger.Logger) Processor {
	return &spotProcessor{producer: p, topic: topic, log: log.Named("spot")}
}

func (sp *spotProcessor) Process(ctx context.Context, f ctrader.Frame) error {
	ctx, span := otel.Tracer("ctrader-connect/dispatch/spot").Start(ctx, "Process")
	defer span.End()

	var evt openapi.SpotEvent
	var raw []byte
	if len(f.JSONPayload) > 0 {
		raw = f.JSONPayload
		if err := json.Unmarshal(f.JSONPayload, &evt); err != nil {
			metrics.ParseErrors.Inc()
			sp.log.WithContext(ctx).Error("failed to unmarshal spot event", zap.Error(err))
			span.RecordError(err)
			return nil
		}
	} else {
		raw = f.Payload
		if err := evt.UnmarshalProto(f.Payload); err != nil {
			metrics.ParseErrors.Inc()
			sp.log.WithContext(ctx).Error("failed to parse spot event", zap.Error(err))
			span.RecordError(err)
			return nil
		}
	}

	key := []byte(strconv.FormatInt(evt.SymbolID, 10))
	start := time.Now()
	if err := sp.producer.Publish(ctx, sp.topic, key, raw); err != nil {
		sp.log.WithContext(ctx).Error("publish spot event failed",
			zap.Int64("symbol_id", evt.SymbolID),
			zap.Error(err),
		)
		span.RecordError(err)
		return err
	}
	metrics.PublishLatency.Observe(time.Since(start).Seconds())
	return nil
}
