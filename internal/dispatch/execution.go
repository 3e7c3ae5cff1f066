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

// executionProcessor публикует события исполнения (2126) в Kafka.
// Ключ — ctidTraderAccountId: события одного аккаунта упорядочены.
type executionProcessor struct {
	producer kafka.Producer
	topic    string
	log      *logger.Logger
}

// NewExecutionProcessor создаёт обработчик событий исполнения.
func NewExecutionProcessor(p kafka.Producer, topic string, log *logger.Logger) Processor {
	return &executionProcessor{producer: p, topic: topic, log: log.Named("execution")}
}

func (ep *executionProcessor) Process(ctx context.Context, f ctrader.Frame) error {
	ctx, span := otel.Tracer("ctrader-connect/dispatch/execution").Start(ctx, "Process")
	defer span.End()

	var evt openapi.ExecutionEvent
	var raw []byte
	if len(f.JSONPayload) > 0 {
		raw = f.JSONPayload
		if err := json.Unmarshal(f.JSONPayload, &evt); err != nil {
			metrics.ParseErrors.Inc()
			ep.log.WithContext(ctx).Error("failed to unmarshal execution event", zap.Error(err))
			span.RecordError(err)
			return nil
		}
	} else {
		raw = f.Payload
		if err := evt.UnmarshalProto(f.Payload); err != nil {
			metrics.ParseErrors.Inc()
			ep.log.WithContext(ctx).Error("failed to parse execution event", zap.Error(err))
			span.RecordError(err)
			return nil
		}
	}

	key := []byte(strconv.FormatInt(evt.AccountID, 10))
	start := time.Now()
	if err := ep.producer.Publish(ctx, ep.topic, key, raw); err != nil {
		ep.log.WithContext(ctx).Error("publish execution event failed",
			zap.Int64("account_id", evt.AccountID),
			zap.Int32("execution_type", evt.ExecutionType),
			zap.Error(err),
		)
		span.RecordError(err)
		return err
	}
	metrics.PublishLatency.Observe(time.Since(start).Seconds())
	return nil
}
