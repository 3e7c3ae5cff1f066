package dispatch

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/YaganovValera/ctrader-connect/internal/metrics"
	"github.com/YaganovValera/ctrader-connect/pkg/ctrader"
	"github.com/YaganovValera/ctrader-connect/pkg/ctrader/openapi"
	"github.com/YaganovValera/ctrader-connect/pkg/logger"
)

// errorProcessor логирует ErrorRes (2142), не сопоставленные ни с одним
// ожидающим запросом: брокер шлёт их и без clientMsgId.
type errorProcessor struct {
	log *logger.Logger
}

// NewErrorProcessor создаёт обработчик незапрошенных ошибок брокера.
func NewErrorProcessor(log *logger.Logger) Processor {
	return &errorProcessor{log: log.Named("broker-errors")}
}

func (e *errorProcessor) Process(ctx context.Context, f ctrader.Frame) error {
	var res openapi.ErrorRes
	if len(f.JSONPayload) > 0 {
		if err := json.Unmarshal(f.JSONPayload, &res); err != nil {
			metrics.ParseErrors.Inc()
			return nil
		}
	} else if err := res.UnmarshalProto(f.Payload); err != nil {
		metrics.ParseErrors.Inc()
		return nil
	}

	e.log.WithContext(ctx).Warn("broker error",
		zap.String("error_code", res.ErrorCode),
		zap.String("description", res.Description),
		zap.Int64("account_id", res.AccountID),
	)
	return nil
}
