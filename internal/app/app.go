// internal/app/app.go
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/YaganovValera/ctrader-connect/internal/config"
	"github.com/YaganovValera/ctrader-connect/internal/dispatch"
	"github.com/YaganovValera/ctrader-connect/internal/metrics"
	transport "github.com/YaganovValera/ctrader-connect/internal/transport/ctrader"
	"github.com/YaganovValera/ctrader-connect/pkg/ctrader"
	"github.com/YaganovValera/ctrader-connect/pkg/ctrader/openapi"
	"github.com/YaganovValera/ctrader-connect/pkg/httpserver"
	"github.com/YaganovValera/ctrader-connect/pkg/kafka"
	"github.com/YaganovValera/ctrader-connect/pkg/logger"
	"github.com/YaganovValera/ctrader-connect/pkg/telemetry"
)

// Run собирает сервис и блокируется до отмены контекста или фатальной
// ошибки: сессия Open API → маршрутизатор → Kafka, плюс HTTP-сервер
// с метриками и readiness.
func Run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	metrics.Register(nil)
	transport.RegisterMetrics(nil)

	// Трассировка
	shutdownTracer, err := telemetry.InitTracer(ctx, telemetry.Config{
		Endpoint:       cfg.Telemetry.OTLPEndpoint,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Insecure:       cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer shutdownSafe(ctx, "telemetry", func() error { return shutdownTracer(ctx) }, log)

	// Kafka
	kafkaProd, err := kafka.NewProducer(ctx, kafka.Config{
		Brokers:        cfg.Kafka.Brokers,
		RequiredAcks:   cfg.Kafka.Acks,
		Timeout:        cfg.Kafka.Timeout,
		Compression:    cfg.Kafka.Compression,
		FlushFrequency: cfg.Kafka.FlushFrequency,
		FlushMessages:  cfg.Kafka.FlushMessages,
		Backoff:        cfg.Kafka.Backoff,
	}, log)
	if err != nil {
		return fmt.Errorf("kafka producer init: %w", err)
	}
	defer shutdownSafe(ctx, "kafka-producer", kafkaProd.Close, log)

	// Маршрутизатор и обработчики незапрошенных событий
	router := dispatch.NewRouter(cfg.Dispatch.ResponseTimeout, log)
	router.Register(openapi.PayloadTypeSpotEvent, dispatch.NewSpotProcessor(kafkaProd, cfg.Kafka.SpotTopic, log))
	router.Register(openapi.PayloadTypeExecutionEvent, dispatch.NewExecutionProcessor(kafkaProd, cfg.Kafka.ExecutionTopic, log))
	router.Register(openapi.PayloadTypeErrorRes, dispatch.NewErrorProcessor(log))

	// Сессия Open API
	sess, err := ctrader.NewSession(ctrader.Config{
		Demo:              cfg.CTrader.Demo,
		Encoding:          ctrader.Encoding(cfg.CTrader.Encoding),
		URL:               cfg.CTrader.URL,
		HeartbeatInterval: cfg.CTrader.HeartbeatInterval,
		ConnectBackoff:    cfg.CTrader.ConnectBackoff,
	}, transport.WithMetrics(router), log)
	if err != nil {
		return fmt.Errorf("session init: %w", err)
	}
	defer shutdownSafe(ctx, "session", sess.Close, log)

	// HTTP-сервер: /metrics, /healthz, /readyz
	readiness := func() error {
		if sess.State() != ctrader.StateConnected {
			return fmt.Errorf("session is %s", sess.State())
		}
		return kafkaProd.Ping(ctx)
	}
	httpSrv, err := httpserver.New(
		httpserver.Config{
			Addr:            fmt.Sprintf(":%d", cfg.HTTP.Port),
			ReadTimeout:     cfg.HTTP.ReadTimeout,
			WriteTimeout:    cfg.HTTP.WriteTimeout,
			IdleTimeout:     cfg.HTTP.IdleTimeout,
			ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
			MetricsPath:     cfg.HTTP.MetricsPath,
			HealthzPath:     cfg.HTTP.HealthzPath,
			ReadyzPath:      cfg.HTTP.ReadyzPath,
		},
		readiness,
		log,
		httpserver.RecoverMiddleware(log),
		httpserver.CORSMiddleware(),
	)
	if err != nil {
		return fmt.Errorf("httpserver init: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpSrv.Start(ctx) })

	// Надзор за сессией: connect → auth → subscribe, reconnect после обрыва.
	g.Go(func() error {
		for {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			if err := sess.Connect(ctx); err != nil {
				return fmt.Errorf("session connect: %w", err)
			}
			transport.IncSession("connected")

			if err := bootstrap(ctx, sess, router, &cfg.CTrader, log); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.WithContext(ctx).Error("session bootstrap failed", zap.Error(err))
				transport.IncSession("failed")
				_ = sess.Close()
				continue
			}
			log.WithContext(ctx).Info("session ready",
				zap.Int64("account_id", cfg.CTrader.AccountID),
				zap.Int("symbols", len(cfg.CTrader.SymbolIDs)),
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case err := <-sess.Done():
				log.WithContext(ctx).Warn("session lost, reconnecting", zap.Error(err))
				transport.IncSession("reconnected")
				_ = sess.Close()
			}
		}
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			log.WithContext(ctx).Info("service stopped by context")
			return nil
		}
		return err
	}
	return nil
}

// bootstrap проводит обязательную последовательность после подключения:
// авторизация приложения, авторизация аккаунта, подписка на котировки.
func bootstrap(ctx context.Context, sess *ctrader.Session, router *dispatch.Router, cfg *config.CTraderConfig, log *logger.Logger) error {
	_, err := request(ctx, sess, router, openapi.PayloadTypeApplicationAuthRes,
		openapi.ApplicationAuthReq{ClientID: cfg.ClientID, ClientSecret: cfg.ClientSecret})
	if err != nil {
		return fmt.Errorf("application auth: %w", err)
	}

	_, err = request(ctx, sess, router, openapi.PayloadTypeAccountAuthRes,
		openapi.AccountAuthReq{AccountID: cfg.AccountID, AccessToken: cfg.AccessToken})
	if err != nil {
		return fmt.Errorf("account auth: %w", err)
	}

	if len(cfg.SymbolIDs) > 0 {
		_, err = request(ctx, sess, router, openapi.PayloadTypeSubscribeSpotsRes,
			openapi.SubscribeSpotsReq{
				AccountID:                cfg.AccountID,
				SymbolIDs:                cfg.SymbolIDs,
				SubscribeToSpotTimestamp: cfg.SubscribeSpotTimestamp,
			})
		if err != nil {
			return fmt.Errorf("subscribe spots: %w", err)
		}
		log.Info("subscribed to spot quotes", zap.Int64s("symbol_ids", cfg.SymbolIDs))
	}
	return nil
}

// request регистрирует ожидание ответа под фактическим clientMsgId ДО
// отправки запроса (ответ не может обогнать регистрацию), затем отправляет
// и ждёт. ErrorRes вместо ожидаемого ответа превращается в ошибку.
func request(ctx context.Context, sess *ctrader.Session, router *dispatch.Router, resType openapi.PayloadType, payload openapi.Payload) (ctrader.Frame, error) {
	clientMsgID := uuid.NewString()
	pending := router.Track(clientMsgID, resType)
	if _, err := sess.SendPayload(ctx, clientMsgID, payload); err != nil {
		return ctrader.Frame{}, err
	}
	frame, err := pending.Wait(ctx)
	if err != nil {
		return ctrader.Frame{}, err
	}
	if frame.PayloadType == openapi.PayloadTypeErrorRes {
		return ctrader.Frame{}, brokerError(frame)
	}
	return frame, nil
}

// brokerError разбирает ErrorRes в ошибку с кодом и описанием.
func brokerError(f ctrader.Frame) error {
	var res openapi.ErrorRes
	if len(f.JSONPayload) > 0 {
		_ = json.Unmarshal(f.JSONPayload, &res)
	} else {
		_ = res.UnmarshalProto(f.Payload)
	}
	if res.ErrorCode == "" {
		return fmt.Errorf("broker error (unparsed)")
	}
	return fmt.Errorf("broker error %s: %s", res.ErrorCode, res.Description)
}

// shutdownSafe оборачивает вызов Close()/Shutdown() с логированием.
func shutdownSafe(ctx context.Context, name string, fn func() error, log *logger.Logger) {
	log.WithContext(ctx).Info(fmt.Sprintf("%s: shutting down", name))
	if err := fn(); err != nil {
		log.WithContext(ctx).Error(fmt.Sprintf("%s shutdown error", name), zap.Error(err))
	} else {
		log.WithContext(ctx).Info(fmt.Sprintf("%s: shutdown complete", name))
	}
}
