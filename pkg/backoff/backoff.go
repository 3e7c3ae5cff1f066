// pkg/backoff/backoff.go
package backoff

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/YaganovValera/ctrader-connect/pkg/logger"
)

// -----------------------------------------------------------------------------
// Prometheus-метрики
// -----------------------------------------------------------------------------

var metrics = struct {
	Retries   prometheus.Counter
	Failures  prometheus.Counter
	Successes prometheus.Counter
	Delays    prometheus.Histogram
}{
	Retries: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ctrader", Subsystem: "backoff", Name: "retries_total",
		Help: "Number of back-off retry attempts",
	}),
	Failures: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ctrader", Subsystem: "backoff", Name: "failures_total",
		Help: "Number of operations that gave up after retries",
	}),
	Successes: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ctrader", Subsystem: "backoff", Name: "successes_total",
		Help: "Number of operations that eventually succeeded",
	}),
	Delays: promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ctrader", Subsystem: "backoff", Name: "retry_delay_seconds",
		Help:    "Histogram of retry delays (seconds)",
		Buckets: prometheus.DefBuckets,
	}),
}

// -----------------------------------------------------------------------------
// Configuration
// -----------------------------------------------------------------------------

// Config хранит настройки экспоненциального backoff-а.
// Multiplier == 1 и RandomizationFactor == 0 дают фиксированную задержку —
// так сконфигурирован connect-retry сессии (5s между попытками, без лимита).
type Config struct {
	InitialInterval     time.Duration `mapstructure:"initial_interval"`      // если 0 — 1s
	RandomizationFactor float64       `mapstructure:"randomization_factor"`  // jitter, [0,1]
	Multiplier          float64       `mapstructure:"multiplier"`            // если 0 — 2.0
	MaxInterval         time.Duration `mapstructure:"max_interval"`          // если 0 — 30s
	MaxElapsedTime      time.Duration `mapstructure:"max_elapsed_time"`      // 0 = без лимита
	MaxRetries          uint64        `mapstructure:"max_retries"`           // 0 = без лимита попыток
	PerAttemptTimeout   time.Duration `mapstructure:"per_attempt_timeout"`   // 0 = без таймаута
}

func (c *Config) applyDefaults() {
	if c.InitialInterval <= 0 {
		c.InitialInterval = time.Second
	}
	if c.Multiplier <= 0 {
		c.Multiplier = 2.0
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = 30 * time.Second
	}
}

func (c Config) validate() error {
	if c.RandomizationFactor < 0 || c.RandomizationFactor > 1 {
		return fmt.Errorf("backoff: RandomizationFactor must be in [0,1]")
	}
	if c.Multiplier != 0 && c.Multiplier < 1 {
		return fmt.Errorf("backoff: Multiplier must be >= 1")
	}
	return nil
}

// RetryableFunc is a unit of work that may be re-executed until it
// succeeds or the back-off strategy gives up.
type RetryableFunc func(ctx context.Context) error

// -----------------------------------------------------------------------------
// Errors
// -----------------------------------------------------------------------------

// ErrMaxRetries is returned from Execute(..) when the function was still
// failing after all retries were exhausted.
type ErrMaxRetries struct {
	Err      error // last error returned by fn
	Attempts int   // number of attempts performed
}

func (e *ErrMaxRetries) Error() string {
	return fmt.Sprintf("backoff: %d attempt(s) failed: %v", e.Attempts, e.Err)
}
func (e *ErrMaxRetries) Unwrap() error { return e.Err }

// Permanent marks an error as non-retryable.
func Permanent(err error) error { return backoff.Permanent(err) }

// -----------------------------------------------------------------------------
// Core
// -----------------------------------------------------------------------------

// Execute runs fn() with a back-off strategy defined by cfg, emitting
// Prometheus metrics and structured logs via log.
func Execute(ctx context.Context, cfg Config, log *logger.Logger, fn RetryableFunc) error {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("backoff: invalid config: %w", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	bo.RandomizationFactor = cfg.RandomizationFactor
	bo.Multiplier = cfg.Multiplier
	bo.MaxInterval = cfg.MaxInterval
	bo.MaxElapsedTime = cfg.MaxElapsedTime // 0 → без общего лимита

	var strategy backoff.BackOff = backoff.WithContext(bo, ctx)
	if cfg.MaxRetries > 0 {
		strategy = backoff.WithMaxRetries(strategy, cfg.MaxRetries)
	}

	attempts := 0
	operation := func() error {
		attempts++
		if cfg.PerAttemptTimeout > 0 {
			atCtx, cancel := context.WithTimeout(ctx, cfg.PerAttemptTimeout)
			defer cancel()
			return fn(atCtx)
		}
		return fn(ctx)
	}
	notify := func(err error, delay time.Duration) {
		metrics.Retries.Inc()
		metrics.Delays.Observe(delay.Seconds())
		log.Warn("back-off retry",
			zap.Int("attempt", attempts),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
	}

	if err := backoff.RetryNotify(operation, strategy, notify); err != nil {
		metrics.Failures.Inc()
		log.Error("back-off give-up",
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return &ErrMaxRetries{Err: err, Attempts: attempts}
	}

	metrics.Successes.Inc()
	return nil
}
