package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// FramesRouted — число входящих фреймов, прошедших через маршрутизатор.
	FramesRouted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ctrader",
		Subsystem: "dispatch",
		Name:      "frames_routed_total",
		Help:      "Total number of inbound frames seen by the dispatch router",
	})

	// ResponsesMatched — число ответов, доставленных ожидающим запросам.
	ResponsesMatched = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ctrader",
		Subsystem: "dispatch",
		Name:      "responses_matched_total",
		Help:      "Responses correlated with a pending request",
	})

	// CorrelationTimeouts — число запросов, вытесненных по таймауту.
	CorrelationTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ctrader",
		Subsystem: "dispatch",
		Name:      "correlation_timeouts_total",
		Help:      "Pending requests evicted because no response arrived in time",
	})

	// PendingRequests — текущее число ожидающих корреляции запросов.
	PendingRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ctrader",
		Subsystem: "dispatch",
		Name:      "pending_requests",
		Help:      "Requests currently waiting for a response",
	})

	// ParseErrors — число событий, которые не удалось разобрать.
	ParseErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ctrader",
		Subsystem: "dispatch",
		Name:      "parse_errors_total",
		Help:      "Inbound event payloads that failed to parse",
	})

	// PublishErrors — число ошибок публикации событий в Kafka.
	PublishErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ctrader",
		Subsystem: "kafka",
		Name:      "publish_errors_total",
		Help:      "Total number of errors when publishing to Kafka",
	})

	// PublishLatency — задержка от получения события до публикации в Kafka.
	PublishLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ctrader",
		Subsystem: "pipeline",
		Name:      "publish_latency_seconds",
		Help:      "Latency from receiving an event to publishing it to Kafka (seconds)",
		Buckets:   prometheus.DefBuckets,
	})
)

// Register регистрирует все метрики в заданном реестре.
// Можно вызвать без аргументов, чтобы зарегистрировать в DefaultRegisterer.
func Register(registerers ...prometheus.Registerer) {
	once.Do(func() {
		var reg prometheus.Registerer
		if len(registerers) > 0 && registerers[0] != nil {
			reg = registerers[0]
		} else {
			reg = prometheus.DefaultRegisterer
		}
		reg.MustRegister(
			FramesRouted,
			ResponsesMatched,
			CorrelationTimeouts,
			PendingRequests,
			ParseErrors,
			PublishErrors,
			PublishLatency,
		)
	})
}
