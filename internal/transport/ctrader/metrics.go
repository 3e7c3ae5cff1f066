package ctrader

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once       sync.Once
	wsFrames   *prometheus.CounterVec
	wsSessions *prometheus.CounterVec
)

// RegisterMetrics регистрирует метрики транспортного слоя.
// r == nil — регистрация в DefaultRegisterer.
func RegisterMetrics(r prometheus.Registerer) {
	once.Do(func() {
		if r == nil {
			r = prometheus.DefaultRegisterer
		}

		wsFrames = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ctrader", Subsystem: "transport", Name: "frames_total",
			Help: "Total inbound frames by payload type",
		}, []string{"payload_type"})

		wsSessions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ctrader", Subsystem: "transport", Name: "sessions_total",
			Help: "Session lifecycle transitions",
		}, []string{"event"})

		for _, c := range []prometheus.Collector{wsFrames, wsSessions} {
			_ = r.Register(c)
		}
	})
}

// IncFrame учитывает входящий фрейм данного типа.
func IncFrame(payloadType string) { wsFrames.WithLabelValues(payloadType).Inc() }

// IncSession учитывает событие жизненного цикла сессии
// ("connected", "reconnected", "failed").
func IncSession(event string) { wsSessions.WithLabelValues(event).Inc() }
