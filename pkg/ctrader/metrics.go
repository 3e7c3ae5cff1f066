// pkg/ctrader/metrics.go
package ctrader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var metrics = struct {
	Connects         prometheus.Counter
	Disconnects      prometheus.Counter
	FramesRead       prometheus.Counter
	FramesSent       prometheus.Counter
	DecodeErrors     prometheus.Counter
	WriteErrors      prometheus.Counter
	UnexpectedFrames prometheus.Counter
	Heartbeats       prometheus.Counter
}{
	Connects: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ctrader", Subsystem: "session", Name: "connects_total",
		Help: "Number of successfully established WebSocket connections",
	}),
	Disconnects: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ctrader", Subsystem: "session", Name: "disconnects_total",
		Help: "Number of connection teardowns (deliberate and failed)",
	}),
	FramesRead: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ctrader", Subsystem: "session", Name: "frames_read_total",
		Help: "Number of frames decoded and handed to the frame handler",
	}),
	FramesSent: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ctrader", Subsystem: "session", Name: "frames_sent_total",
		Help: "Number of frames written to the socket",
	}),
	DecodeErrors: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ctrader", Subsystem: "session", Name: "decode_errors_total",
		Help: "Number of inbound frames that failed to decode",
	}),
	WriteErrors: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ctrader", Subsystem: "session", Name: "write_errors_total",
		Help: "Number of failed socket writes",
	}),
	UnexpectedFrames: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ctrader", Subsystem: "session", Name: "unexpected_frames_total",
		Help: "Number of inbound frames whose WebSocket type does not match the codec",
	}),
	Heartbeats: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ctrader", Subsystem: "session", Name: "heartbeats_total",
		Help: "Number of heartbeat events sent",
	}),
}
