package websocket

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// ActiveConnections is 1 while the feed connection is up.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arbfeed_ws_active_connections",
		Help: "Whether the feed WebSocket connection is currently established",
	})

	// FramesTotal tracks received frames by kind.
	FramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbfeed_ws_frames_total",
			Help: "Total number of frames received from the feed",
		},
		[]string{"kind"},
	)

	// SignalsDroppedTotal counts event signals dropped on a full channel.
	SignalsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbfeed_ws_signals_dropped_total",
		Help: "Total number of event signals dropped due to a full channel",
	})

	// ReconnectAttemptsTotal counts reconnection attempts.
	ReconnectAttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbfeed_ws_reconnect_attempts_total",
		Help: "Total number of reconnection attempts",
	})

	// ReconnectFailuresTotal counts failed reconnection attempts.
	ReconnectFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbfeed_ws_reconnect_failures_total",
		Help: "Total number of failed reconnection attempts",
	})
)
