package alert

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	EmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbfeed_alerts_emitted_total",
		Help: "Total number of new-opportunity alerts emitted",
	})

	ThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbfeed_alerts_throttled_total",
		Help: "Total number of alerts suppressed by the throttle window",
	})

	DroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbfeed_alerts_dropped_total",
		Help: "Total number of alerts dropped due to a full channel",
	})
)
