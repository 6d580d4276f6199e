package normalize

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// MalformedEventsTotal counts raw events that were logged and skipped.
	MalformedEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbfeed_malformed_events_total",
		Help: "Total number of malformed raw events skipped at the normalization boundary",
	})
)
