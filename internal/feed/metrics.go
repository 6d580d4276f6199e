package feed

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// EventsTotal counts normalized opportunity events processed.
	EventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbfeed_events_processed_total",
		Help: "Total number of normalized opportunity events processed",
	})

	// EventProcessingDuration tracks normalize+upsert latency per payload.
	EventProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arbfeed_event_processing_duration_seconds",
		Help:    "Time spent normalizing and upserting one event payload",
		Buckets: prometheus.ExponentialBuckets(0.00001, 10, 6),
	})
)
