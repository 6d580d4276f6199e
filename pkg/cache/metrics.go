package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	HitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbfeed_cache_hits_total",
		Help: "Total number of cache hits",
	})

	MissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbfeed_cache_misses_total",
		Help: "Total number of cache misses",
	})

	SetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbfeed_cache_sets_total",
		Help: "Total number of cache sets",
	})
)
