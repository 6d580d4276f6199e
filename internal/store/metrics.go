package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// OpportunitiesLive tracks the number of live records in the store.
	OpportunitiesLive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "arbfeed_opportunities_live",
		Help: "Number of live opportunities currently in the store",
	})

	// UpsertsTotal tracks upserts by result (created or updated).
	UpsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbfeed_store_upserts_total",
			Help: "Total number of store upserts",
		},
		[]string{"result"},
	)

	// EvictionsTotal tracks evictions by reason (expired or capacity).
	EvictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arbfeed_store_evictions_total",
			Help: "Total number of store evictions",
		},
		[]string{"reason"},
	)
)
