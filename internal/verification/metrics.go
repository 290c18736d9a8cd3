package verification

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_transitions_total",
			Help: "Total number of applied verification transitions",
		},
		[]string{"event"},
	)

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "verification_active_sessions",
		Help: "Number of verification sessions held in memory",
	})

	storeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verification_store_errors_total",
			Help: "Session store operations that failed and were skipped",
		},
		[]string{"operation"},
	)
)
