package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Validations tracks consume attempts by outcome
	Validations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guestgate_validations_total",
		Help: "Total number of pass validation attempts by outcome",
	}, []string{"outcome"})

	// PassesIssued tracks passes created
	PassesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "guestgate_passes_issued_total",
		Help: "Total number of visitor passes issued",
	})

	// SessionCacheOperations tracks session cache hits and misses
	SessionCacheOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "guestgate_session_cache_operations_total",
		Help: "Total number of session cache hits and misses",
	}, []string{"result"})

	// DBConnectionsActive tracks open database connections
	DBConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "guestgate_db_connections_active",
		Help: "Number of active database connections",
	})
)
