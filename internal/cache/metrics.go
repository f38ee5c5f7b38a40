package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheRequests counts read-through lookups by entity and result
	// (hit, miss, error).
	cacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "habits_cache_requests_total",
		Help: "Cache lookups by entity and result",
	}, []string{"entity", "result"})

	// cacheInvalidations counts invalidation passes by scope.
	cacheInvalidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "habits_cache_invalidations_total",
		Help: "Cache invalidations by scope",
	}, []string{"scope"})

	cacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "habits_cache_errors_total",
		Help: "Cache backend failures by operation",
	}, []string{"op"})
)
