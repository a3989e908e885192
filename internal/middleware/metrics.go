package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command failures by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialfeed_redis_errors_total",
		Help: "Total number of Redis command errors",
	}, []string{"command"})

	// CacheHits counts read-through cache hits by key prefix.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialfeed_cache_hits_total",
		Help: "Total number of cache hits",
	}, []string{"prefix"})

	// CacheMisses counts read-through cache misses by key prefix.
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialfeed_cache_misses_total",
		Help: "Total number of cache misses",
	}, []string{"prefix"})

	// FeedsDeactivated counts feeds auto-hidden by the report threshold.
	FeedsDeactivated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socialfeed_feeds_deactivated_total",
		Help: "Total number of feeds deactivated by report threshold",
	})
)

var (
	promOnce sync.Once
	promMw   *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the Prometheus middleware for HTTP-level metrics.
// The middleware registers collectors in the default registry, so it is
// created once per process regardless of how many servers are built.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promMw = fiberprometheus.New(serviceName)
	})
	return promMw
}
