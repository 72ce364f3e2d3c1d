package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ProviderMetrics tracks the upstream resilience layer
type ProviderMetrics struct {
	// Upstream HTTP attempts by provider, operation and outcome
	UpstreamRequestsTotal *prometheus.CounterVec

	// Cache effectiveness per provider and operation
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Circuit breaker transitions to open
	BreakerOpenedTotal *prometheus.CounterVec

	// Upstream call latency
	UpstreamDuration *prometheus.HistogramVec
}

// NewProviderMetrics registers the provider metrics on the given registerer.
// Tests pass a fresh registry to avoid duplicate registration.
func NewProviderMetrics(registerer prometheus.Registerer) *ProviderMetrics {
	factory := promauto.With(registerer)

	return &ProviderMetrics{
		UpstreamRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Upstream HTTP attempts by provider, operation and outcome",
		}, []string{"provider", "operation", "outcome"}),

		CacheHitsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_cache_hits_total",
			Help: "Rate cache hits by provider and operation",
		}, []string{"provider", "operation"}),

		CacheMissesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_cache_misses_total",
			Help: "Rate cache misses by provider and operation",
		}, []string{"provider", "operation"}),

		BreakerOpenedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "circuit_breaker_opened_total",
			Help: "Circuit breaker transitions to the open state",
		}, []string{"provider"}),

		UpstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Upstream HTTP call latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider", "operation"}),
	}
}

// IncUpstream counts one upstream attempt outcome. Nil-safe.
func (providerMetrics *ProviderMetrics) IncUpstream(provider, operation, outcome string) {
	if providerMetrics == nil {
		return
	}
	providerMetrics.UpstreamRequestsTotal.WithLabelValues(provider, operation, outcome).Inc()
}

// IncCacheHit counts one cache hit. Nil-safe.
func (providerMetrics *ProviderMetrics) IncCacheHit(provider, operation string) {
	if providerMetrics == nil {
		return
	}
	providerMetrics.CacheHitsTotal.WithLabelValues(provider, operation).Inc()
}

// IncCacheMiss counts one cache miss. Nil-safe.
func (providerMetrics *ProviderMetrics) IncCacheMiss(provider, operation string) {
	if providerMetrics == nil {
		return
	}
	providerMetrics.CacheMissesTotal.WithLabelValues(provider, operation).Inc()
}

// IncBreakerOpened counts one breaker open transition. Nil-safe.
func (providerMetrics *ProviderMetrics) IncBreakerOpened(provider string) {
	if providerMetrics == nil {
		return
	}
	providerMetrics.BreakerOpenedTotal.WithLabelValues(provider).Inc()
}

// ObserveUpstreamDuration records one upstream call latency. Nil-safe.
func (providerMetrics *ProviderMetrics) ObserveUpstreamDuration(provider, operation string, seconds float64) {
	if providerMetrics == nil {
		return
	}
	providerMetrics.UpstreamDuration.WithLabelValues(provider, operation).Observe(seconds)
}
