// Package metrics declares the Prometheus collectors for the search service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search service Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "semrank",
			Name:      "search_requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"status"}, // "success" / "error"
	)

	SearchRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "semrank",
			Name:      "search_request_duration_seconds",
			Help:      "End-to-end search request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	CacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "semrank",
			Name:      "cache_total",
			Help:      "Result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	RateLimiterWaitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "semrank",
			Name:      "rate_limiter_wait_duration_seconds",
			Help:      "Time spent waiting for a rate limiter permit",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 15},
		},
	)

	RateLimiterRejectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "semrank",
			Name:      "rate_limiter_rejects_total",
			Help:      "Permit acquisitions that failed before a slot freed up",
		},
	)

	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "semrank",
			Name:      "provider_requests_total",
			Help:      "Total number of remote provider requests",
		},
		[]string{"backend", "status"}, // status: "success" / "error"
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "semrank",
			Name:      "provider_request_duration_seconds",
			Help:      "Remote provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend"},
	)

	ProviderRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "semrank",
			Name:      "provider_retries_total",
			Help:      "Retries issued against the remote provider",
		},
		[]string{"backend"},
	)
)

var registered bool

// RegisterMetrics registers all collectors. Must be called once from main.
func RegisterMetrics() {
	if registered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchRequestDuration)
	prometheus.MustRegister(CacheTotal)
	prometheus.MustRegister(RateLimiterWaitDuration)
	prometheus.MustRegister(RateLimiterRejectsTotal)
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(ProviderRequestDuration)
	prometheus.MustRegister(ProviderRetriesTotal)
	registered = true
}
