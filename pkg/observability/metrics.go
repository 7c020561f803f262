// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the coverly backend.
package observability

import "github.com/prometheus/client_golang/prometheus"

// APIBuckets defines histogram buckets for interactive API latencies,
// ranging from 5ms to 10s.
var APIBuckets = []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// GenerationBuckets defines histogram buckets suited for LLM generation
// latencies, ranging from 250ms to 120s.
var GenerationBuckets = []float64{0.25, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts HTTP requests by method, route pattern, and
	// status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coverly_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "path", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method
	// and route pattern.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coverly_request_duration_seconds",
			Help:    "Request duration",
			Buckets: APIBuckets,
		},
		[]string{"method", "path"},
	)

	// AuthFailuresTotal counts rejected authentications by failure reason.
	// Reasons are internal label values and never appear in responses.
	AuthFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coverly_auth_failures_total",
			Help: "Authentication failures",
		},
		[]string{"reason"},
	)

	// GenerationTotal counts letter generations and job analyses by outcome.
	GenerationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coverly_generation_total",
			Help: "LLM generations",
		},
		[]string{"kind", "status"},
	)

	// GenerationDuration records provider round-trip time per generation kind.
	GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coverly_generation_duration_seconds",
			Help:    "Generation duration",
			Buckets: GenerationBuckets,
		},
		[]string{"kind"},
	)

	// ProviderTokensTotal counts tokens reported by the LLM provider
	// by direction (input/output).
	ProviderTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coverly_provider_tokens_total",
			Help: "Token count",
		},
		[]string{"direction"},
	)

	// ObjectStoreOperationsTotal counts object store calls by operation
	// and outcome.
	ObjectStoreOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coverly_objectstore_operations_total",
			Help: "Object store operations",
		},
		[]string{"op", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuthFailuresTotal,
		GenerationTotal,
		GenerationDuration,
		ProviderTokensTotal,
		ObjectStoreOperationsTotal,
	)
}
