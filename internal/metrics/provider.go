package metrics

import "github.com/prometheus/client_golang/prometheus"

// Provider-call Prometheus metrics: embeddings and chat completions.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodvec",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "prodvec",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodvec",
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"model", "type"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodvec",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	ChatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodvec",
			Name:      "chat_requests_total",
			Help:      "Total number of chat completion requests",
		},
		[]string{"model", "op", "status"}, // op: "rewrite" / "rerank"
	)

	ChatRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "prodvec",
			Name:      "chat_request_duration_seconds",
			Help:      "Chat completion request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model", "op"},
	)

	SyncRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodvec",
			Name:      "sync_runs_total",
			Help:      "Total catalog sync runs",
		},
		[]string{"status"}, // "ok" / "partial" / "error"
	)

	SyncProductsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodvec",
			Name:      "sync_products_total",
			Help:      "Products processed by catalog sync",
		},
		[]string{"outcome"}, // "embedded" / "skipped" / "deleted" / "failed"
	)
)

var providerMetricsRegistered bool

// RegisterProviderMetrics registers provider and sync metrics. Must be called once from main.
func RegisterProviderMetrics() {
	if providerMetricsRegistered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingTokensTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(ChatRequestsTotal)
	prometheus.MustRegister(ChatRequestDuration)
	prometheus.MustRegister(SyncRunsTotal)
	prometheus.MustRegister(SyncProductsTotal)
	providerMetricsRegistered = true
}
