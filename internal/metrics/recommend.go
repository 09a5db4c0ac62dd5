package metrics

import "github.com/prometheus/client_golang/prometheus"

// Recommendation engine Prometheus metrics.
var (
	RecommendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assessdex",
			Name:      "recommend_requests_total",
			Help:      "Total number of recommendation requests",
		},
		[]string{"status"}, // "ok" / "empty" / "error"
	)

	RecommendDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "assessdex",
			Name:      "recommend_duration_seconds",
			Help:      "Recommendation request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	ResultCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assessdex",
			Name:      "result_cache_total",
			Help:      "Result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	IndexBuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "assessdex",
			Name:      "index_builds_total",
			Help:      "Total number of vector index builds",
		},
		[]string{"status"}, // "ok" / "error"
	)

	IndexItems = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "assessdex",
			Name:      "index_items",
			Help:      "Number of items in the active vector index",
		},
	)
)

var recMetricsRegistered bool

// RegisterRecommendMetrics registers Prometheus ranking metrics. Must be called once from main.
func RegisterRecommendMetrics() {
	if recMetricsRegistered {
		return
	}
	prometheus.MustRegister(RecommendRequestsTotal)
	prometheus.MustRegister(RecommendDuration)
	prometheus.MustRegister(ResultCacheTotal)
	prometheus.MustRegister(IndexBuildsTotal)
	prometheus.MustRegister(IndexItems)
	recMetricsRegistered = true
}
