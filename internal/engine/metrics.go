package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus instruments.
type Metrics struct {
	requests    *prometheus.CounterVec
	tokensSaved prometheus.Counter
	transforms  *prometheus.CounterVec
	duration    prometheus.Histogram
}

// NewMetrics registers the engine metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "spectyra_optimize_requests_total",
			Help: "Optimization requests by level and verdict.",
		}, []string{"level", "recommendation"}),
		tokensSaved: factory.NewCounter(prometheus.CounterOpts{
			Name: "spectyra_tokens_saved_total",
			Help: "Total input tokens saved across all requests.",
		}),
		transforms: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "spectyra_transforms_applied_total",
			Help: "Applied transforms by name.",
		}, []string{"transform"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "spectyra_optimize_duration_seconds",
			Help:    "End-to-end optimization pipeline duration.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) observe(level, recommendation string, saved int, applied []string, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(level, recommendation).Inc()
	if saved > 0 {
		m.tokensSaved.Add(float64(saved))
	}
	for _, name := range applied {
		m.transforms.WithLabelValues(name).Inc()
	}
	m.duration.Observe(seconds)
}
