package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides observability for decision batches.
type Metrics struct {
	registry *prometheus.Registry

	// Decision outcomes by outcome and deciding rule
	DecisionOutcome *prometheus.CounterVec

	// Per-record evaluation latency
	EvaluateLatency prometheus.Histogram

	// Batch sizes
	BatchSize prometheus.Histogram
}

// New creates a Metrics instance registered on its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		DecisionOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "borderguard_decision_outcomes_total",
			Help: "Total decision outcomes by outcome and rule",
		}, []string{"outcome", "rule"}),

		EvaluateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "borderguard_evaluate_duration_seconds",
			Help:    "Duration of a single traveller evaluation",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),

		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "borderguard_batch_size",
			Help:    "Number of traveller records per decision batch",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}

// IncrementOutcome records a decision outcome.
func (m *Metrics) IncrementOutcome(outcome, rule string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(outcome, rule).Inc()
	}
}

// ObserveEvaluateLatency records the duration of one evaluation.
func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// ObserveBatchSize records the number of records in a batch.
func (m *Metrics) ObserveBatchSize(n int) {
	if m != nil {
		m.BatchSize.Observe(float64(n))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and embedding.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
