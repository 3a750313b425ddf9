package reasoning

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors that report engine activity.
type Metrics struct {
	layerDuration     *prometheus.HistogramVec
	layerFailures     *prometheus.CounterVec
	earlyStops        prometheus.Counter
	escalations       prometheus.Counter
	consensusOutcomes *prometheus.CounterVec
	requestsActive    prometheus.Gauge
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// defaultMetrics returns the package-level metrics instance registered with
// the global Prometheus registry. The collectors are created only once to
// avoid duplicate registration panics when multiple engines exist (e.g. in
// unit tests).
func defaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics constructs a Metrics instance using the provided
// registerer. Callers supply a fresh registry when unique metric names are
// required (for example in tests). Registration errors panic, mirroring
// promauto semantics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		layerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "hazina",
				Subsystem: "reasoning",
				Name:      "layer_duration_seconds",
				Help:      "Duration of each reasoning layer call.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"layer", "status"},
		),
		layerFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hazina",
				Subsystem: "reasoning",
				Name:      "layer_failures_total",
				Help:      "Backend call failures per layer.",
			},
			[]string{"layer"},
		),
		earlyStops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazina",
			Subsystem: "reasoning",
			Name:      "early_stops_total",
			Help:      "Requests answered before exhausting the layer chain.",
		}),
		escalations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazina",
			Subsystem: "reasoning",
			Name:      "escalations_total",
			Help:      "Transitions from one layer to the next.",
		}),
		consensusOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "hazina",
				Subsystem: "reasoning",
				Name:      "consensus_outcomes_total",
				Help:      "Consensus resolution outcomes.",
			},
			[]string{"outcome"},
		),
		requestsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hazina",
			Subsystem: "reasoning",
			Name:      "requests_active",
			Help:      "Reasoning requests currently in flight.",
		}),
	}

	reg.MustRegister(
		m.layerDuration,
		m.layerFailures,
		m.earlyStops,
		m.escalations,
		m.consensusOutcomes,
		m.requestsActive,
	)
	return m
}

func (m *Metrics) observeLayer(layer string, seconds float64, failed bool) {
	if m == nil {
		return
	}
	status := "ok"
	if failed {
		status = "error"
		m.layerFailures.WithLabelValues(layer).Inc()
	}
	m.layerDuration.WithLabelValues(layer, status).Observe(seconds)
}

func (m *Metrics) observeConsensus(cross CrossValidation) {
	if m == nil {
		return
	}
	outcome := "unanimous"
	for _, issue := range cross.Issues {
		switch issue.Type {
		case IssueNoConsensus:
			outcome = "none"
		case IssuePartialConsensus:
			if outcome == "unanimous" {
				outcome = "partial"
			}
		}
	}
	m.consensusOutcomes.WithLabelValues(outcome).Inc()
}
