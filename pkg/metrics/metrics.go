// Package metrics exposes Prometheus instruments for graph generation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/OFFIS-RIT/idisland/pkg/common"
)

const namespace = "idisland"

// Metrics groups the generation instruments registered on one registry.
type Metrics struct {
	runs          *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	islands       prometheus.Counter
	identities    prometheus.Counter
	anomalies     *prometheus.CounterVec
	fallbacks     prometheus.Counter
	persistErrors *prometheus.CounterVec
}

// New registers the instruments on reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		// Labels: status (completed, failed)
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "runs_total",
			Help:      "Generation runs by final status",
		}, []string{"status"}),
		// Labels: stage (generate, persist)
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "stage_duration_seconds",
			Help:      "Time spent per generation stage",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		islands: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "islands_total",
			Help:      "Identity islands generated",
		}),
		identities: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "identities_total",
			Help:      "Identity nodes generated, including anomalies",
		}),
		// Labels: kind (duplicate_identity, inconsistent_reference, ...)
		anomalies: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "anomalies_total",
			Help:      "Injected anomalies by kind",
		}, []string{"kind"}),
		fallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "mislink_fallbacks_total",
			Help:      "Mislinks that fell back to a random foreign identity",
		}),
		// Labels: backend (postgres, s3, file)
		persistErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "persist_errors_total",
			Help:      "Failed snapshot writes by storage backend",
		}, []string{"backend"}),
	}
}

// ObserveStage records how long a stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	m.duration.WithLabelValues(stage).Observe(d.Seconds())
}

// RunCompleted counts a successful run and its output.
func (m *Metrics) RunCompleted(islands, identities int, labels []common.AnomalyLabel) {
	m.runs.WithLabelValues("completed").Inc()
	m.islands.Add(float64(islands))
	m.identities.Add(float64(identities))
	for _, l := range labels {
		m.anomalies.WithLabelValues(string(l.Kind)).Inc()
		if l.Fallback {
			m.fallbacks.Inc()
		}
	}
}

// RunFailed counts a run that ended with an error.
func (m *Metrics) RunFailed() {
	m.runs.WithLabelValues("failed").Inc()
}

// PersistFailed counts a failed write to backend.
func (m *Metrics) PersistFailed(backend string) {
	m.persistErrors.WithLabelValues(backend).Inc()
}
