// Package metrics exposes prometheus instruments for the alerting engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics counts evaluation activity. All methods are nil-receiver safe so
// callers can treat the dependency as optional.
type Metrics struct {
	evaluations   *prometheus.CounterVec
	breaches      *prometheus.CounterVec
	alertsCreated *prometheus.CounterVec
	dedupSuppress prometheus.Counter
	evalFailures  prometheus.Counter
	registry      *prometheus.Registry
}

// New registers the engine instruments on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "utilitrack_evaluations_total",
			Help: "Evaluation passes per utility type.",
		}, []string{"utility"}),
		breaches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "utilitrack_breaches_total",
			Help: "Condition breaches observed, before streak gating.",
		}, []string{"condition"}),
		alertsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "utilitrack_alerts_created_total",
			Help: "Alerts emitted, by type and severity.",
		}, []string{"type", "severity"}),
		dedupSuppress: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "utilitrack_alerts_deduplicated_total",
			Help: "Qualifying breaches suppressed by an outstanding pending alert.",
		}),
		evalFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "utilitrack_evaluation_failures_total",
			Help: "Evaluation passes that returned an error.",
		}),
	}

	registry.MustRegister(m.evaluations, m.breaches, m.alertsCreated, m.dedupSuppress, m.evalFailures)
	return m
}

// Registry exposes the underlying registry for scraping surfaces.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) IncEvaluation(utility string) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(utility).Inc()
}

func (m *Metrics) IncBreach(condition string) {
	if m == nil {
		return
	}
	m.breaches.WithLabelValues(condition).Inc()
}

func (m *Metrics) IncAlertCreated(alertType, severity string) {
	if m == nil {
		return
	}
	m.alertsCreated.WithLabelValues(alertType, severity).Inc()
}

func (m *Metrics) IncDedupSuppressed() {
	if m == nil {
		return
	}
	m.dedupSuppress.Inc()
}

func (m *Metrics) IncEvaluationFailure() {
	if m == nil {
		return
	}
	m.evalFailures.Inc()
}

// Module provides the engine metrics.
var Module = fx.Module("metrics",
	fx.Provide(New),
)
