// SPDX-License-Identifier: MIT

package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aboualiaa/freesurfer-sub000/glm"
)

const (
	metricsNamespace = "glm"
	metricsSubsystem = "batch"
)

// Unit outcomes recorded in UnitsTotal.
const (
	outcomeOK             = "ok"
	outcomeIllConditioned = "ill_conditioned"
	outcomeError          = "error"
)

// Metrics is the runner's Prometheus instrumentation. A nil *Metrics records
// nothing.
type Metrics struct {
	// UnitsTotal counts processed units.
	// Labels: outcome (ok, ill_conditioned, error)
	UnitsTotal *prometheus.CounterVec

	// ContrastsTotal counts contrast results by status.
	// Labels: status (ok, ill-conditioned, singular-covariance, zero-variance, negative-f)
	ContrastsTotal *prometheus.CounterVec

	// UnitSeconds measures per-unit fit and test time.
	UnitSeconds prometheus.Histogram

	// ActiveWorkers tracks running workers.
	ActiveWorkers prometheus.Gauge
}

// NewMetrics creates the runner metrics and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		UnitsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "units_total",
			Help:      "Processed responses by outcome",
		}, []string{"outcome"}),
		ContrastsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "contrast_results_total",
			Help:      "Contrast test results by status",
		}, []string{"status"}),
		UnitSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "unit_duration_seconds",
			Help:      "Time to fit and test one response",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
		ActiveWorkers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "active_workers",
			Help:      "Workers currently processing units",
		}),
	}
}

func (m *Metrics) unit(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.UnitsTotal.WithLabelValues(outcome).Inc()
	if outcome != outcomeError {
		m.UnitSeconds.Observe(seconds)
	}
}

func (m *Metrics) results(rs []glm.Result) {
	if m == nil {
		return
	}
	for i := range rs {
		m.ContrastsTotal.WithLabelValues(rs[i].Status.String()).Inc()
	}
}

func (m *Metrics) worker(delta float64) {
	if m == nil {
		return
	}
	m.ActiveWorkers.Add(delta)
}
