// Package metrics exposes Prometheus instrumentation for the orchestrator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the orchestrator's Prometheus collectors. A nil *Metrics is
// safe to use; every method is a no-op on it so callers never guard.
type Metrics struct {
	executionsTotal  *prometheus.CounterVec
	stagesTotal      *prometheus.CounterVec
	gateBlocksTotal  *prometheus.CounterVec
	activeExecutions prometheus.Gauge
	stageDuration    *prometheus.HistogramVec
}

// New builds the collector set and registers it on the given registerer.
func New(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		executionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tradewind",
				Name:      "executions_total",
				Help:      "Workflow executions by terminal status.",
			},
			[]string{"status"},
		),
		stagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tradewind",
				Name:      "stages_total",
				Help:      "Stage dispatches by category and outcome.",
			},
			[]string{"category", "status"},
		),
		gateBlocksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tradewind",
				Name:      "gate_blocks_total",
				Help:      "Execute stages blocked by the gate, by source.",
			},
			[]string{"source"},
		),
		activeExecutions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "tradewind",
				Name:      "active_executions",
				Help:      "Executions currently in flight.",
			},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tradewind",
				Name:      "stage_duration_seconds",
				Help:      "Wall-clock stage duration by category.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"category"},
		),
	}

	registerer.MustRegister(
		m.executionsTotal,
		m.stagesTotal,
		m.gateBlocksTotal,
		m.activeExecutions,
		m.stageDuration,
	)

	return m
}

func (m *Metrics) ExecutionStarted() {
	if m == nil {
		return
	}

	m.activeExecutions.Inc()
}

func (m *Metrics) ExecutionFinished(status string) {
	if m == nil {
		return
	}

	m.activeExecutions.Dec()
	m.executionsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) StageSettled(category, status string, seconds float64) {
	if m == nil {
		return
	}

	m.stagesTotal.WithLabelValues(category, status).Inc()
	m.stageDuration.WithLabelValues(category).Observe(seconds)
}

func (m *Metrics) GateBlocked(source string) {
	if m == nil {
		return
	}

	m.gateBlocksTotal.WithLabelValues(source).Inc()
}
