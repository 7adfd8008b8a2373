package server

import (
	"time"

	"bank-ledger-reconciler/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for reconciliation runs.
type Metrics struct {
	// Registry owns these metrics and backs the /metrics endpoint.
	Registry *prometheus.Registry

	runsTotal   *prometheus.CounterVec
	matchRate   prometheus.Histogram
	deltasTotal *prometheus.CounterVec
	runDuration prometheus.Histogram
}

// NewMetrics creates a private registry and registers all run metrics in it,
// so that several servers can coexist in one process (tests included).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reconciler_runs_total",
				Help: "Total reconciliation runs by report status.",
			},
			[]string{"status"},
		),
		matchRate: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "reconciler_match_rate",
				Help:    "Match rate of reconciliation runs.",
				Buckets: []float64{0.5, 0.75, 0.9, 0.95, 0.99, 1},
			},
		),
		deltasTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reconciler_deltas_total",
				Help: "Total deltas produced by type.",
			},
			[]string{"type"},
		),
		runDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "reconciler_run_duration_seconds",
				Help:    "Duration of reconciliation runs.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordRun records the outcome of one reconciliation run.
func (m *Metrics) RecordRun(report *models.ReconciliationReport, d time.Duration) {
	m.runsTotal.WithLabelValues(string(report.Status)).Inc()
	m.matchRate.Observe(report.MatchRate)
	m.runDuration.Observe(d.Seconds())

	for _, t := range []models.DeltaType{models.DeltaUnmatchedBank, models.DeltaUnmatchedLedger} {
		if n := report.CountDeltas(t); n > 0 {
			m.deltasTotal.WithLabelValues(string(t)).Add(float64(n))
		}
	}
}
