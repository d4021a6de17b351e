// Package metrics exposes Prometheus collectors for imports, exports,
// license notices and trash maintenance.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orcamentos"

// Import outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected" // the file failed validation
	OutcomeBusy     = "busy"
	OutcomeError    = "error"
)

var (
	ImportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "CSV imports by outcome",
		},
		[]string{"outcome"},
	)

	ImportedBudgets = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_budgets_total",
			Help:      "Budgets stored by successful imports",
		},
	)

	ImportDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Time from upload read to commit",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	ExportsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "CSV exports served",
		},
	)

	LicenseNotices = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "license_notices_total",
			Help:      "License expiry notices shown, by level",
		},
		[]string{"level"},
	)

	TrashPurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trash_purged_total",
			Help:      "Trashed budgets permanently deleted by retention",
		},
	)

	ActiveImports = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_imports",
			Help:      "Imports currently holding a slot",
		},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more
// than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ImportsTotal,
			ImportedBudgets,
			ImportDuration,
			ExportsTotal,
			LicenseNotices,
			TrashPurged,
			ActiveImports,
		)
	})
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}
