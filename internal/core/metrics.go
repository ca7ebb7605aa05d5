package core

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/JonMunkholm/liquefy/internal/liquefaction"
)

// Metrics holds the calculation and import counters exported on /metrics.
// A nil *Metrics records nothing.
type Metrics struct {
	calculations   *prometheus.CounterVec
	rejected       *prometheus.CounterVec
	index          prometheus.Histogram
	imports        *prometheus.CounterVec
	importedRows   prometheus.Counter
	pendingImports prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "liquefy",
			Name:      "calculations_total",
			Help:      "Site points calculated, by source and grade.",
		}, []string{"source", "grade"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "liquefy",
			Name:      "calculations_rejected_total",
			Help:      "Site points rejected as invalid input, by source.",
		}, []string{"source"}),
		index: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "liquefy",
			Name:      "liquefaction_index",
			Help:      "Distribution of calculated liquefaction indexes.",
			Buckets:   []float64{0, 2, 5, 6, 10, 15, 18, 25, 40},
		}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "liquefy",
			Name:      "imports_total",
			Help:      "Uploaded tables, by outcome.",
		}, []string{"outcome"}),
		importedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "liquefy",
			Name:      "imported_rows_total",
			Help:      "Data rows read from uploaded tables.",
		}),
		pendingImports: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "liquefy",
			Name:      "pending_imports",
			Help:      "Import sessions waiting to be calculated or discarded.",
		}),
	}
	reg.MustRegister(m.calculations, m.rejected, m.index, m.imports, m.importedRows, m.pendingImports)
	return m
}

func (m *Metrics) observeResult(source string, res liquefaction.Result) {
	if m == nil {
		return
	}
	m.calculations.WithLabelValues(source, string(res.Grade)).Inc()
	m.index.Observe(res.Index)
}

func (m *Metrics) observeRejected(source string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(source).Inc()
}

func (m *Metrics) observeImport(outcome string, rows int) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(outcome).Inc()
	m.importedRows.Add(float64(rows))
}

func (m *Metrics) setPending(n int) {
	if m == nil {
		return
	}
	m.pendingImports.Set(float64(n))
}
