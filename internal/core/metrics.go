package core

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result labels for the ingestion counter.
const (
	resultOK       = "ok"
	resultRejected = "rejected"
	resultBusy     = "busy"
	resultError    = "error"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	Ingestions      *prometheus.CounterVec
	HistoryFailures prometheus.Counter
	Duration        prometheus.Histogram
	Units           prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered, which is what tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Ingestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "equipviz_ingestions_total",
			Help: "Ingestions by result (ok, rejected, busy, error).",
		}, []string{"result"}),
		HistoryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "equipviz_history_failures_total",
			Help: "History writes that failed; the view was still updated.",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "equipviz_ingest_duration_seconds",
			Help:    "Time from accepted ingestion to published view.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		Units: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "equipviz_current_units",
			Help: "Unit count of the currently displayed dataset.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Ingestions, m.HistoryFailures, m.Duration, m.Units)
	}
	return m
}
