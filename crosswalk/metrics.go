package crosswalk

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records run outcomes. A nil *Metrics records nothing.
type Metrics struct {
	runs      *prometheus.CounterVec
	warnings  *prometheus.CounterVec
	documents *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics registers the crosswalk collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geocrosswalk",
			Name:      "runs_total",
			Help:      "Crosswalk runs by adapter and final state.",
		}, []string{"adapter", "state"}),
		warnings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geocrosswalk",
			Name:      "warnings_total",
			Help:      "Warnings raised during runs by code.",
		}, []string{"code"}),
		documents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "geocrosswalk",
			Name:      "documents_total",
			Help:      "Documents produced by exporter.",
		}, []string{"exporter"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "geocrosswalk",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a run from extraction to its final state.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"adapter"}),
	}
}

func (m *Metrics) observe(res *Result) {
	if m == nil {
		return
	}
	adapter := res.Meta.Adapter
	if adapter == "" {
		adapter = "unknown"
	}
	m.runs.WithLabelValues(adapter, res.State.String()).Inc()
	for _, w := range res.Warnings {
		m.warnings.WithLabelValues(string(w.Code)).Inc()
	}
	for _, name := range res.Order {
		m.documents.WithLabelValues(name).Inc()
	}
	m.duration.WithLabelValues(adapter).Observe(res.Meta.FinishedAt.Sub(res.Meta.StartedAt).Seconds())
}
