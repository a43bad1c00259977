package server

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hylla/nametag/internal/adapters/server/common"
)

// Metrics holds the preview server collectors.
type Metrics struct {
	renders       *prometheus.CounterVec
	renderSeconds prometheus.Histogram
	competitors   prometheus.GaugeFunc
}

// NewMetrics registers preview collectors on reg.
func NewMetrics(reg prometheus.Registerer, snapshots common.SnapshotReader) *Metrics {
	m := &Metrics{
		renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nametag",
			Name:      "preview_renders_total",
			Help:      "Preview page renders by result.",
		}, []string{"result"}),
		renderSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nametag",
			Name:      "preview_render_seconds",
			Help:      "Time spent rendering the preview page.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		competitors: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "nametag",
			Name:      "snapshot_competitors",
			Help:      "Competitors in the published snapshot.",
		}, func() float64 {
			snap, ok := snapshots.Current()
			if !ok {
				return 0
			}
			return float64(len(snap.Competitors))
		}),
	}
	reg.MustRegister(m.renders, m.renderSeconds, m.competitors)
	return m
}

func (m *Metrics) observeRender(seconds float64, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.renders.WithLabelValues(result).Inc()
	m.renderSeconds.Observe(seconds)
}
