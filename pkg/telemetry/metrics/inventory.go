package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/placement/pkg/config"
)

// InventoryMetrics tracks the stored layouts as seen by the expiry audit.
type InventoryMetrics struct {
	layouts     *prometheus.GaugeVec
	auditsTotal *prometheus.CounterVec
}

// NewInventoryMetrics creates and registers inventory metrics.
func NewInventoryMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *InventoryMetrics {
	im := &InventoryMetrics{
		layouts: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "layouts",
				Help:      "Number of stored layouts by state (active, expired)",
			},
			[]string{"state"},
		),
		auditsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "expiry_audits_total",
				Help:      "Total number of expiry audits by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(im.layouts, im.auditsTotal)
	return im
}

// Update sets the layout gauges from a successful audit.
func (im *InventoryMetrics) Update(total, expired int) {
	im.layouts.WithLabelValues("active").Set(float64(total - expired))
	im.layouts.WithLabelValues("expired").Set(float64(expired))
	im.auditsTotal.WithLabelValues("success").Inc()
}

// RecordFailure counts a failed audit.
func (im *InventoryMetrics) RecordFailure() {
	im.auditsTotal.WithLabelValues("error").Inc()
}
