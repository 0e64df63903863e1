package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/placement/pkg/config"
)

// ResolutionMetrics tracks slot resolutions.
type ResolutionMetrics struct {
	resolutionsTotal   *prometheus.CounterVec
	resolutionDuration *prometheus.HistogramVec
	selected           *prometheus.HistogramVec
	excludedTotal      *prometheus.CounterVec
}

// NewResolutionMetrics creates and registers resolution metrics with the
// provided registry.
func NewResolutionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ResolutionMetrics {
	rm := &ResolutionMetrics{
		resolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "resolutions_total",
				Help:      "Total number of slot resolutions",
			},
			[]string{"slot"},
		),

		resolutionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "resolution_duration_seconds",
				Help:      "Duration of slot resolutions in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"slot"},
		),

		selected: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "resolution_selected",
				Help:      "Number of layouts selected per resolution",
				Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
			},
			[]string{"slot"},
		),

		excludedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "candidates_excluded_total",
				Help:      "Total number of candidate layouts excluded, by reason",
			},
			[]string{"slot", "reason"},
		),
	}

	registry.MustRegister(
		rm.resolutionsTotal,
		rm.resolutionDuration,
		rm.selected,
		rm.excludedTotal,
	)

	return rm
}

// RecordResolution records one completed resolution.
func (rm *ResolutionMetrics) RecordResolution(slot string, selected int, duration time.Duration) {
	rm.resolutionsTotal.WithLabelValues(slot).Inc()
	rm.resolutionDuration.WithLabelValues(slot).Observe(duration.Seconds())
	rm.selected.WithLabelValues(slot).Observe(float64(selected))
}

// RecordExcluded records one excluded candidate.
func (rm *ResolutionMetrics) RecordExcluded(slot, reason string) {
	rm.excludedTotal.WithLabelValues(slot, reason).Inc()
}
