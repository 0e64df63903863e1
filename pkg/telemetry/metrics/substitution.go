package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/placement/pkg/config"
)

// SubstitutionMetrics tracks magic tag substitution.
type SubstitutionMetrics struct {
	substitutionsTotal *prometheus.CounterVec
}

// NewSubstitutionMetrics creates and registers substitution metrics.
func NewSubstitutionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SubstitutionMetrics {
	sm := &SubstitutionMetrics{
		substitutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "substitutions_total",
				Help:      "Total number of magic tag tokens offered for substitution, by category root",
			},
			[]string{"root"},
		),
	}

	registry.MustRegister(sm.substitutionsTotal)
	return sm
}

// RecordSubstitution adds tokens substituted under one root category.
func (sm *SubstitutionMetrics) RecordSubstitution(root string, tokens int) {
	if tokens > 0 {
		sm.substitutionsTotal.WithLabelValues(root).Add(float64(tokens))
	}
}
