package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/placement/pkg/config"
	"mercator-hq/placement/pkg/layout"
	"mercator-hq/placement/pkg/magictags"
	"mercator-hq/placement/pkg/placement"
)

// overflowLabel replaces label values past the cardinality limit.
const overflowLabel = "other"

// Collector is the main orchestrator for all Prometheus metrics of the
// service. It manages metric registration and provides a unified interface
// for recording metrics across all components.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	resolution   *ResolutionMetrics
	substitution *SubstitutionMetrics
	inventory    *InventoryMetrics
	http         *HTTPMetrics

	slots *CardinalityLimiter
}

var (
	_ placement.Observer = (*Collector)(nil)
	_ magictags.Observer = (*Collector)(nil)
)

// NewCollector creates a new metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// registry is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg == nil {
		cfg = &config.MetricsConfig{}
	}
	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}

	return &Collector{
		config:       cfg,
		registry:     registry,
		resolution:   NewResolutionMetrics(cfg, registry),
		substitution: NewSubstitutionMetrics(cfg, registry),
		inventory:    NewInventoryMetrics(cfg, registry),
		http:         NewHTTPMetrics(cfg, registry),
		slots:        NewCardinalityLimiter(64),
	}
}

func (c *Collector) slotLabel(slot layout.Slot) string {
	if !c.slots.Allow(string(slot)) {
		return overflowLabel
	}
	return string(slot)
}

// Excluded implements placement.Observer.
func (c *Collector) Excluded(slot layout.Slot, _ string, reason placement.Reason) {
	if !c.config.IsEnabled() {
		return
	}
	c.resolution.RecordExcluded(c.slotLabel(slot), string(reason))
}

// Resolved implements placement.Observer.
func (c *Collector) Resolved(slot layout.Slot, _, selected int, elapsed time.Duration) {
	if !c.config.IsEnabled() {
		return
	}
	c.resolution.RecordResolution(c.slotLabel(slot), selected, elapsed)
}

// Substituted implements magictags.Observer.
func (c *Collector) Substituted(root string, tokens int) {
	if !c.config.IsEnabled() {
		return
	}
	c.substitution.RecordSubstitution(root, tokens)
}

// RecordInventory records the result of an expiry audit.
func (c *Collector) RecordInventory(total, expired int) {
	if !c.config.IsEnabled() {
		return
	}
	c.inventory.Update(total, expired)
}

// RecordAuditFailure counts an expiry audit that could not list layouts.
func (c *Collector) RecordAuditFailure() {
	if !c.config.IsEnabled() {
		return
	}
	c.inventory.RecordFailure()
}

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	if !c.config.IsEnabled() {
		return
	}
	c.http.RecordRequest(route, method, status, duration)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow checks if a label value is allowed. Returns true if the value was
// seen before or if the limit has not been reached.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[labelSet]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
