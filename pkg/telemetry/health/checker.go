package health

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// CheckFunc performs a health check for a component. It returns nil when
// the component is healthy.
type CheckFunc func(ctx context.Context) error

// Status values.
const (
	StatusOK        = "ok"
	StatusReady     = "ready"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// CheckResult is the result of a single health check.
type CheckResult struct {
	Status   string  `json:"status"`
	Message  string  `json:"message,omitempty"`
	Critical bool    `json:"critical"`
	Duration float64 `json:"duration_ms"`
}

// HealthStatus is the aggregated health of the service.
type HealthStatus struct {
	// Status is "ok" for liveness and "ready", "degraded" or "unhealthy" for
	// readiness.
	Status    string                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Ready reports whether the status allows serving traffic.
func (s HealthStatus) Ready() bool {
	return s.Status != StatusUnhealthy
}

type registered struct {
	check    CheckFunc
	critical bool
}

// Checker runs the registered component checks.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]registered

	checkTimeout time.Duration
	logger       *slog.Logger
}

// New creates a checker. A zero timeout means 5 seconds per check.
func New(checkTimeout time.Duration, logger *slog.Logger) *Checker {
	if checkTimeout == 0 {
		checkTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		checks:       make(map[string]registered),
		checkTimeout: checkTimeout,
		logger:       logger,
	}
}

// RegisterCheck registers a check under name, replacing any previous one.
// A failing critical check makes the service unhealthy; a failing
// non-critical check only degrades it.
func (c *Checker) RegisterCheck(name string, check CheckFunc, critical bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = registered{check: check, critical: critical}
}

// UnregisterCheck removes the check registered under name.
func (c *Checker) UnregisterCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checks, name)
}

// ListChecks returns the registered check names, sorted.
func (c *Checker) ListChecks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckLiveness reports that the process is running.
func (c *Checker) CheckLiveness(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
	}
}

// CheckReadiness runs every registered check concurrently and aggregates
// the results.
func (c *Checker) CheckReadiness(ctx context.Context) HealthStatus {
	c.mu.RLock()
	checks := make(map[string]registered, len(c.checks))
	for name, r := range c.checks {
		checks[name] = r
	}
	c.mu.RUnlock()

	results := make(map[string]CheckResult, len(checks))
	var mu sync.Mutex

	// Check failures are reported in the results, never as group errors, so
	// one failing check does not cancel the others.
	g, gctx := errgroup.WithContext(ctx)
	for name, r := range checks {
		g.Go(func() error {
			result := c.runCheck(gctx, r)
			if result.Status != StatusOK {
				c.logger.Warn("health check failed",
					"check", name,
					"critical", r.critical,
					"message", result.Message,
				)
			}
			mu.Lock()
			results[name] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	status := StatusReady
	for _, result := range results {
		if result.Status == StatusOK {
			continue
		}
		if result.Critical {
			status = StatusUnhealthy
			break
		}
		status = StatusDegraded
	}

	return HealthStatus{
		Status:    status,
		Checks:    results,
		Timestamp: time.Now(),
	}
}

// runCheck executes one check bounded by the checker timeout.
func (c *Checker) runCheck(ctx context.Context, r registered) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	start := time.Now()
	errCh := make(chan error, 1)
	go func() {
		errCh <- r.check(checkCtx)
	}()

	result := CheckResult{Critical: r.critical}
	select {
	case err := <-errCh:
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
		} else {
			result.Status = StatusOK
		}
	case <-checkCtx.Done():
		result.Status = StatusUnhealthy
		result.Message = "health check timeout"
	}
	result.Duration = float64(time.Since(start).Microseconds()) / 1000
	return result
}
