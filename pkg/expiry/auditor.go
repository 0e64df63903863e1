// Package expiry audits the layout inventory for expired layouts on a cron
// schedule. The audit only observes: expired layouts are never modified or
// removed, the resolver already skips them.
package expiry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"mercator-hq/placement/pkg/config"
	"mercator-hq/placement/pkg/layout"
	"mercator-hq/placement/pkg/placement"
)

// Lister lists every stored layout.
type Lister interface {
	ListLayouts(ctx context.Context) ([]*layout.Layout, error)
}

// Recorder receives audit results, typically the metrics collector.
type Recorder interface {
	RecordInventory(total, expired int)
	RecordAuditFailure()
}

// Config configures an Auditor.
type Config struct {
	// Schedule is a cron expression; empty disables scheduled audits.
	Schedule string

	// Filter decides expiration; nil interprets instants in UTC.
	Filter *placement.ExpirationFilter

	Recorder Recorder
	Logger   *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

// Report is the outcome of one audit.
type Report struct {
	At      time.Time `json:"at"`
	Total   int       `json:"total"`
	Expired int       `json:"expired"`

	// NewlyExpired lists the layouts found expired for the first time.
	NewlyExpired []string `json:"newly_expired,omitempty"`
}

// Auditor counts expired layouts and logs each one once.
type Auditor struct {
	lister Lister
	cfg    Config
	logger *slog.Logger
	cron   *cron.Cron

	mu       sync.Mutex
	running  bool
	reported map[string]bool
	last     Report
	lastErr  error
}

// New creates an auditor over lister.
func New(lister Lister, cfg Config) *Auditor {
	if cfg.Filter == nil {
		cfg.Filter = placement.NewExpirationFilter(time.UTC)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{
		lister:   lister,
		cfg:      cfg,
		logger:   logger.With("component", "expiry.auditor"),
		cron:     cron.New(cron.WithParser(config.CronParser), cron.WithLocation(cfg.Filter.Location())),
		reported: make(map[string]bool),
	}
}

// RunOnce audits the inventory now.
func (a *Auditor) RunOnce(ctx context.Context) (Report, error) {
	layouts, err := a.lister.ListLayouts(ctx)
	if err != nil {
		a.mu.Lock()
		a.lastErr = err
		a.mu.Unlock()
		if a.cfg.Recorder != nil {
			a.cfg.Recorder.RecordAuditFailure()
		}
		return Report{}, fmt.Errorf("list layouts: %w", err)
	}

	now := a.cfg.Now()
	report := Report{At: now, Total: len(layouts)}
	expired := make(map[string]bool)

	a.mu.Lock()
	for _, l := range layouts {
		if !a.cfg.Filter.Expired(l, now) {
			continue
		}
		report.Expired++
		expired[l.ID] = true
		if a.reported[l.ID] {
			continue
		}
		report.NewlyExpired = append(report.NewlyExpired, l.ID)
		cutoff, _ := a.cfg.Filter.Cutoff(l)
		a.logger.Info("layout expired",
			"layout_id", l.ID,
			"slot", l.Slot,
			"expired_at", cutoff,
		)
	}
	// Layouts that are no longer expired are forgotten so a later
	// expiration is reported again.
	a.reported = expired
	a.last = report
	a.lastErr = nil
	a.mu.Unlock()

	if a.cfg.Recorder != nil {
		a.cfg.Recorder.RecordInventory(report.Total, report.Expired)
	}
	return report, nil
}

// Start schedules audits until ctx is done or Stop is called. With an
// empty schedule it does nothing.
func (a *Auditor) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cfg.Schedule == "" {
		a.logger.Info("expiry schedule not configured, skipping audits")
		return nil
	}
	if a.running {
		return errors.New("expiry auditor is already running")
	}

	if _, err := a.cron.AddFunc(a.cfg.Schedule, func() { a.run(ctx) }); err != nil {
		return fmt.Errorf("invalid expiry schedule %q: %w", a.cfg.Schedule, err)
	}
	a.cron.Start()
	a.running = true
	a.logger.Info("expiry auditor started", "schedule", a.cfg.Schedule)

	go func() {
		<-ctx.Done()
		a.Stop()
	}()
	return nil
}

func (a *Auditor) run(ctx context.Context) {
	report, err := a.RunOnce(ctx)
	if err != nil {
		a.logger.Error("expiry audit failed", "error", err)
		return
	}
	a.logger.Debug("expiry audit completed",
		"total", report.Total,
		"expired", report.Expired,
		"newly_expired", len(report.NewlyExpired),
	)
}

// Stop stops scheduling and waits for a running audit to finish.
func (a *Auditor) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	a.mu.Unlock()

	<-a.cron.Stop().Done()
	a.logger.Info("expiry auditor stopped")
}

// Running reports whether audits are scheduled.
func (a *Auditor) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// NextRun returns the next scheduled audit, if any.
func (a *Auditor) NextRun() (time.Time, bool) {
	entries := a.cron.Entries()
	if len(entries) == 0 || entries[0].Next.IsZero() {
		return time.Time{}, false
	}
	return entries[0].Next, true
}

// Last returns the most recent successful report.
func (a *Auditor) Last() Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// Check reports the failure of the most recent audit. It is meant as a
// non-critical health check.
func (a *Auditor) Check(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastErr != nil {
		return fmt.Errorf("last expiry audit failed: %w", a.lastErr)
	}
	return nil
}
