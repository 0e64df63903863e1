package main

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/placement/pkg/cli"
	"mercator-hq/placement/pkg/layout"
	"mercator-hq/placement/pkg/layout/store"
	"mercator-hq/placement/pkg/placement"
	"mercator-hq/placement/pkg/targeting"
	"mercator-hq/placement/pkg/vocabulary"
)

var lintFlags struct {
	dir    string
	strict bool
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Report problems in stored layouts",
	Long: `Check every stored layout and report problems without changing anything.

Errors are records that cannot render as intended: missing hook names, invalid
sidebar or inside settings, out-of-range priorities, corrupt condition sets and
unparsable expiration instants. Warnings are atoms that can never match (unknown
categories, empty end values), empty groups that match everything, slots or
sidebar positions disabled by the configured capabilities, and expired layouts.

The command exits non-zero when errors are found, or warnings with --strict.

Examples:
  # Lint the configured store
  placement lint

  # Lint a directory of layout files
  placement lint --dir ./layouts

  # Treat warnings as errors (useful in CI)
  placement lint --dir ./layouts --strict --format json`,
	RunE: lintLayouts,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.dir, "dir", "d", "", "lint layout files in a directory instead of the configured store")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVarP(&lintFlags.format, "format", "f", "text", "output format (text, json)")
}

// Severity grades a lint finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Finding is one lint result.
type Finding struct {
	LayoutID string   `json:"layout_id,omitempty"`
	Path     string   `json:"path,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// lintReport is the outcome of a lint run.
type lintReport struct {
	Layouts  int       `json:"layouts"`
	Errors   int       `json:"errors"`
	Warnings int       `json:"warnings"`
	Findings []Finding `json:"findings"`
}

func (r *lintReport) add(f Finding) {
	switch f.Severity {
	case SeverityError:
		r.Errors++
	case SeverityWarning:
		r.Warnings++
	}
	r.Findings = append(r.Findings, f)
}

// Failed reports whether the run should exit non-zero.
func (r *lintReport) Failed(strict bool) bool {
	return r.Errors > 0 || (strict && r.Warnings > 0)
}

func (r *lintReport) Header() []string {
	if len(r.Findings) == 0 {
		return nil
	}
	return []string{"SEVERITY", "LAYOUT", "MESSAGE"}
}

func (r *lintReport) Rows() [][]string {
	rows := make([][]string, 0, len(r.Findings)+1)
	for _, f := range r.Findings {
		subject := f.LayoutID
		if subject == "" {
			subject = f.Path
		}
		rows = append(rows, []string{string(f.Severity), subject, f.Message})
	}
	rows = append(rows, []string{fmt.Sprintf("%d layouts checked: %d errors, %d warnings", r.Layouts, r.Errors, r.Warnings)})
	return rows
}

// linter checks layouts against the configured vocabulary and capabilities.
type linter struct {
	registry *vocabulary.Registry
	filter   *placement.ExpirationFilter
	caps     layout.Capabilities
	now      time.Time
}

func lintLayouts(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(lintFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}
	logger, err := commandLogger(cfg, verbose)
	if err != nil {
		return err
	}

	registry, err := buildRegistry(cfg.Engine)
	if err != nil {
		return err
	}
	filter, err := expirationFilter(cfg.Engine)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var st store.Store
	if lintFlags.dir != "" {
		fs := store.NewFileStore(store.FileConfig{Path: lintFlags.dir}, logger)
		if err := fs.Load(ctx); err != nil {
			return cli.NewCommandError("lint", err)
		}
		st = fs
	} else if st, err = openStore(ctx, cfg, logger); err != nil {
		return cli.NewCommandError("lint", err)
	}
	defer st.Close()

	l := linter{registry: registry, filter: filter, caps: capabilities(cfg.Engine), now: time.Now()}
	report, err := l.lintStore(ctx, st)
	if err != nil {
		return cli.NewCommandError("lint", err)
	}

	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	if report.Failed(lintFlags.strict) {
		return &cli.ExitError{Code: 1}
	}
	return nil
}

func (l linter) lintStore(ctx context.Context, st store.Store) (*lintReport, error) {
	layouts, err := st.ListLayouts(ctx)
	if err != nil {
		return nil, err
	}

	report := &lintReport{Layouts: len(layouts), Findings: []Finding{}}
	if fs, ok := st.(*store.FileStore); ok {
		for _, sk := range fs.Skipped() {
			report.add(Finding{LayoutID: sk.LayoutID, Path: sk.Path, Severity: SeverityError, Message: sk.Err.Error()})
		}
	}
	for _, lay := range layouts {
		for _, f := range l.lintLayout(lay) {
			report.add(f)
		}
	}
	return report, nil
}

func (l linter) lintLayout(lay *layout.Layout) []Finding {
	var out []Finding
	add := func(sev Severity, format string, args ...any) {
		out = append(out, Finding{LayoutID: lay.ID, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	for _, p := range lay.Problems() {
		add(SeverityError, "%s", p)
	}

	if lay.Slot.Valid() && !slices.Contains(layout.AvailableSlots(l.caps), lay.Slot) {
		add(SeverityWarning, "slot %q is disabled by the configured capabilities", lay.Slot)
	}
	if lay.Slot == layout.SlotSidebar && lay.Sidebar != nil && lay.Sidebar.Position != "" && !l.knownSidebar(lay.Sidebar.Position) {
		add(SeverityWarning, "sidebar position %q is not offered", lay.Sidebar.Position)
	}

	if lay.Conditions.Corrupt() {
		add(SeverityError, "conditions never match: %v", lay.Conditions.Err())
	} else {
		for _, issue := range targeting.Inspect(lay.Conditions, l.registry) {
			add(SeverityWarning, "conditions: %s", issue)
		}
	}

	if e := lay.Expiration; e != nil && e.Enabled {
		switch at := strings.TrimSpace(e.At); {
		case at == "":
			add(SeverityWarning, "expiration enabled without an instant")
		default:
			cutoff, err := l.filter.Parse(at)
			if err != nil {
				add(SeverityError, "expiration: %v", err)
			} else if l.now.After(cutoff) {
				add(SeverityWarning, "expired since %s", cutoff.Format(time.RFC3339))
			}
		}
	}
	return out
}

func (l linter) knownSidebar(position string) bool {
	for _, opt := range l.registry.SidebarPositions() {
		if opt.Value == position {
			return true
		}
	}
	return false
}
