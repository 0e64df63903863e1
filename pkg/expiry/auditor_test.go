package expiry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"mercator-hq/placement/pkg/layout"
	"mercator-hq/placement/pkg/layout/store"
	"mercator-hq/placement/pkg/placement"
)

type fakeRecorder struct {
	total, expired int
	inventories    int
	failures       int
}

func (r *fakeRecorder) RecordInventory(total, expired int) {
	r.total, r.expired = total, expired
	r.inventories++
}

func (r *fakeRecorder) RecordAuditFailure() { r.failures++ }

type failingLister struct{ err error }

func (l failingLister) ListLayouts(context.Context) ([]*layout.Layout, error) {
	return nil, l.err
}

func expiring(id, at string, enabled bool) *layout.Layout {
	return &layout.Layout{
		ID:         id,
		Slot:       layout.SlotFooter,
		Expiration: &layout.Expiration{Enabled: enabled, At: at},
	}
}

func newTestAuditor(l Lister, rec Recorder, now *time.Time) *Auditor {
	return New(l, Config{
		Filter:   placement.NewExpirationFilter(time.UTC),
		Recorder: rec,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:      func() time.Time { return *now },
	})
}

func TestAuditor_RunOnce(t *testing.T) {
	st := store.NewMemoryStore(
		&layout.Layout{ID: "forever", Slot: layout.SlotHeader},
		expiring("past", "2026-01-01T00:00", true),
		expiring("future", "2026-12-31T23:59", true),
		expiring("disabled", "2020-01-01T00:00", false),
		expiring("garbage", "not a date", true),
	)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	rec := &fakeRecorder{}
	a := newTestAuditor(st, rec, &now)

	report, err := a.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if report.Total != 5 || report.Expired != 1 {
		t.Errorf("report = %+v, want 5 total, 1 expired", report)
	}
	if len(report.NewlyExpired) != 1 || report.NewlyExpired[0] != "past" {
		t.Errorf("NewlyExpired = %v, want [past]", report.NewlyExpired)
	}
	if rec.total != 5 || rec.expired != 1 {
		t.Errorf("recorder = %+v", rec)
	}

	// A second audit reports nothing new.
	report, _ = a.RunOnce(context.Background())
	if len(report.NewlyExpired) != 0 {
		t.Errorf("second NewlyExpired = %v, want none", report.NewlyExpired)
	}

	// Once the next cutoff passes only that layout is new.
	now = time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	report, _ = a.RunOnce(context.Background())
	if report.Expired != 2 || len(report.NewlyExpired) != 1 || report.NewlyExpired[0] != "future" {
		t.Errorf("third report = %+v", report)
	}
	if got := a.Last(); got.Expired != 2 {
		t.Errorf("Last() = %+v", got)
	}
	if rec.inventories != 3 {
		t.Errorf("inventories recorded = %d, want 3", rec.inventories)
	}
}

func TestAuditor_RunOnce_ReportsAgainAfterReenable(t *testing.T) {
	st := store.NewMemoryStore(expiring("promo", "2026-01-01T00:00", true))
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	a := newTestAuditor(st, nil, &now)
	ctx := context.Background()

	if r, _ := a.RunOnce(ctx); len(r.NewlyExpired) != 1 {
		t.Fatalf("first audit = %+v", r)
	}

	if err := st.PutLayout(ctx, expiring("promo", "2026-01-01T00:00", false)); err != nil {
		t.Fatal(err)
	}
	if r, _ := a.RunOnce(ctx); r.Expired != 0 {
		t.Fatalf("disabled audit = %+v", r)
	}

	if err := st.PutLayout(ctx, expiring("promo", "2026-01-01T00:00", true)); err != nil {
		t.Fatal(err)
	}
	if r, _ := a.RunOnce(ctx); len(r.NewlyExpired) != 1 {
		t.Errorf("re-enabled audit = %+v, want promo reported again", r)
	}
}

func TestAuditor_RunOnce_Failure(t *testing.T) {
	now := time.Now()
	rec := &fakeRecorder{}
	a := newTestAuditor(failingLister{err: errors.New("redis: connection refused")}, rec, &now)

	if _, err := a.RunOnce(context.Background()); err == nil {
		t.Fatal("RunOnce() succeeded with a failing store")
	}
	if rec.failures != 1 || rec.inventories != 0 {
		t.Errorf("recorder = %+v", rec)
	}
	if err := a.Check(context.Background()); err == nil {
		t.Error("Check() = nil after a failed audit")
	}
}

func TestAuditor_Check_RecoversAfterSuccess(t *testing.T) {
	now := time.Now()
	lister := &switchLister{err: errors.New("down")}
	a := newTestAuditor(lister, nil, &now)

	_, _ = a.RunOnce(context.Background())
	lister.err = nil
	if _, err := a.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if err := a.Check(context.Background()); err != nil {
		t.Errorf("Check() = %v after a successful audit", err)
	}
}

type switchLister struct{ err error }

func (l *switchLister) ListLayouts(context.Context) ([]*layout.Layout, error) {
	if l.err != nil {
		return nil, l.err
	}
	return nil, nil
}

func TestAuditor_Start(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		wantErr     bool
		wantRunning bool
	}{
		{name: "disabled", schedule: "", wantRunning: false},
		{name: "hourly", schedule: "0 * * * *", wantRunning: true},
		{name: "descriptor", schedule: "@daily", wantRunning: true},
		{name: "invalid", schedule: "every tuesday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(store.NewMemoryStore(), Config{
				Schedule: tt.schedule,
				Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
			})
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := a.Start(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Start() error = %v, wantErr %v", err, tt.wantErr)
			}
			if a.Running() != tt.wantRunning {
				t.Fatalf("Running() = %v, want %v", a.Running(), tt.wantRunning)
			}
			if !tt.wantRunning {
				return
			}

			if next, ok := a.NextRun(); !ok || !next.After(time.Now()) {
				t.Errorf("NextRun() = %v, %v", next, ok)
			}
			if err := a.Start(ctx); err == nil {
				t.Error("second Start() succeeded")
			}
			a.Stop()
			if a.Running() {
				t.Error("Running() after Stop()")
			}
		})
	}
}
