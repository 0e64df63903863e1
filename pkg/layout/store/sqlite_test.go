package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"mercator-hq/placement/pkg/layout"
)

func newTestSQLiteStore(t *testing.T, driver string) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(SQLiteConfig{
		Path:    filepath.Join(t.TempDir(), "layouts.db"),
		Driver:  driver,
		WALMode: true,
	}, discardLogger())
	if err != nil {
		if driver == DriverCGO && strings.Contains(err.Error(), "CGO") {
			t.Skipf("cgo sqlite driver unavailable: %v", err)
		}
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore(t *testing.T) {
	for _, driver := range []string{DriverPure, DriverCGO} {
		t.Run(driver, func(t *testing.T) {
			testStoreContract(t, newTestSQLiteStore(t, driver))
		})
	}
}

func TestSQLiteStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layouts.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(SQLiteConfig{Path: path}, discardLogger())
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	if err := s.PutLayout(ctx, &layout.Layout{ID: "x", Slot: layout.SlotFooter, Body: "x"}); err != nil {
		t.Fatalf("PutLayout() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewSQLiteStore(SQLiteConfig{Path: path}, discardLogger())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.GetLayout(ctx, "x")
	if err != nil {
		t.Fatalf("GetLayout() error = %v", err)
	}
	if got.Slot != layout.SlotFooter {
		t.Errorf("Slot = %q, want footer", got.Slot)
	}
}

func TestNewSQLiteStore_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  SQLiteConfig
	}{
		{name: "empty path", cfg: SQLiteConfig{}},
		{name: "unknown driver", cfg: SQLiteConfig{Path: "x.db", Driver: "postgres"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewSQLiteStore(tt.cfg, discardLogger()); err == nil {
				t.Error("expected error")
			}
		})
	}
}
