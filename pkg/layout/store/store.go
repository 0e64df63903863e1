package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mercator-hq/placement/pkg/layout"
)

// Reader is the read side used at render time.
type Reader interface {
	// ListLayoutsForSlot returns the layouts assigned to slot in storage
	// order. The result is a consistent snapshot.
	ListLayoutsForSlot(ctx context.Context, slot layout.Slot) ([]*layout.Layout, error)

	// GetLayout returns one layout or ErrNotFound.
	GetLayout(ctx context.Context, id string) (*layout.Layout, error)
}

// Store is a layout store with admin writes.
type Store interface {
	Reader

	// ListLayouts returns every layout in storage order.
	ListLayouts(ctx context.Context) ([]*layout.Layout, error)

	// PutLayout creates or replaces a layout. Replacing keeps the layout's
	// storage position.
	PutLayout(ctx context.Context, l *layout.Layout) error

	// DeleteLayout removes a layout or returns ErrNotFound.
	DeleteLayout(ctx context.Context, id string) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	File    FileConfig
	SQLite  SQLiteConfig
	Redis   RedisConfig
}

// Open creates the configured backend.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch strings.ToLower(cfg.Backend) {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile:
		fs := NewFileStore(cfg.File, logger)
		if err := fs.Load(ctx); err != nil {
			return nil, err
		}
		return fs, nil
	case BackendSQLite:
		return NewSQLiteStore(cfg.SQLite, logger)
	case BackendRedis:
		return NewRedisStore(ctx, cfg.Redis, logger)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// filterSlot keeps the layouts of one slot, preserving order.
func filterSlot(all []*layout.Layout, slot layout.Slot) []*layout.Layout {
	var out []*layout.Layout
	for _, l := range all {
		if l.Slot == slot {
			out = append(out, l)
		}
	}
	return out
}

func cloneAll(in []*layout.Layout) []*layout.Layout {
	out := make([]*layout.Layout, len(in))
	for i, l := range in {
		out[i] = l.Clone()
	}
	return out
}

func checkWritable(l *layout.Layout) error {
	if l == nil {
		return fmt.Errorf("%w: nil layout", ErrInvalidLayout)
	}
	if strings.TrimSpace(l.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidLayout)
	}
	return nil
}

// now is replaced in tests.
var now = time.Now
