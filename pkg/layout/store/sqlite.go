package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"
	_ "modernc.org/sqlite"          // registers "sqlite"

	"mercator-hq/placement/pkg/layout"
)

// SQLite driver names.
const (
	DriverCGO  = "sqlite3"
	DriverPure = "sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS layouts (
	id         TEXT PRIMARY KEY,
	slot       TEXT NOT NULL,
	hook_name  TEXT NOT NULL DEFAULT '',
	position   INTEGER NOT NULL,
	payload    TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_layouts_slot ON layouts(slot, position);
`

const (
	sqlListAll = `SELECT payload FROM layouts ORDER BY position`

	sqlListSlot = `SELECT payload FROM layouts WHERE slot = ? ORDER BY position`

	sqlGet = `SELECT payload FROM layouts WHERE id = ?`

	sqlUpsert = `
INSERT INTO layouts (id, slot, hook_name, position, payload, updated_at)
VALUES (?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM layouts), ?, ?)
ON CONFLICT(id) DO UPDATE SET
	slot = excluded.slot,
	hook_name = excluded.hook_name,
	payload = excluded.payload,
	updated_at = excluded.updated_at`

	sqlDelete = `DELETE FROM layouts WHERE id = ?`
)

// SQLiteConfig configures the SQLite backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// Driver is DriverCGO or DriverPure (default).
	Driver string

	// WALMode enables write-ahead logging.
	WALMode bool

	// BusyTimeout is how long to wait for locks (default 5s).
	BusyTimeout time.Duration
}

// SQLiteStore is a Store backed by SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore opens the database and creates the schema.
func NewSQLiteStore(cfg SQLiteConfig, logger *slog.Logger) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, NewStorageError(BackendSQLite, "open", errors.New("db path cannot be empty"))
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverPure
	}
	if cfg.Driver != DriverCGO && cfg.Driver != DriverPure {
		return nil, NewStorageError(BackendSQLite, "open", fmt.Errorf("unknown driver %q", cfg.Driver))
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "layout.store.sqlite")

	db, err := sql.Open(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, NewStorageError(BackendSQLite, "open", err)
	}

	// SQLite only supports a single writer; pragmas are per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{db: db, config: cfg, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite layout store initialized",
		"path", cfg.Path,
		"driver", cfg.Driver,
		"wal_mode", cfg.WALMode,
	)
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStorageError(BackendSQLite, "enable_wal", err)
		}
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return NewStorageError(BackendSQLite, "set_busy_timeout", err)
	}
	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return NewStorageError(BackendSQLite, "create_schema", err)
	}
	return nil
}

// ListLayouts implements Store.
func (s *SQLiteStore) ListLayouts(ctx context.Context) ([]*layout.Layout, error) {
	return s.query(ctx, "list", sqlListAll)
}

// ListLayoutsForSlot implements Reader.
func (s *SQLiteStore) ListLayoutsForSlot(ctx context.Context, slot layout.Slot) ([]*layout.Layout, error) {
	return s.query(ctx, "list_slot", sqlListSlot, string(slot))
}

// GetLayout implements Reader.
func (s *SQLiteStore) GetLayout(ctx context.Context, id string) (*layout.Layout, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, sqlGet, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, NewStorageError(BackendSQLite, "get", err)
	}

	l, err := layout.Decode([]byte(payload))
	if err != nil {
		return nil, NewStorageError(BackendSQLite, "get", err)
	}
	return l, nil
}

// PutLayout implements Store.
func (s *SQLiteStore) PutLayout(ctx context.Context, l *layout.Layout) error {
	if err := checkWritable(l); err != nil {
		return err
	}

	payload, err := json.Marshal(l)
	if err != nil {
		return NewStorageError(BackendSQLite, "put", err)
	}

	_, err = s.db.ExecContext(ctx, sqlUpsert,
		l.ID, string(l.Slot), l.HookName, string(payload), now().UnixMilli())
	if err != nil {
		return NewStorageError(BackendSQLite, "put", err)
	}
	return nil
}

// DeleteLayout implements Store.
func (s *SQLiteStore) DeleteLayout(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, sqlDelete, id)
	if err != nil {
		return NewStorageError(BackendSQLite, "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return NewStorageError(BackendSQLite, "delete", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping implements Store.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return NewStorageError(BackendSQLite, "ping", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) query(ctx context.Context, op, query string, args ...any) ([]*layout.Layout, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewStorageError(BackendSQLite, op, err)
	}
	defer rows.Close()

	var out []*layout.Layout
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, NewStorageError(BackendSQLite, op, err)
		}
		l, err := layout.Decode([]byte(payload))
		if err != nil {
			s.logger.Warn("skipping undecodable layout row", "error", err)
			continue
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, NewStorageError(BackendSQLite, op, err)
	}
	return out, nil
}
