package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"mercator-hq/placement/pkg/layout"
)

// FileConfig configures a FileStore.
type FileConfig struct {
	// Path is a directory of layout files or a single file.
	Path string

	// Watch enables reloading when files change.
	Watch bool

	// Debounce is the quiet period before a reload (default 100ms).
	Debounce time.Duration
}

var layoutExtensions = []string{".yaml", ".yml", ".json"}

// FileStore serves layouts from files. Each file holds one layout or a list
// of layouts. Layouts without an id take the file's base name when the file
// holds a single layout. Invalid files are skipped with a warning.
type FileStore struct {
	cfg    FileConfig
	logger *slog.Logger

	snapshot atomic.Pointer[fileSnapshot]
	reloads  atomic.Int64
}

type fileSnapshot struct {
	layouts []*layout.Layout
	byID    map[string]*layout.Layout
	skipped []SkippedFile
}

// SkippedFile is a layout file, or a record in one, left out of the last
// load.
type SkippedFile struct {
	Path     string
	LayoutID string
	Err      error
}

// NewFileStore creates a file store. Call Load before use.
func NewFileStore(cfg FileConfig, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 100 * time.Millisecond
	}
	s := &FileStore{
		cfg:    cfg,
		logger: logger.With("component", "layout.store.file"),
	}
	s.snapshot.Store(&fileSnapshot{byID: map[string]*layout.Layout{}})
	return s
}

// Load reads every layout file and atomically replaces the served set. On
// error the previous set stays in place.
func (s *FileStore) Load(ctx context.Context) error {
	info, err := os.Stat(s.cfg.Path)
	if err != nil {
		return NewStorageError(BackendFile, "stat", err)
	}

	var paths []string
	if info.IsDir() {
		err = filepath.WalkDir(s.cfg.Path, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != s.cfg.Path && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if isLayoutFile(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return NewStorageError(BackendFile, "walk", err)
		}
	} else {
		paths = []string{s.cfg.Path}
	}

	next := &fileSnapshot{byID: make(map[string]*layout.Layout)}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		layouts, err := readLayoutFile(path)
		if err != nil {
			s.logger.Warn("failed to load layout file, skipping",
				"path", path,
				"error", err,
			)
			next.skipped = append(next.skipped, SkippedFile{Path: path, Err: err})
			continue
		}
		for _, l := range layouts {
			if _, dup := next.byID[l.ID]; dup {
				s.logger.Warn("duplicate layout id, keeping first",
					"path", path,
					"layout_id", l.ID,
				)
				next.skipped = append(next.skipped, SkippedFile{Path: path, LayoutID: l.ID, Err: errDuplicateID})
				continue
			}
			next.byID[l.ID] = l
			next.layouts = append(next.layouts, l)
		}
	}

	s.snapshot.Store(next)
	s.reloads.Add(1)

	s.logger.Info("loaded layouts from files",
		"path", s.cfg.Path,
		"layout_count", len(next.layouts),
	)
	return nil
}

// Skipped returns the files and records left out of the last load.
func (s *FileStore) Skipped() []SkippedFile {
	return slices.Clone(s.snapshot.Load().skipped)
}

// Reloads returns how many times the layout set has been loaded.
func (s *FileStore) Reloads() int64 {
	return s.reloads.Load()
}

// Watch reloads the store whenever layout files change. It blocks until ctx
// is cancelled. It returns immediately when watching is disabled.
func (s *FileStore) Watch(ctx context.Context) error {
	if !s.cfg.Watch {
		return nil
	}

	w, err := NewFileWatcher(&FileWatcherConfig{
		Path:             s.cfg.Path,
		DebounceInterval: s.cfg.Debounce,
		Extensions:       layoutExtensions,
		SkipHidden:       true,
	}, s.logger)
	if err != nil {
		return NewStorageError(BackendFile, "watch", err)
	}
	defer w.Close()

	return w.Watch(ctx, func() error {
		return s.Load(ctx)
	})
}

// ListLayouts implements Store.
func (s *FileStore) ListLayouts(ctx context.Context) ([]*layout.Layout, error) {
	return cloneAll(s.snapshot.Load().layouts), nil
}

// ListLayoutsForSlot implements Reader.
func (s *FileStore) ListLayoutsForSlot(ctx context.Context, slot layout.Slot) ([]*layout.Layout, error) {
	return cloneAll(filterSlot(s.snapshot.Load().layouts, slot)), nil
}

// GetLayout implements Reader.
func (s *FileStore) GetLayout(ctx context.Context, id string) (*layout.Layout, error) {
	l, ok := s.snapshot.Load().byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return l.Clone(), nil
}

// PutLayout returns ErrReadOnly.
func (s *FileStore) PutLayout(ctx context.Context, l *layout.Layout) error {
	return ErrReadOnly
}

// DeleteLayout returns ErrReadOnly.
func (s *FileStore) DeleteLayout(ctx context.Context, id string) error {
	return ErrReadOnly
}

// Ping reports whether the layout path is still accessible.
func (s *FileStore) Ping(ctx context.Context) error {
	if _, err := os.Stat(s.cfg.Path); err != nil {
		return NewStorageError(BackendFile, "ping", err)
	}
	return nil
}

// Close implements Store.
func (s *FileStore) Close() error {
	return nil
}

func isLayoutFile(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, valid := range layoutExtensions {
		if ext == valid {
			return true
		}
	}
	return false
}

// readLayoutFile decodes one file. YAML documents are converted to JSON so
// that both formats share the layout's JSON decoding rules.
func readLayoutFile(path string) ([]*layout.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}

	if strings.ToLower(filepath.Ext(path)) != ".json" {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse %q: %w", path, err)
		}
		data, err = json.Marshal(normalizeYAML(doc))
		if err != nil {
			return nil, fmt.Errorf("convert %q: %w", path, err)
		}
	}

	layouts, err := decodeLayouts(data)
	if err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}

	if len(layouts) == 1 && layouts[0].ID == "" {
		base := filepath.Base(path)
		layouts[0].ID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	for i, l := range layouts {
		if l.ID == "" {
			return nil, fmt.Errorf("decode %q: layout %d has no id", path, i)
		}
	}
	return layouts, nil
}

// decodeLayouts accepts a single layout object or a list of them.
func decodeLayouts(data []byte) ([]*layout.Layout, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if data[0] == '[' {
		var list []*layout.Layout
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		out := list[:0]
		for _, l := range list {
			if l != nil {
				out = append(out, l)
			}
		}
		return out, nil
	}
	l, err := layout.Decode(data)
	if err != nil {
		return nil, err
	}
	return []*layout.Layout{l}, nil
}

// normalizeYAML converts map[any]any nodes, which encoding/json cannot
// marshal, into map[string]any.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = normalizeYAML(item)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = normalizeYAML(item)
		}
		return out
	case []any:
		for i, item := range t {
			t[i] = normalizeYAML(item)
		}
		return t
	default:
		return v
	}
}
