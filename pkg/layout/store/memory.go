package store

import (
	"context"
	"sync"

	"mercator-hq/placement/pkg/layout"
)

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*layout.Layout
}

// NewMemoryStore creates a store holding the given layouts in order.
func NewMemoryStore(layouts ...*layout.Layout) *MemoryStore {
	s := &MemoryStore{byID: make(map[string]*layout.Layout)}
	for _, l := range layouts {
		if l == nil {
			continue
		}
		s.put(l.Clone())
	}
	return s
}

func (s *MemoryStore) put(l *layout.Layout) {
	if _, ok := s.byID[l.ID]; !ok {
		s.order = append(s.order, l.ID)
	}
	s.byID[l.ID] = l
}

// ListLayouts implements Store.
func (s *MemoryStore) ListLayouts(ctx context.Context) ([]*layout.Layout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*layout.Layout, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Clone())
	}
	return out, nil
}

// ListLayoutsForSlot implements Reader.
func (s *MemoryStore) ListLayoutsForSlot(ctx context.Context, slot layout.Slot) ([]*layout.Layout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*layout.Layout
	for _, id := range s.order {
		if l := s.byID[id]; l.Slot == slot {
			out = append(out, l.Clone())
		}
	}
	return out, nil
}

// GetLayout implements Reader.
func (s *MemoryStore) GetLayout(ctx context.Context, id string) (*layout.Layout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return l.Clone(), nil
}

// PutLayout implements Store.
func (s *MemoryStore) PutLayout(ctx context.Context, l *layout.Layout) error {
	if err := checkWritable(l); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(l.Clone())
	return nil
}

// DeleteLayout implements Store.
func (s *MemoryStore) DeleteLayout(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Ping implements Store.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
