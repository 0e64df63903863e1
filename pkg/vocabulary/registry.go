package vocabulary

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

// Registry maps category keys to their accessors, admin options and tag
// vocabularies.
type Registry struct {
	mu sync.RWMutex

	categories map[string]*Category
	order      []string

	tags map[Pair][]Tag

	sidebarPositions []Option
	contributors     []string

	frozen bool
}

// NewRegistry creates an empty, unfrozen registry.
func NewRegistry() *Registry {
	return &Registry{
		categories: make(map[string]*Category),
		tags:       make(map[Pair][]Tag),
	}
}

// NewDefaultRegistry creates a registry with the core categories and tags,
// applies the given contributors in order and freezes it.
func NewDefaultRegistry(contributors ...Contributor) (*Registry, error) {
	r := NewRegistry()
	if err := RegisterCore(r); err != nil {
		return nil, err
	}
	for _, c := range contributors {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	r.Freeze()
	return r, nil
}

// Register applies a contributor.
func (r *Registry) Register(c Contributor) error {
	if c == nil {
		return nil
	}
	if r.IsFrozen() {
		return &ContributorError{Contributor: c.Name(), Cause: ErrFrozen}
	}
	if err := c.Contribute(r); err != nil {
		return &ContributorError{Contributor: c.Name(), Cause: err}
	}

	r.mu.Lock()
	r.contributors = append(r.contributors, c.Name())
	r.mu.Unlock()
	return nil
}

// RegisterCategory adds a category. Keys must be unique and carry an accessor.
func (r *Registry) RegisterCategory(c Category) error {
	if c.Key == "" {
		return fmt.Errorf("category key cannot be empty")
	}
	if c.Accessor == nil {
		return fmt.Errorf("category %q: accessor cannot be nil", c.Key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrFrozen
	}
	if _, exists := r.categories[c.Key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateCategory, c.Key)
	}

	c.Options = slices.Clone(c.Options)
	r.categories[c.Key] = &c
	r.order = append(r.order, c.Key)
	return nil
}

// AddOptions appends end values to an existing category, skipping values
// that are already present.
func (r *Registry) AddOptions(root string, opts ...Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrFrozen
	}
	c, ok := r.categories[root]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, root)
	}
	for _, opt := range opts {
		if !slices.ContainsFunc(c.Options, func(o Option) bool { return o.Value == opt.Value }) {
			c.Options = append(c.Options, opt)
		}
	}
	return nil
}

// RegisterTags attaches tags to a (root, end) pair. Use GeneralEnd as end to
// attach tags to every end of the root. The root must be registered.
func (r *Registry) RegisterTags(p Pair, tags ...Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrFrozen
	}
	if _, ok := r.categories[p.Root]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, p.Root)
	}
	for _, t := range tags {
		if t.Name == "" || t.Resolve == nil {
			return fmt.Errorf("tag for %s/%s: name and resolver are required", p.Root, p.End)
		}
	}
	r.tags[p] = append(r.tags[p], tags...)
	return nil
}

// AddSidebarPosition offers an additional sidebar position.
func (r *Registry) AddSidebarPosition(opt Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrFrozen
	}
	if !slices.ContainsFunc(r.sidebarPositions, func(o Option) bool { return o.Value == opt.Value }) {
		r.sidebarPositions = append(r.sidebarPositions, opt)
	}
	return nil
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// IsFrozen reports whether Freeze has been called.
func (r *Registry) IsFrozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Category looks up a category by key.
func (r *Registry) Category(root string) (Category, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[root]
	if !ok {
		return Category{}, false
	}
	return *c, true
}

// Accessor returns the accessor of a category.
func (r *Registry) Accessor(root string) (Accessor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.categories[root]
	if !ok {
		return nil, false
	}
	return c.Accessor, true
}

// Categories returns all categories in registration order.
func (r *Registry) Categories() []Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Category, 0, len(r.order))
	for _, key := range r.order {
		c := *r.categories[key]
		c.Options = slices.Clone(c.Options)
		out = append(out, c)
	}
	return out
}

// Tags returns the tags exposed by a matched pair: the tags registered for the
// exact end followed by the root's general tags.
func (r *Registry) Tags(p Pair) []Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exact := r.tags[p]
	general := r.tags[Pair{Root: p.Root, End: GeneralEnd}]
	if p.End == GeneralEnd {
		general = nil
	}

	out := make([]Tag, 0, len(exact)+len(general))
	out = append(out, exact...)
	out = append(out, general...)
	return out
}

// TagPairs returns every pair that has tags, for admin listings.
func (r *Registry) TagPairs() []Pair {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pairs := make([]Pair, 0, len(r.tags))
	for p := range r.tags {
		pairs = append(pairs, p)
	}
	slices.SortFunc(pairs, func(a, b Pair) int {
		if c := cmp.Compare(a.Root, b.Root); c != 0 {
			return c
		}
		return cmp.Compare(a.End, b.End)
	})
	return pairs
}

// SidebarPositions returns the offered sidebar positions.
func (r *Registry) SidebarPositions() []Option {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.sidebarPositions)
}

// Contributors returns the names of applied contributors.
func (r *Registry) Contributors() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.contributors)
}
