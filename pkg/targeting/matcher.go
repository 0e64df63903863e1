package targeting

import (
	"log/slog"
	"slices"

	"mercator-hq/placement/pkg/request"
	"mercator-hq/placement/pkg/vocabulary"
)

// CategorySource resolves category keys to context accessors.
// *vocabulary.Registry implements it.
type CategorySource interface {
	Accessor(root string) (vocabulary.Accessor, bool)
}

// Result is the outcome of evaluating a condition set.
type Result struct {
	// Matched reports whether the condition set applies to the context.
	Matched bool

	// GroupIndex is the index of the first matching group, or -1 when the
	// set is empty or did not match.
	GroupIndex int

	// Categories are the (root, end) pairs of the first matching group's
	// "===" atoms, in atom order.
	Categories []vocabulary.Pair
}

// Matcher evaluates atoms, groups and condition sets.
type Matcher struct {
	categories CategorySource
	logger     *slog.Logger
}

// NewMatcher creates a matcher backed by the given category source.
func NewMatcher(categories CategorySource, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{
		categories: categories,
		logger:     logger,
	}
}

// Match evaluates a condition set (OR over groups).
func (m *Matcher) Match(cs ConditionSet, ctx *request.Context) Result {
	if cs.Corrupt() {
		m.logger.Debug("corrupt condition set never matches", "error", cs.Err())
		return Result{GroupIndex: -1}
	}
	if len(cs.Groups) == 0 {
		return Result{Matched: true, GroupIndex: -1}
	}

	for i, group := range cs.Groups {
		// Short-circuit: the first matching group wins
		if m.MatchGroup(group, ctx) {
			return Result{
				Matched:    true,
				GroupIndex: i,
				Categories: groupCategories(group),
			}
		}
	}

	return Result{GroupIndex: -1}
}

// MatchGroup evaluates a group (AND over atoms). An empty group matches.
func (m *Matcher) MatchGroup(group Group, ctx *request.Context) bool {
	for _, atom := range group {
		if !m.MatchAtom(atom, ctx) {
			return false
		}
	}
	return true
}

// MatchAtom evaluates a single atom. Atoms that cannot be evaluated never
// match, whatever their comparator.
func (m *Matcher) MatchAtom(atom Atom, ctx *request.Context) bool {
	if !atom.Comparator.Valid() || atom.Root == "" || atom.End.IsEmpty() {
		m.logger.Debug("malformed atom never matches",
			"root", atom.Root,
			"comparator", atom.Comparator,
		)
		return false
	}

	if m.categories == nil {
		return false
	}
	accessor, ok := m.categories.Accessor(atom.Root)
	if !ok || accessor == nil {
		m.logger.Debug("unrecognized category never matches", "root", atom.Root)
		return false
	}

	actual, ok := m.read(atom.Root, accessor, ctx)
	if !ok {
		m.logger.Debug("category not evaluable for context", "root", atom.Root)
		return false
	}

	hit := slices.ContainsFunc(atom.End.Values, func(v string) bool {
		return v != "" && slices.Contains(actual, v)
	})

	if atom.Comparator == NotEqual {
		return !hit
	}
	return hit
}

// read calls an accessor, treating a panicking collaborator as not evaluable.
func (m *Matcher) read(root string, accessor vocabulary.Accessor, ctx *request.Context) (values []string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("category accessor panicked",
				"root", root,
				"panic", r,
			)
			values, ok = nil, false
		}
	}()
	return accessor(ctx)
}

// Pairs returns the (root, end) pairs any group of cs can expose, in group
// order without duplicates. Corrupt sets expose none.
func (cs ConditionSet) Pairs() []vocabulary.Pair {
	if cs.Corrupt() {
		return nil
	}
	var out []vocabulary.Pair
	seen := make(map[vocabulary.Pair]bool)
	for _, group := range cs.Groups {
		for _, p := range groupCategories(group) {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}

func groupCategories(group Group) []vocabulary.Pair {
	var pairs []vocabulary.Pair
	for _, atom := range group {
		if atom.Comparator != Equal {
			continue
		}
		for _, v := range atom.End.Values {
			if v == "" {
				continue
			}
			pairs = append(pairs, vocabulary.Pair{Root: atom.Root, End: v})
		}
	}
	return pairs
}
