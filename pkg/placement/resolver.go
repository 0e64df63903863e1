package placement

import (
	"cmp"
	"log/slog"
	"slices"
	"time"

	"mercator-hq/placement/pkg/layout"
	"mercator-hq/placement/pkg/request"
	"mercator-hq/placement/pkg/targeting"
	"mercator-hq/placement/pkg/vocabulary"
)

// Query identifies the slot being rendered.
type Query struct {
	Slot layout.Slot

	// Hook is the hook name; only meaningful for the hook slot.
	Hook string
}

// Resolved is a layout selected for rendering.
type Resolved struct {
	Layout *layout.Layout

	// Categories are the (root, end) pairs of the first matching group's
	// positive atoms; they drive magic tag substitution.
	Categories []vocabulary.Pair

	// GroupIndex is the first matching group, or -1 for unconditional
	// layouts.
	GroupIndex int
}

// Config configures a Resolver.
type Config struct {
	// Expiration interprets expiration instants. Nil means UTC.
	Expiration *ExpirationFilter

	// Observer receives exclusion and resolution events.
	Observer Observer

	Logger *slog.Logger
}

// Resolver selects and orders layouts for a slot. It is safe for concurrent
// use.
type Resolver struct {
	matcher    *targeting.Matcher
	expiration *ExpirationFilter
	observer   Observer
	logger     *slog.Logger
}

// NewResolver creates a resolver. cfg may be nil.
func NewResolver(matcher *targeting.Matcher, cfg *Config) *Resolver {
	if cfg == nil {
		cfg = &Config{}
	}
	r := &Resolver{
		matcher:    matcher,
		expiration: cfg.Expiration,
		observer:   cfg.Observer,
		logger:     cfg.Logger,
	}
	if r.expiration == nil {
		r.expiration = utcFilter
	}
	if r.observer == nil {
		r.observer = nopObserver{}
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Resolve returns the layouts applicable to q for the request, ordered by
// effective priority ascending. Candidates with equal priority keep their
// input order.
func (r *Resolver) Resolve(q Query, candidates []*layout.Layout, ctx *request.Context, now time.Time) []Resolved {
	return r.resolve(q, candidates, ctx, now, nil)
}

// Explain resolves like Resolve and additionally returns the per-candidate
// decisions.
func (r *Resolver) Explain(q Query, candidates []*layout.Layout, ctx *request.Context, now time.Time) ([]Resolved, *Trace) {
	trace := &Trace{}
	out := r.resolve(q, candidates, ctx, now, trace)
	return out, trace
}

// ResolveOne returns the winning layout for q, if any.
func (r *Resolver) ResolveOne(q Query, candidates []*layout.Layout, ctx *request.Context, now time.Time) (Resolved, bool) {
	out := r.Resolve(q, candidates, ctx, now)
	if len(out) == 0 {
		return Resolved{}, false
	}
	return out[0], true
}

func (r *Resolver) resolve(q Query, candidates []*layout.Layout, ctx *request.Context, now time.Time, trace *Trace) []Resolved {
	start := time.Now()

	var out []Resolved
	for _, l := range candidates {
		if l == nil {
			continue
		}

		if reason, ok := r.exclude(q, l, now); ok {
			r.excluded(q, l, reason, trace)
			continue
		}

		res := r.matcher.Match(l.Conditions, ctx)
		if !res.Matched {
			r.excluded(q, l, ReasonNoMatch, trace)
			continue
		}

		out = append(out, Resolved{
			Layout:     l,
			Categories: res.Categories,
			GroupIndex: res.GroupIndex,
		})
	}

	slices.SortStableFunc(out, func(a, b Resolved) int {
		return cmp.Compare(a.Layout.EffectivePriority(), b.Layout.EffectivePriority())
	})

	if trace != nil {
		for _, res := range out {
			trace.add(TraceStep{
				LayoutID:   res.Layout.ID,
				Priority:   res.Layout.EffectivePriority(),
				Selected:   true,
				GroupIndex: res.GroupIndex,
			})
		}
	}

	r.observer.Resolved(q.Slot, len(candidates), len(out), time.Since(start))
	return out
}

func (r *Resolver) exclude(q Query, l *layout.Layout, now time.Time) (Reason, bool) {
	if l.Slot != q.Slot {
		return ReasonSlot, true
	}
	if q.Slot == layout.SlotHook && l.HookName != q.Hook {
		return ReasonHook, true
	}
	if r.expiration.Expired(l, now) {
		return ReasonExpired, true
	}
	return "", false
}

func (r *Resolver) excluded(q Query, l *layout.Layout, reason Reason, trace *Trace) {
	r.logger.Debug("layout excluded",
		"slot", q.Slot,
		"layout_id", l.ID,
		"reason", reason,
	)
	r.observer.Excluded(q.Slot, l.ID, reason)
	trace.add(TraceStep{
		LayoutID:   l.ID,
		Priority:   l.EffectivePriority(),
		Reason:     reason,
		GroupIndex: -1,
	})
}
