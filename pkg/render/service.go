package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/placement/pkg/builder"
	"mercator-hq/placement/pkg/layout"
	"mercator-hq/placement/pkg/layout/store"
	"mercator-hq/placement/pkg/magictags"
	"mercator-hq/placement/pkg/placement"
	"mercator-hq/placement/pkg/request"
	"mercator-hq/placement/pkg/telemetry/tracing"
	"mercator-hq/placement/pkg/vocabulary"
)

// ErrNotIndividual is returned when an individual render targets a layout
// of another slot.
var ErrNotIndividual = errors.New("layout is not an individual layout")

// Fragment is one rendered layout.
type Fragment struct {
	LayoutID string          `json:"layout_id"`
	Slot     layout.Slot     `json:"slot"`
	Priority int             `json:"priority"`
	Origin   builder.Origin  `json:"origin"`
	Body     string          `json:"body"`
	Sidebar  *layout.Sidebar `json:"sidebar,omitempty"`
	Inside   *layout.Inside  `json:"inside,omitempty"`

	// Categories are the matched (root, end) pairs that drove substitution.
	Categories []vocabulary.Pair `json:"categories,omitempty"`
}

// Request is one slot render.
type Request struct {
	Slot layout.Slot
	Hook string

	// Context is the request context; nil is treated as an empty context.
	Context *request.Context

	// Now overrides the evaluation instant; zero means Context.Time().
	Now time.Time
}

// Tracer starts spans. Both trace.Tracer and the telemetry tracer satisfy it.
type Tracer interface {
	Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span)
}

// Config wires a Service.
type Config struct {
	Store       store.Reader
	Resolver    *placement.Resolver
	Substitutor *magictags.Substitutor

	// Detector defaults to a detector with every builder enabled.
	Detector *builder.Detector

	// Translator defaults to a StoreTranslator over Store.
	Translator Translator

	// Renderers maps builder origins to body renderers; missing origins
	// render the raw body.
	Renderers map[builder.Origin]BodyRenderer

	Tracer Tracer
	Logger *slog.Logger
}

// Service renders slots. It is safe for concurrent use.
type Service struct {
	store       store.Reader
	resolver    *placement.Resolver
	substitutor *magictags.Substitutor
	detector    *builder.Detector
	translator  Translator
	renderers   map[builder.Origin]BodyRenderer
	tracer      Tracer
	logger      *slog.Logger
}

// NewService creates a render service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("render: store is required")
	}
	if cfg.Resolver == nil {
		return nil, errors.New("render: resolver is required")
	}
	if cfg.Substitutor == nil {
		return nil, errors.New("render: substitutor is required")
	}

	s := &Service{
		store:       cfg.Store,
		resolver:    cfg.Resolver,
		substitutor: cfg.Substitutor,
		detector:    cfg.Detector,
		translator:  cfg.Translator,
		renderers:   cfg.Renderers,
		tracer:      cfg.Tracer,
		logger:      cfg.Logger,
	}
	if s.detector == nil {
		s.detector = builder.NewDetector(nil)
	}
	if s.translator == nil {
		s.translator = StoreTranslator{Store: cfg.Store}
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("mercator-hq/placement/render")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// AvailableTags returns the magic tags l's body can use under any of its
// condition groups.
func (s *Service) AvailableTags(l *layout.Layout) []vocabulary.Tag {
	return s.substitutor.Available(l.Conditions.Pairs())
}

// Render resolves and renders a slot. Only store failures are returned as
// errors; every per-layout problem excludes that layout.
func (s *Service) Render(ctx context.Context, req Request) ([]Fragment, error) {
	fragments, _, err := s.render(ctx, req, false)
	return fragments, err
}

// Explain renders like Render and also returns the resolution trace.
func (s *Service) Explain(ctx context.Context, req Request) ([]Fragment, *placement.Trace, error) {
	return s.render(ctx, req, true)
}

func (s *Service) render(ctx context.Context, req Request, explain bool) ([]Fragment, *placement.Trace, error) {
	ctx, span := s.tracer.Start(ctx, "placement.render",
		trace.WithAttributes(tracing.SlotAttributes(string(req.Slot), req.Hook)...),
	)
	defer span.End()

	candidates, err := s.store.ListLayoutsForSlot(ctx, req.Slot)
	if err != nil {
		tracing.SetStatus(span, err, "list layouts")
		return nil, nil, fmt.Errorf("list layouts for slot %q: %w", req.Slot, err)
	}

	rctx := req.Context
	if rctx == nil {
		rctx = &request.Context{}
	}
	now := req.Now
	if now.IsZero() {
		now = rctx.Time()
	}

	query := placement.Query{Slot: req.Slot, Hook: req.Hook}
	var (
		resolved []placement.Resolved
		tr       *placement.Trace
	)
	if explain {
		resolved, tr = s.resolver.Explain(query, candidates, rctx, now)
	} else {
		resolved = s.resolver.Resolve(query, candidates, rctx, now)
	}

	if req.Slot.Mode() == layout.ModeSingle && len(resolved) > 1 {
		resolved = resolved[:1]
	}

	fragments := make([]Fragment, 0, len(resolved))
	for _, res := range resolved {
		f, ok := s.fragment(ctx, res, rctx)
		if ok {
			fragments = append(fragments, f)
		}
	}

	tracing.SetResultAttributes(span, len(candidates), len(fragments))
	s.logger.Debug("slot rendered",
		"slot", req.Slot,
		"hook", req.Hook,
		"candidates", len(candidates),
		"fragments", len(fragments),
	)
	return fragments, tr, nil
}

// RenderIndividual renders one individual layout by id, applying its
// conditions and expiration. ok is false when the layout does not apply to
// the request.
func (s *Service) RenderIndividual(ctx context.Context, id string, rctx *request.Context, now time.Time) (Fragment, bool, error) {
	ctx, span := s.tracer.Start(ctx, "placement.render_individual",
		trace.WithAttributes(tracing.AttrLayoutID.String(id)),
	)
	defer span.End()

	l, err := s.store.GetLayout(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			tracing.SetStatus(span, err, "get layout")
		}
		return Fragment{}, false, err
	}
	if l.Slot != layout.SlotIndividual {
		return Fragment{}, false, ErrNotIndividual
	}

	if rctx == nil {
		rctx = &request.Context{}
	}
	if now.IsZero() {
		now = rctx.Time()
	}

	res, ok := s.resolver.ResolveOne(placement.Query{Slot: layout.SlotIndividual}, []*layout.Layout{l}, rctx, now)
	if !ok {
		return Fragment{}, false, nil
	}
	f, ok := s.fragment(ctx, res, rctx)
	return f, ok, nil
}

// fragment renders one resolved layout. ok is false when rendering failed.
func (s *Service) fragment(ctx context.Context, res placement.Resolved, rctx *request.Context) (Fragment, bool) {
	l := res.Layout

	translated, err := s.translator.Translate(ctx, l, rctx.Language)
	if err != nil {
		s.logger.Warn("translation lookup failed, using original layout",
			"layout_id", l.ID,
			"language", rctx.Language,
			"error", err,
		)
		translated = l
	}

	origin := s.detector.Detect(translated)
	body, err := dispatch(s.renderers, origin).RenderBody(ctx, translated)
	if err != nil {
		s.logger.Error("layout body render failed",
			"layout_id", translated.ID,
			"origin", origin,
			"error", err,
		)
		return Fragment{}, false
	}

	return Fragment{
		LayoutID:   translated.ID,
		Slot:       l.Slot,
		Priority:   l.EffectivePriority(),
		Origin:     origin,
		Body:       s.substitutor.Substitute(body, res.Categories, rctx),
		Sidebar:    l.Sidebar,
		Inside:     l.Inside,
		Categories: res.Categories,
	}, true
}
