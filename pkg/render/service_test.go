package render

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"mercator-hq/placement/pkg/builder"
	"mercator-hq/placement/pkg/layout"
	"mercator-hq/placement/pkg/layout/store"
	"mercator-hq/placement/pkg/magictags"
	"mercator-hq/placement/pkg/placement"
	"mercator-hq/placement/pkg/request"
	"mercator-hq/placement/pkg/targeting"
	"mercator-hq/placement/pkg/vocabulary"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, st store.Reader, mutate func(*Config)) *Service {
	t.Helper()
	registry, err := vocabulary.NewDefaultRegistry()
	if err != nil {
		t.Fatalf("NewDefaultRegistry() error = %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := Config{
		Store:       st,
		Resolver:    placement.NewResolver(targeting.NewMatcher(registry, logger), &placement.Config{Logger: logger}),
		Substitutor: magictags.New(registry, &magictags.Config{Logger: logger}),
		Logger:      logger,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	svc, err := NewService(cfg)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func authorConditions() targeting.ConditionSet {
	return targeting.NewConditionSet(targeting.Group{
		{Root: vocabulary.RootArchiveType, End: targeting.Value("author"), Comparator: targeting.Equal},
	})
}

func authorRequest() *request.Context {
	return &request.Context{
		Page:    request.PageArchive,
		Archive: &request.Archive{Kind: "author"},
		Author:  &request.Person{ID: "7", DisplayName: "Jane"},
	}
}

func TestService_Render_SingleSlot(t *testing.T) {
	st := store.NewMemoryStore(
		&layout.Layout{ID: "L1", Slot: layout.SlotHeader, Priority: layout.IntPtr(10), Body: "generic"},
		&layout.Layout{ID: "L2", Slot: layout.SlotHeader, Priority: layout.IntPtr(5), Conditions: authorConditions(), Body: "Hello {author}"},
	)
	svc := newTestService(t, st, nil)

	got, err := svc.Render(context.Background(), Request{Slot: layout.SlotHeader, Context: authorRequest(), Now: testNow})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Render() returned %d fragments, want 1 for a single-render slot", len(got))
	}
	if got[0].LayoutID != "L2" || got[0].Body != "Hello Jane" {
		t.Errorf("fragment = %+v", got[0])
	}

	got, err = svc.Render(context.Background(), Request{Slot: layout.SlotHeader, Context: &request.Context{}, Now: testNow})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(got) != 1 || got[0].LayoutID != "L1" {
		t.Errorf("non-author render = %+v", got)
	}
}

func TestService_Render_StackingSlot(t *testing.T) {
	st := store.NewMemoryStore(
		&layout.Layout{ID: "a", Slot: layout.SlotHook, HookName: "main", Priority: layout.IntPtr(20), Body: "a"},
		&layout.Layout{ID: "b", Slot: layout.SlotHook, HookName: "main", Priority: layout.IntPtr(1), Body: "b"},
		&layout.Layout{ID: "c", Slot: layout.SlotHook, HookName: "other", Body: "c"},
		&layout.Layout{ID: "d", Slot: layout.SlotHook, HookName: "main", Body: "d",
			Expiration: &layout.Expiration{Enabled: true, At: "2026-01-01T00:00"}},
	)
	svc := newTestService(t, st, nil)

	got, trace, err := svc.Explain(context.Background(), Request{Slot: layout.SlotHook, Hook: "main", Now: testNow})
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	if len(got) != 2 || got[0].LayoutID != "b" || got[1].LayoutID != "a" {
		t.Errorf("fragments = %+v", got)
	}
	if trace == nil || len(trace.Steps) != 4 {
		t.Errorf("trace = %+v", trace)
	}
}

func TestService_Render_Translation(t *testing.T) {
	st := store.NewMemoryStore(
		&layout.Layout{ID: "en", Slot: layout.SlotFooter, Language: "en", Translations: map[string]string{"fr": "fr", "de": "missing"}, Body: "Hello"},
		&layout.Layout{ID: "fr", Slot: layout.SlotIndividual, Language: "fr", Body: "Bonjour"},
	)
	svc := newTestService(t, st, nil)

	tests := []struct {
		language string
		want     string
	}{
		{language: "", want: "Hello"},
		{language: "en", want: "Hello"},
		{language: "fr", want: "Bonjour"},
		{language: "de", want: "Hello"},
	}

	for _, tt := range tests {
		t.Run(tt.language, func(t *testing.T) {
			got, err := svc.Render(context.Background(), Request{
				Slot:    layout.SlotFooter,
				Context: &request.Context{Language: tt.language},
				Now:     testNow,
			})
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if len(got) != 1 || got[0].Body != tt.want {
				t.Errorf("Render() = %+v, want body %q", got, tt.want)
			}
		})
	}
}

func TestService_Render_BuilderDispatch(t *testing.T) {
	st := store.NewMemoryStore(
		&layout.Layout{ID: "el", Slot: layout.SlotGlobal, Meta: map[string]string{builder.MetaElementorMode: "builder"}, Body: "raw"},
		&layout.Layout{ID: "plain", Slot: layout.SlotGlobal, Body: "plain"},
		&layout.Layout{ID: "broken", Slot: layout.SlotGlobal, Meta: map[string]string{builder.MetaBeaverEnabled: "1"}, Body: "x"},
	)
	svc := newTestService(t, st, func(cfg *Config) {
		cfg.Renderers = map[builder.Origin]BodyRenderer{
			builder.Elementor: BodyRendererFunc(func(_ context.Context, l *layout.Layout) (string, error) {
				return `<div class="elementor">` + l.Body + `</div>`, nil
			}),
			builder.Beaver: BodyRendererFunc(func(context.Context, *layout.Layout) (string, error) {
				return "", errors.New("beaver offline")
			}),
		}
	})

	got, err := svc.Render(context.Background(), Request{Slot: layout.SlotGlobal, Now: testNow})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Render() = %+v, want 2 fragments", got)
	}
	if got[0].Origin != builder.Elementor || got[0].Body != `<div class="elementor">raw</div>` {
		t.Errorf("elementor fragment = %+v", got[0])
	}
	if got[1].Origin != builder.Default || got[1].Body != "plain" {
		t.Errorf("default fragment = %+v", got[1])
	}
}

func TestService_RenderIndividual(t *testing.T) {
	st := store.NewMemoryStore(
		&layout.Layout{ID: "short", Slot: layout.SlotIndividual, Conditions: authorConditions(), Body: "By {author}"},
		&layout.Layout{ID: "head", Slot: layout.SlotHeader, Body: "h"},
	)
	svc := newTestService(t, st, nil)
	ctx := context.Background()

	f, ok, err := svc.RenderIndividual(ctx, "short", authorRequest(), testNow)
	if err != nil || !ok {
		t.Fatalf("RenderIndividual() = %v, %v", ok, err)
	}
	if f.Body != "By Jane" {
		t.Errorf("Body = %q", f.Body)
	}

	if _, ok, err := svc.RenderIndividual(ctx, "short", &request.Context{}, testNow); err != nil || ok {
		t.Errorf("non-matching RenderIndividual() = %v, %v", ok, err)
	}
	if _, _, err := svc.RenderIndividual(ctx, "head", nil, testNow); !errors.Is(err, ErrNotIndividual) {
		t.Errorf("header RenderIndividual() error = %v, want ErrNotIndividual", err)
	}
	if _, _, err := svc.RenderIndividual(ctx, "nope", nil, testNow); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing RenderIndividual() error = %v, want ErrNotFound", err)
	}
}

type failingStore struct{ store.Reader }

func (failingStore) ListLayoutsForSlot(context.Context, layout.Slot) ([]*layout.Layout, error) {
	return nil, errors.New("connection refused")
}

func TestService_Render_StoreError(t *testing.T) {
	svc := newTestService(t, failingStore{}, nil)
	if _, err := svc.Render(context.Background(), Request{Slot: layout.SlotHeader}); err == nil {
		t.Error("expected store error")
	}
}

func TestNewService_Validation(t *testing.T) {
	if _, err := NewService(Config{}); err == nil {
		t.Error("expected error without store")
	}
	if _, err := NewService(Config{Store: store.NewMemoryStore()}); err == nil {
		t.Error("expected error without resolver")
	}
}
