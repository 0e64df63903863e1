package tracing

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"mercator-hq/placement/pkg/config"
)

// newRecordingTracer returns a Tracer backed by an in-memory span recorder.
func newRecordingTracer(t *testing.T) (*Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSpanProcessor(rec),
	)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	return &Tracer{
		tracer:   provider.Tracer(instrumentationName),
		provider: provider,
		enabled:  true,
	}, rec
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *config.TracingConfig
		wantErr bool
		enabled bool
	}{
		{
			name:    "nil config",
			config:  nil,
			wantErr: true,
		},
		{
			name: "disabled tracing",
			config: &config.TracingConfig{
				Enabled:     false,
				ServiceName: "placement",
			},
		},
		{
			name: "enabled with parent based sampler",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     SamplerParentBased,
				SampleRatio: 0.5,
				Endpoint:    "localhost:4317",
				ServiceName: "placement",
				OTLP: config.OTLPConfig{
					Insecure: true,
					Timeout:  time.Second,
				},
			},
			enabled: true,
		},
		{
			name: "enabled without endpoint",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     SamplerAlways,
				ServiceName: "placement",
			},
			wantErr: true,
		},
		{
			name: "unknown sampler",
			config: &config.TracingConfig{
				Enabled:     true,
				Sampler:     "sometimes",
				Endpoint:    "localhost:4317",
				ServiceName: "placement",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(tt.config, "test")
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			defer tracer.Shutdown(context.Background())

			if tracer.Enabled() != tt.enabled {
				t.Errorf("Enabled() = %v, want %v", tracer.Enabled(), tt.enabled)
			}
		})
	}
}

func TestTracer_DisabledIsNoop(t *testing.T) {
	tracer, err := New(&config.TracingConfig{}, "test")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, span := tracer.Start(context.Background(), "placement.render")
	defer span.End()

	if span.SpanContext().IsValid() {
		t.Error("disabled tracer produced a valid span context")
	}
	if got := TraceID(ctx); got != "" {
		t.Errorf("TraceID() = %q, want empty", got)
	}
	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestTracer_StartRecordsSpans(t *testing.T) {
	tracer, rec := newRecordingTracer(t)

	ctx, parent := tracer.Start(context.Background(), "parent")
	_, child := tracer.Start(ctx, "child")
	child.End()
	parent.End()

	if TraceID(ctx) == "" {
		t.Error("TraceID() is empty for a recorded span")
	}

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("recorded %d spans, want 2", len(spans))
	}
	if spans[0].Name() != "child" || spans[1].Name() != "parent" {
		t.Errorf("span names = %q, %q", spans[0].Name(), spans[1].Name())
	}
	if spans[0].Parent().SpanID() != spans[1].SpanContext().SpanID() {
		t.Error("child span is not parented to the outer span")
	}
}

func TestSetStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   codes.Code
		wantEvents int
	}{
		{name: "ok", err: nil, wantCode: codes.Ok},
		{name: "error", err: errors.New("store offline"), wantCode: codes.Error, wantEvents: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, rec := newRecordingTracer(t)
			_, span := tracer.Start(context.Background(), "op")
			SetStatus(span, tt.err, "list layouts")
			span.End()

			got := rec.Ended()[0]
			if got.Status().Code != tt.wantCode {
				t.Errorf("status = %v, want %v", got.Status().Code, tt.wantCode)
			}
			if len(got.Events()) != tt.wantEvents {
				t.Errorf("events = %d, want %d", len(got.Events()), tt.wantEvents)
			}
		})
	}
}

func TestSlotAttributes(t *testing.T) {
	if got := SlotAttributes("footer", ""); len(got) != 1 {
		t.Errorf("SlotAttributes without hook = %v", got)
	}
	got := SlotAttributes("hooks", "wp_head")
	if len(got) != 2 || got[1].Key != AttrHook || got[1].Value.AsString() != "wp_head" {
		t.Errorf("SlotAttributes with hook = %v", got)
	}

	tracer, rec := newRecordingTracer(t)
	_, span := tracer.Start(context.Background(), "placement.render")
	SetResultAttributes(span, 4, 2)
	span.End()

	attrs := map[string]int64{}
	for _, kv := range rec.Ended()[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInt64()
	}
	if attrs[string(AttrCandidates)] != 4 || attrs[string(AttrFragments)] != 2 {
		t.Errorf("result attributes = %v", attrs)
	}
}
