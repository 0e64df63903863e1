package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const testTraceParent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

func useTraceContext(t *testing.T) {
	t.Helper()
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })
}

func TestExtractInject(t *testing.T) {
	useTraceContext(t)

	in := http.Header{}
	in.Set("traceparent", testTraceParent)
	ctx := Extract(context.Background(), in)

	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		t.Fatal("Extract() did not produce a valid span context")
	}
	if got := sc.TraceID().String(); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("trace id = %s", got)
	}

	out := http.Header{}
	Inject(ctx, out)
	if got := out.Get("traceparent"); got != testTraceParent {
		t.Errorf("Inject() traceparent = %q, want %q", got, testTraceParent)
	}
}

func TestExtract_NoHeader(t *testing.T) {
	useTraceContext(t)

	ctx := Extract(context.Background(), http.Header{})
	if trace.SpanContextFromContext(ctx).IsValid() {
		t.Error("Extract() without headers produced a span context")
	}
}

func TestHTTPMiddleware(t *testing.T) {
	useTraceContext(t)
	tracer, rec := newRecordingTracer(t)

	var handlerTraceID string
	h := tracer.HTTPMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerTraceID = TraceID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/resolve", nil)
	req.Header.Set("traceparent", testTraceParent)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if handlerTraceID != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("handler trace id = %q", handlerTraceID)
	}
	if got := rr.Header().Get(TraceIDHeader); got != handlerTraceID {
		t.Errorf("%s = %q, want %q", TraceIDHeader, got, handlerTraceID)
	}

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}
	if spans[0].SpanKind() != trace.SpanKindServer {
		t.Errorf("span kind = %v, want server", spans[0].SpanKind())
	}
	if spans[0].Parent().SpanID().String() != "00f067aa0ba902b7" {
		t.Errorf("parent span id = %s", spans[0].Parent().SpanID())
	}
}
