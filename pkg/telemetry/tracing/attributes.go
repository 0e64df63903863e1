package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrSlot       = attribute.Key("placement.slot")
	AttrHook       = attribute.Key("placement.hook")
	AttrLayoutID   = attribute.Key("placement.layout_id")
	AttrCandidates = attribute.Key("placement.candidates")
	AttrFragments  = attribute.Key("placement.fragments")
	AttrBuilder    = attribute.Key("placement.builder")

	AttrHTTPMethod = attribute.Key("http.method")
	AttrHTTPTarget = attribute.Key("http.target")
)

// SlotAttributes returns the attributes identifying a slot render.
func SlotAttributes(slot, hook string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{AttrSlot.String(slot)}
	if hook != "" {
		attrs = append(attrs, AttrHook.String(hook))
	}
	return attrs
}

// SetResultAttributes records the outcome of a slot render.
func SetResultAttributes(span trace.Span, candidates, fragments int) {
	span.SetAttributes(
		AttrCandidates.Int(candidates),
		AttrFragments.Int(fragments),
	)
}

func serverSpan(r *http.Request) []trace.SpanStartOption {
	return []trace.SpanStartOption{
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			AttrHTTPMethod.String(r.Method),
			AttrHTTPTarget.String(r.URL.Path),
		),
	}
}
