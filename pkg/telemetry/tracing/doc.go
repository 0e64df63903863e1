// Package tracing provides OpenTelemetry tracing for the placement service.
//
// A Tracer is built from telemetry.tracing configuration. When tracing is
// disabled the tracer is a noop and spans cost next to nothing. When it is
// enabled spans are exported over OTLP gRPC:
//
//	telemetry:
//	  tracing:
//	    enabled: true
//	    endpoint: localhost:4317
//	    sampler: parent_based
//	    sample_ratio: 0.1
//	    otlp:
//	      insecure: true
//
// The render service opens a span per slot render ("placement.render") and
// per individual render ("placement.render_individual"). The HTTP server
// wraps every request with HTTPMiddleware, which continues a W3C
// traceparent sent by the caller and echoes the trace id in X-Trace-ID.
package tracing
