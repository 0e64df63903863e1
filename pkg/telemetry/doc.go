// Package telemetry groups the observability packages of the placement
// service.
//
//   - logging: slog construction, request-scoped fields and redaction
//   - metrics: Prometheus collectors for resolution, substitution, inventory and HTTP
//   - tracing: OpenTelemetry spans exported over OTLP gRPC
//   - health: liveness and readiness probes
//
// Every package is configured from the telemetry section of the service
// configuration.
package telemetry
