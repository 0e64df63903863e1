// Package metrics exposes placement metrics to Prometheus.
//
// A Collector owns its registry and implements both placement.Observer and
// magictags.Observer, so the core packages report without importing
// Prometheus:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	resolver := placement.NewResolver(matcher, &placement.Config{Observer: collector})
//	router.Handle("/metrics", collector.Handler())
//
// Metrics:
//   - placement_resolutions_total{slot}
//   - placement_resolution_duration_seconds{slot}
//   - placement_resolution_selected{slot}
//   - placement_candidates_excluded_total{slot,reason}
//   - placement_substitutions_total{root}
//   - placement_layouts{state}
//   - placement_expiry_audits_total{result}
//   - placement_http_requests_total{route,method,status}
//   - placement_http_request_duration_seconds{route,method}
//
// Slot labels come from requests, so they pass a cardinality limiter and
// collapse into "other" beyond its bound.
package metrics
