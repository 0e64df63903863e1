// Package server exposes the placement engine over HTTP.
//
// Render endpoints:
//
//	POST /v1/resolve                 {"slot": "footer", "context": {...}, "explain": true}
//	POST /v1/layouts/{id}/render     {"context": {...}}
//
// Admin endpoints, protected by API keys when keys are configured:
//
//	GET    /v1/layouts[?slot=footer]
//	POST   /v1/layouts
//	GET    /v1/layouts/{id}
//	PUT    /v1/layouts/{id}
//	DELETE /v1/layouts/{id}
//	GET    /v1/vocabulary
//
// Operational endpoints are the liveness and readiness probes, /version and
// the Prometheus metrics path.
//
// Errors are JSON objects with an "error" code and, except for internal
// errors, an "error_description".
package server
