// Package health provides liveness and readiness probes.
//
// Liveness only reports that the process runs. Readiness runs every
// registered check concurrently, each bounded by the configured timeout:
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout, logger)
//	checker.RegisterCheck("store", st.Ping, true)
//	checker.RegisterCheck("expiry", auditor.Check, false)
//
// A failing critical check answers 503 ("unhealthy"). A failing
// non-critical check answers 200 with status "degraded".
package health
