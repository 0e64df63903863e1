// Package config loads the placement service configuration.
//
// Configuration is read from YAML, completed with defaults, overridden from
// the environment and validated, in that order:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("placement.yaml")
//
// ${VAR} references in the file are expanded before parsing. Environment
// overrides follow the convention PLACEMENT_SECTION_FIELD:
//
//   - PLACEMENT_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - PLACEMENT_STORE_BACKEND overrides store.backend
//   - PLACEMENT_ENGINE_TIMEZONE overrides engine.timezone
//   - PLACEMENT_SECURITY_ADMIN_KEYS appends comma-separated admin keys
//
// Validation collects every problem into a ValidationError:
//
//	configuration validation failed with 2 errors:
//	  - store.redis.url: url is required for the redis backend
//	  - engine.timezone: unknown timezone "Mars/Olympus"
//
// A minimal configuration:
//
//	server:
//	  listen_address: "0.0.0.0:8080"
//	store:
//	  backend: file
//	  file:
//	    path: ./layouts
//	    watch: true
//	engine:
//	  timezone: Europe/Paris
//	expiry:
//	  schedule: "@every 5m"
//	security:
//	  authentication:
//	    keys:
//	      - key: "${PLACEMENT_ADMIN_KEY}"
//	        name: ops
package config
