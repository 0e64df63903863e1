package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"mercator-hq/placement/pkg/builder"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// CronParser parses expiry schedules. Seconds are optional.
var CronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateStore(&cfg.Store)...)
	errs = append(errs, validateEngine(&cfg.Engine)...)
	errs = append(errs, validateExpiry(&cfg.Expiry)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)
	errs = append(errs, validateSecurity(&cfg.Security)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{Field: "server.listen_address", Message: "listen address is required"})
	} else if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid listen address %q: %v", cfg.ListenAddress, err),
		})
	}

	durations := []struct {
		field string
		value time.Duration
	}{
		{"server.read_timeout", cfg.ReadTimeout},
		{"server.write_timeout", cfg.WriteTimeout},
		{"server.idle_timeout", cfg.IdleTimeout},
		{"server.shutdown_timeout", cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		if d.value < 0 {
			errs = append(errs, FieldError{Field: d.field, Message: "must not be negative"})
		}
	}

	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{Field: "server.max_header_bytes", Message: "must not be negative"})
	}
	if cfg.MaxBodyBytes < 0 {
		errs = append(errs, FieldError{Field: "server.max_body_bytes", Message: "must not be negative"})
	}

	return errs
}

func validateStore(cfg *StoreConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory":
	case "file":
		if cfg.File.Path == "" {
			errs = append(errs, FieldError{Field: "store.file.path", Message: "path is required for the file backend"})
		}
		if cfg.File.Debounce < 0 {
			errs = append(errs, FieldError{Field: "store.file.debounce", Message: "must not be negative"})
		}
	case "sqlite":
		if cfg.SQLite.Path == "" {
			errs = append(errs, FieldError{Field: "store.sqlite.path", Message: "path is required for the sqlite backend"})
		}
		if cfg.SQLite.Driver != "sqlite" && cfg.SQLite.Driver != "sqlite3" {
			errs = append(errs, FieldError{
				Field:   "store.sqlite.driver",
				Message: fmt.Sprintf("invalid driver %q: must be 'sqlite' or 'sqlite3'", cfg.SQLite.Driver),
			})
		}
	case "redis":
		if cfg.Redis.URL == "" {
			errs = append(errs, FieldError{Field: "store.redis.url", Message: "url is required for the redis backend"})
		} else if !strings.HasPrefix(cfg.Redis.URL, "redis://") && !strings.HasPrefix(cfg.Redis.URL, "rediss://") {
			errs = append(errs, FieldError{Field: "store.redis.url", Message: "url must use the redis:// or rediss:// scheme"})
		}
		if cfg.Redis.PoolSize < 0 {
			errs = append(errs, FieldError{Field: "store.redis.pool_size", Message: "must not be negative"})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "store.backend",
			Message: fmt.Sprintf("invalid backend %q: must be 'memory', 'file', 'sqlite', or 'redis'", cfg.Backend),
		})
	}

	return errs
}

func validateEngine(cfg *EngineConfig) []FieldError {
	var errs []FieldError

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		errs = append(errs, FieldError{
			Field:   "engine.timezone",
			Message: fmt.Sprintf("unknown timezone %q", cfg.Timezone),
		})
	}
	if cfg.AvatarSize < 1 || cfg.AvatarSize > 512 {
		errs = append(errs, FieldError{Field: "engine.avatar_size", Message: "avatar size must be between 1 and 512"})
	}
	for i, name := range cfg.Builders {
		if _, ok := builder.ParseOrigin(name); !ok {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("engine.builders[%d]", i),
				Message: fmt.Sprintf("unknown builder %q", name),
			})
		}
	}
	if cfg.Capabilities.Multilingual && len(cfg.Languages) == 0 {
		errs = append(errs, FieldError{
			Field:   "engine.languages",
			Message: "at least one language is required when multilingual is enabled",
		})
	}

	return errs
}

func validateExpiry(cfg *ExpiryConfig) []FieldError {
	if cfg.Schedule == "" {
		return nil
	}
	if _, err := CronParser.Parse(cfg.Schedule); err != nil {
		return []FieldError{{
			Field:   "expiry.schedule",
			Message: fmt.Sprintf("invalid cron schedule %q: %v", cfg.Schedule, err),
		}}
	}
	return nil
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.IsEnabled() && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{Field: "telemetry.metrics.path", Message: "metrics path must start with /"})
	}
	for i := 1; i < len(cfg.Metrics.DurationBuckets); i++ {
		if cfg.Metrics.DurationBuckets[i] <= cfg.Metrics.DurationBuckets[i-1] {
			errs = append(errs, FieldError{Field: "telemetry.metrics.duration_buckets", Message: "buckets must be strictly increasing"})
			break
		}
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	switch cfg.Tracing.Sampler {
	case "always", "never", "ratio", "parent_based":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', 'ratio', or 'parent_based'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}

	for _, p := range []struct{ field, value string }{
		{"telemetry.health.liveness_path", cfg.Health.LivenessPath},
		{"telemetry.health.readiness_path", cfg.Health.ReadinessPath},
	} {
		if !strings.HasPrefix(p.value, "/") {
			errs = append(errs, FieldError{Field: p.field, Message: "path must start with /"})
		}
	}
	if cfg.Health.CheckTimeout < 0 || cfg.Health.CheckTimeout > 60*time.Second {
		errs = append(errs, FieldError{Field: "telemetry.health.check_timeout", Message: "check timeout must be between 0 and 60s"})
	}

	return errs
}

func validateSecurity(cfg *SecurityConfig) []FieldError {
	var errs []FieldError

	for i, src := range cfg.Authentication.Sources {
		field := fmt.Sprintf("security.authentication.sources[%d]", i)
		if src.Type != "header" && src.Type != "query" {
			errs = append(errs, FieldError{Field: field + ".type", Message: fmt.Sprintf("invalid source type %q: must be 'header' or 'query'", src.Type)})
		}
		if src.Name == "" {
			errs = append(errs, FieldError{Field: field + ".name", Message: "name is required"})
		}
	}

	seen := make(map[string]bool)
	for i, key := range cfg.Authentication.Keys {
		field := fmt.Sprintf("security.authentication.keys[%d]", i)
		if len(key.Key) < 16 {
			errs = append(errs, FieldError{Field: field + ".key", Message: "key must be at least 16 characters"})
		}
		if seen[key.Key] {
			errs = append(errs, FieldError{Field: field + ".key", Message: "duplicate key"})
		}
		seen[key.Key] = true
	}

	return errs
}
