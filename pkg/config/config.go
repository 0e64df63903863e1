package config

import "time"

// Config is the root configuration structure for the placement service.
type Config struct {
	// Server contains HTTP server configuration.
	Server ServerConfig `yaml:"server"`

	// Store selects and configures the layout store backend.
	Store StoreConfig `yaml:"store"`

	// Engine contains resolution and rendering settings.
	Engine EngineConfig `yaml:"engine"`

	// Expiry configures the scheduled audit of expired layouts.
	Expiry ExpiryConfig `yaml:"expiry"`

	// Telemetry contains logging, metrics, tracing and health settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Security contains admin API authentication settings.
	Security SecurityConfig `yaml:"security"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 15s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits request body size.
	// Default: 1048576 (1MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// StoreConfig selects the layout store.
type StoreConfig struct {
	// Backend is one of "memory", "file", "sqlite", "redis".
	// Default: "file"
	Backend string `yaml:"backend"`

	File   FileStoreConfig   `yaml:"file"`
	SQLite SQLiteStoreConfig `yaml:"sqlite"`
	Redis  RedisStoreConfig  `yaml:"redis"`
}

// FileStoreConfig configures the file backend.
type FileStoreConfig struct {
	// Path is a directory of layout files or a single file.
	// Default: "./layouts"
	Path string `yaml:"path"`

	// Watch reloads layouts when files change.
	// Default: false
	Watch bool `yaml:"watch"`

	// Debounce is the quiet period before a reload.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`
}

// SQLiteStoreConfig configures the SQLite backend.
type SQLiteStoreConfig struct {
	// Path is the database file.
	// Default: "data/layouts.db"
	Path string `yaml:"path"`

	// Driver is "sqlite" (pure Go) or "sqlite3" (cgo).
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode *bool `yaml:"wal_mode"`

	// BusyTimeout is how long to wait for database locks.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RedisStoreConfig configures the Redis backend.
type RedisStoreConfig struct {
	// URL is a redis:// connection URL.
	URL string `yaml:"url"`

	// KeyPrefix namespaces the store's keys.
	// Default: "placement:"
	KeyPrefix string `yaml:"key_prefix"`

	PoolSize     int           `yaml:"pool_size"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// EngineConfig contains resolution and rendering settings.
type EngineConfig struct {
	// Timezone is the IANA zone expiration instants are read in.
	// Default: "UTC"
	Timezone string `yaml:"timezone"`

	// AvatarSize is the pixel size of author avatars in magic tags.
	// Default: 32
	AvatarSize int `yaml:"avatar_size"`

	// Capabilities toggles optional vocabularies and slots.
	Capabilities CapabilitiesConfig `yaml:"capabilities"`

	// Languages are the site languages offered by the multilingual
	// vocabulary.
	Languages []string `yaml:"languages"`

	// CartPageID is the commerce cart page id.
	CartPageID string `yaml:"cart_page_id"`

	// Builders lists the enabled page builder origins. Empty enables all.
	Builders []string `yaml:"builders"`
}

// CapabilitiesConfig toggles optional features.
type CapabilitiesConfig struct {
	Commerce     bool `yaml:"commerce"`
	LMS          bool `yaml:"lms"`
	Multilingual bool `yaml:"multilingual"`
	Sidebar      bool `yaml:"sidebar"`
	PWA          bool `yaml:"pwa"`
}

// ExpiryConfig configures the expired layout audit.
type ExpiryConfig struct {
	// Schedule is a cron expression (seconds optional, descriptors such as
	// "@every 5m" accepted). Empty disables the audit.
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health check configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// RedactPII redacts secrets and email addresses in logs.
	// Default: false
	RedactPII bool `yaml:"redact_pii"`

	// RedactPatterns contains custom redaction patterns.
	RedactPatterns []RedactPattern `yaml:"redact_patterns"`
}

// RedactPattern defines a custom redaction pattern.
type RedactPattern struct {
	// Name is a descriptive name for the pattern.
	Name string `yaml:"name"`

	// Pattern is the regular expression to match.
	Pattern string `yaml:"pattern"`

	// Replacement is the string to replace matches with.
	Replacement string `yaml:"replacement"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and served.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "placement"
	Namespace string `yaml:"namespace"`

	// DurationBuckets defines histogram buckets for resolution duration
	// (seconds).
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// IsEnabled reports whether metrics are enabled.
func (c MetricsConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether distributed tracing is active.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio", "parent_based"
	// Default: "parent_based"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector endpoint.
	// Example: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "placement"
	ServiceName string `yaml:"service_name"`

	// OTLP contains OTLP exporter specific configuration.
	OTLP OTLPConfig `yaml:"otlp"`
}

// OTLPConfig contains OTLP exporter configuration.
type OTLPConfig struct {
	// Insecure disables TLS for OTLP connection.
	Insecure bool `yaml:"insecure"`

	// Timeout is the timeout for OTLP exports.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health check endpoint configuration.
type HealthConfig struct {
	// LivenessPath is the path for the liveness probe endpoint.
	// Default: "/healthz"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is the path for the readiness probe endpoint.
	// Default: "/readyz"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout is the timeout for individual component health checks.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}

// SecurityConfig contains security-related configuration.
type SecurityConfig struct {
	// Authentication protects the admin API.
	Authentication AuthenticationConfig `yaml:"authentication"`
}

// AuthenticationConfig contains API key authentication configuration.
type AuthenticationConfig struct {
	// Sources defines where to extract API keys from.
	// Default: Authorization: Bearer, then X-API-Key.
	Sources []APIKeySource `yaml:"sources"`

	// Keys is the list of valid admin keys. The admin API is open when no
	// keys are configured.
	Keys []APIKeyConfig `yaml:"keys"`
}

// APIKeySource defines where to extract API keys from in HTTP requests.
type APIKeySource struct {
	// Type is the source type.
	// Options: "header", "query"
	Type string `yaml:"type"`

	// Name is the header name or query parameter name.
	Name string `yaml:"name"`

	// Scheme is the authentication scheme for header-based extraction.
	// Example: "Bearer"
	Scheme string `yaml:"scheme,omitempty"`
}

// APIKeyConfig contains configuration for a single API key.
type APIKeyConfig struct {
	// Key is the API key value.
	Key string `yaml:"key"`

	// Name identifies the key holder in logs.
	Name string `yaml:"name"`

	// Disabled turns the key off without removing it.
	Disabled bool `yaml:"disabled,omitempty"`
}
