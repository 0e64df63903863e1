package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20
	DefaultMaxBodyBytes    = int64(1 << 20)

	// Store defaults
	DefaultStoreBackend      = "file"
	DefaultFileStorePath     = "./layouts"
	DefaultFileStoreDebounce = 100 * time.Millisecond
	DefaultSQLitePath        = "data/layouts.db"
	DefaultSQLiteDriver      = "sqlite"
	DefaultSQLiteWALMode     = true
	DefaultSQLiteBusyTimeout = 5 * time.Second
	DefaultRedisKeyPrefix    = "placement:"

	// Engine defaults
	DefaultTimezone   = "UTC"
	DefaultAvatarSize = 32

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultPrometheusPath     = "/metrics"
	DefaultMetricsNamespace   = "placement"
	DefaultTracingSampler     = "parent_based"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingServiceName = "placement"
	DefaultOTLPTimeout        = 10 * time.Second
	DefaultLivenessPath       = "/healthz"
	DefaultReadinessPath      = "/readyz"
	DefaultHealthCheckTimeout = 5 * time.Second
)

// DefaultDurationBuckets are the resolution duration histogram buckets.
var DefaultDurationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5}

// DefaultAPIKeySources are used when no sources are configured.
var DefaultAPIKeySources = []APIKeySource{
	{Type: "header", Name: "Authorization", Scheme: "Bearer"},
	{Type: "header", Name: "X-API-Key"},
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyStoreDefaults(&cfg.Store)

	// Engine defaults
	if cfg.Engine.Timezone == "" {
		cfg.Engine.Timezone = DefaultTimezone
	}
	if cfg.Engine.AvatarSize == 0 {
		cfg.Engine.AvatarSize = DefaultAvatarSize
	}

	applyTelemetryDefaults(&cfg.Telemetry)

	if len(cfg.Security.Authentication.Sources) == 0 {
		cfg.Security.Authentication.Sources = append([]APIKeySource(nil), DefaultAPIKeySources...)
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.ListenAddress == "" {
		s.ListenAddress = DefaultListenAddress
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = DefaultShutdownTimeout
	}
	if s.MaxHeaderBytes == 0 {
		s.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if s.MaxBodyBytes == 0 {
		s.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

func applyStoreDefaults(s *StoreConfig) {
	if s.Backend == "" {
		s.Backend = DefaultStoreBackend
	}
	if s.File.Path == "" {
		s.File.Path = DefaultFileStorePath
	}
	if s.File.Debounce == 0 {
		s.File.Debounce = DefaultFileStoreDebounce
	}
	if s.SQLite.Path == "" {
		s.SQLite.Path = DefaultSQLitePath
	}
	if s.SQLite.Driver == "" {
		s.SQLite.Driver = DefaultSQLiteDriver
	}
	// WALMode is a pointer so an explicit false survives defaulting.
	if s.SQLite.WALMode == nil {
		wal := DefaultSQLiteWALMode
		s.SQLite.WALMode = &wal
	}
	if s.SQLite.BusyTimeout == 0 {
		s.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if s.Redis.KeyPrefix == "" {
		s.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLoggingLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLoggingFormat
	}

	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultPrometheusPath
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}
	if len(t.Metrics.DurationBuckets) == 0 {
		t.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}

	if t.Tracing.Sampler == "" {
		t.Tracing.Sampler = DefaultTracingSampler
	}
	if t.Tracing.SampleRatio == 0 {
		t.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = DefaultTracingServiceName
	}
	if t.Tracing.OTLP.Timeout == 0 {
		t.Tracing.OTLP.Timeout = DefaultOTLPTimeout
	}

	if t.Health.LivenessPath == "" {
		t.Health.LivenessPath = DefaultLivenessPath
	}
	if t.Health.ReadinessPath == "" {
		t.Health.ReadinessPath = DefaultReadinessPath
	}
	if t.Health.CheckTimeout == 0 {
		t.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
