package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PLACEMENT_"

// LoadConfig loads configuration from a YAML file at the specified path.
// ${VAR} references in the file are expanded from the environment before
// parsing. It applies default values, validates the configuration, and
// returns any errors.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML configuration and applies defaults. It does not
// validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration and applies environment
// variable overrides. Environment variables follow the naming convention
// PLACEMENT_SECTION_FIELD (e.g., PLACEMENT_SERVER_LISTEN_ADDRESS) and take
// precedence over file-based configuration.
//
// An empty path loads the defaults.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		cfg, err = Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	envString("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	envDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	// Store overrides
	envString("STORE_BACKEND", &cfg.Store.Backend)
	envString("STORE_FILE_PATH", &cfg.Store.File.Path)
	envBool("STORE_FILE_WATCH", &cfg.Store.File.Watch)
	envString("STORE_SQLITE_PATH", &cfg.Store.SQLite.Path)
	envString("STORE_SQLITE_DRIVER", &cfg.Store.SQLite.Driver)
	envString("STORE_REDIS_URL", &cfg.Store.Redis.URL)
	envString("STORE_REDIS_KEY_PREFIX", &cfg.Store.Redis.KeyPrefix)

	// Engine overrides
	envString("ENGINE_TIMEZONE", &cfg.Engine.Timezone)
	envInt("ENGINE_AVATAR_SIZE", &cfg.Engine.AvatarSize)
	envBool("ENGINE_CAPABILITIES_COMMERCE", &cfg.Engine.Capabilities.Commerce)
	envBool("ENGINE_CAPABILITIES_LMS", &cfg.Engine.Capabilities.LMS)
	envBool("ENGINE_CAPABILITIES_MULTILINGUAL", &cfg.Engine.Capabilities.Multilingual)
	envBool("ENGINE_CAPABILITIES_SIDEBAR", &cfg.Engine.Capabilities.Sidebar)
	envBool("ENGINE_CAPABILITIES_PWA", &cfg.Engine.Capabilities.PWA)
	if val := os.Getenv(EnvPrefix + "ENGINE_LANGUAGES"); val != "" {
		cfg.Engine.Languages = splitList(val)
	}

	// Expiry overrides
	envString("EXPIRY_SCHEDULE", &cfg.Expiry.Schedule)

	// Telemetry overrides
	envString("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	envString("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	if val := os.Getenv(EnvPrefix + "TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = &b
		}
	}
	envString("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)
	envBool("TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	envString("TELEMETRY_TRACING_ENDPOINT", &cfg.Telemetry.Tracing.Endpoint)
	if val := os.Getenv(EnvPrefix + "TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}

	// Security overrides: a comma-separated list of admin keys.
	if val := os.Getenv(EnvPrefix + "SECURITY_ADMIN_KEYS"); val != "" {
		for i, key := range splitList(val) {
			cfg.Security.Authentication.Keys = append(cfg.Security.Authentication.Keys, APIKeyConfig{
				Key:  key,
				Name: fmt.Sprintf("env-%d", i+1),
			})
		}
	}
}

func envString(name string, dst *string) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		*dst = val
	}
}

func envBool(name string, dst *bool) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func envInt(name string, dst *int) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

func envDuration(name string, dst *time.Duration) {
	if val := os.Getenv(EnvPrefix + name); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
