package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "placement.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "0.0.0.0:9090"
  read_timeout: "30s"

store:
  backend: sqlite
  sqlite:
    path: ./test-layouts.db
    wal_mode: false

engine:
  timezone: Europe/Paris
  avatar_size: 48
  capabilities:
    commerce: true
    sidebar: true
  builders: [elementor, custom]

expiry:
  schedule: "@every 5m"

telemetry:
  logging:
    level: debug
    format: text
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("expected listen address %q, got %q", "0.0.0.0:9090", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("expected read timeout %v, got %v", 30*time.Second, cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("expected default write timeout, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Store.Backend != "sqlite" || cfg.Store.SQLite.Driver != DefaultSQLiteDriver {
		t.Errorf("unexpected store config: %+v", cfg.Store)
	}
	if cfg.Store.SQLite.WALMode == nil || *cfg.Store.SQLite.WALMode {
		t.Error("explicit wal_mode: false was overwritten by defaults")
	}
	if cfg.Engine.Timezone != "Europe/Paris" || cfg.Engine.AvatarSize != 48 {
		t.Errorf("unexpected engine config: %+v", cfg.Engine)
	}
	if !cfg.Engine.Capabilities.Commerce || cfg.Engine.Capabilities.LMS {
		t.Errorf("unexpected capabilities: %+v", cfg.Engine.Capabilities)
	}
	if len(cfg.Engine.Builders) != 2 {
		t.Errorf("expected 2 builders, got %v", cfg.Engine.Builders)
	}
	if cfg.Telemetry.Logging.Level != "debug" {
		t.Errorf("expected logging level %q, got %q", "debug", cfg.Telemetry.Logging.Level)
	}
	if !cfg.Telemetry.Metrics.IsEnabled() {
		t.Error("metrics should default to enabled")
	}
}

func TestLoadConfig_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_ADMIN_KEY", "0123456789abcdef-admin")
	path := writeConfig(t, `
security:
  authentication:
    keys:
      - key: "${TEST_ADMIN_KEY}"
        name: ops
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	keys := cfg.Security.Authentication.Keys
	if len(keys) != 1 || keys[0].Key != "0123456789abcdef-admin" {
		t.Errorf("expected expanded key, got %+v", keys)
	}
	if len(cfg.Security.Authentication.Sources) != len(DefaultAPIKeySources) {
		t.Errorf("expected default key sources, got %+v", cfg.Security.Authentication.Sources)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr func(error) bool
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
			wantErr: func(err error) bool { return errors.Is(err, os.ErrNotExist) },
		},
		{
			name:    "invalid yaml",
			path:    func(t *testing.T) string { return writeConfig(t, "server: [unclosed") },
			wantErr: func(err error) bool { return err != nil },
		},
		{
			name: "validation failure",
			path: func(t *testing.T) string { return writeConfig(t, "store:\n  backend: redis\n") },
			wantErr: func(err error) bool {
				var verr ValidationError
				return errors.As(err, &verr) && verr.Errors[0].Field == "store.redis.url"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.path(t))
			if err == nil || !tt.wantErr(err) {
				t.Errorf("LoadConfig() error = %v", err)
			}
		})
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "127.0.0.1:8080"
store:
  backend: memory
`)

	t.Setenv("PLACEMENT_SERVER_LISTEN_ADDRESS", "0.0.0.0:7000")
	t.Setenv("PLACEMENT_SERVER_READ_TIMEOUT", "3s")
	t.Setenv("PLACEMENT_STORE_BACKEND", "file")
	t.Setenv("PLACEMENT_STORE_FILE_WATCH", "true")
	t.Setenv("PLACEMENT_ENGINE_TIMEZONE", "America/New_York")
	t.Setenv("PLACEMENT_ENGINE_CAPABILITIES_MULTILINGUAL", "true")
	t.Setenv("PLACEMENT_ENGINE_LANGUAGES", "en, fr ,,de")
	t.Setenv("PLACEMENT_TELEMETRY_METRICS_ENABLED", "false")
	t.Setenv("PLACEMENT_TELEMETRY_TRACING_SAMPLE_RATIO", "0.25")
	t.Setenv("PLACEMENT_SECURITY_ADMIN_KEYS", "aaaaaaaaaaaaaaaa1,bbbbbbbbbbbbbbbb2")
	t.Setenv("PLACEMENT_ENGINE_AVATAR_SIZE", "not-a-number")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:7000" {
		t.Errorf("listen address = %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 3*time.Second {
		t.Errorf("read timeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Store.Backend != "file" || !cfg.Store.File.Watch {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Engine.Timezone != "America/New_York" {
		t.Errorf("timezone = %q", cfg.Engine.Timezone)
	}
	if got := cfg.Engine.Languages; len(got) != 3 || got[1] != "fr" {
		t.Errorf("languages = %v", got)
	}
	if cfg.Engine.AvatarSize != DefaultAvatarSize {
		t.Errorf("unparsable override should be ignored, avatar size = %d", cfg.Engine.AvatarSize)
	}
	if cfg.Telemetry.Metrics.IsEnabled() {
		t.Error("metrics should be disabled by override")
	}
	if cfg.Telemetry.Tracing.SampleRatio != 0.25 {
		t.Errorf("sample ratio = %v", cfg.Telemetry.Tracing.SampleRatio)
	}
	if keys := cfg.Security.Authentication.Keys; len(keys) != 2 || keys[1].Name != "env-2" {
		t.Errorf("admin keys = %+v", keys)
	}
}

func TestLoadConfigWithEnvOverrides_NoFile(t *testing.T) {
	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides(\"\") error = %v", err)
	}
	if cfg.Store.Backend != DefaultStoreBackend || cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := Default()
	ApplyDefaults(cfg)

	if len(cfg.Security.Authentication.Sources) != len(DefaultAPIKeySources) {
		t.Errorf("sources duplicated: %+v", cfg.Security.Authentication.Sources)
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) != len(DefaultDurationBuckets) {
		t.Errorf("buckets duplicated: %v", cfg.Telemetry.Metrics.DurationBuckets)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}
