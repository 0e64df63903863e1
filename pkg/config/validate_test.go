package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Errorf("expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	err := Validate(&Config{})
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors) < 2 {
		t.Errorf("expected multiple errors, got %d", len(verr.Errors))
	}
	if !strings.Contains(verr.Error(), "validation failed with") {
		t.Errorf("error message should mention multiple errors: %s", verr.Error())
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{name: "bad listen address", mutate: func(c *Config) { c.Server.ListenAddress = "8080" }, wantField: "server.listen_address"},
		{name: "negative timeout", mutate: func(c *Config) { c.Server.ReadTimeout = -1 }, wantField: "server.read_timeout"},
		{name: "unknown backend", mutate: func(c *Config) { c.Store.Backend = "mongo" }, wantField: "store.backend"},
		{name: "redis without url", mutate: func(c *Config) { c.Store.Backend = "redis" }, wantField: "store.redis.url"},
		{name: "redis bad scheme", mutate: func(c *Config) {
			c.Store.Backend = "redis"
			c.Store.Redis.URL = "http://localhost"
		}, wantField: "store.redis.url"},
		{name: "sqlite bad driver", mutate: func(c *Config) {
			c.Store.Backend = "sqlite"
			c.Store.SQLite.Driver = "postgres"
		}, wantField: "store.sqlite.driver"},
		{name: "unknown timezone", mutate: func(c *Config) { c.Engine.Timezone = "Mars/Olympus" }, wantField: "engine.timezone"},
		{name: "avatar size", mutate: func(c *Config) { c.Engine.AvatarSize = 1000 }, wantField: "engine.avatar_size"},
		{name: "unknown builder", mutate: func(c *Config) { c.Engine.Builders = []string{"divi"} }, wantField: "engine.builders[0]"},
		{name: "multilingual without languages", mutate: func(c *Config) { c.Engine.Capabilities.Multilingual = true }, wantField: "engine.languages"},
		{name: "bad cron", mutate: func(c *Config) { c.Expiry.Schedule = "every day" }, wantField: "expiry.schedule"},
		{name: "bad log level", mutate: func(c *Config) { c.Telemetry.Logging.Level = "trace" }, wantField: "telemetry.logging.level"},
		{name: "bad metrics path", mutate: func(c *Config) { c.Telemetry.Metrics.Path = "metrics" }, wantField: "telemetry.metrics.path"},
		{name: "unsorted buckets", mutate: func(c *Config) { c.Telemetry.Metrics.DurationBuckets = []float64{1, 0.5} }, wantField: "telemetry.metrics.duration_buckets"},
		{name: "tracing without endpoint", mutate: func(c *Config) { c.Telemetry.Tracing.Enabled = true }, wantField: "telemetry.tracing.endpoint"},
		{name: "bad sampler", mutate: func(c *Config) { c.Telemetry.Tracing.Sampler = "sometimes" }, wantField: "telemetry.tracing.sampler"},
		{name: "bad ratio", mutate: func(c *Config) { c.Telemetry.Tracing.SampleRatio = 2 }, wantField: "telemetry.tracing.sample_ratio"},
		{name: "bad health path", mutate: func(c *Config) { c.Telemetry.Health.ReadinessPath = "ready" }, wantField: "telemetry.health.readiness_path"},
		{name: "bad key source", mutate: func(c *Config) {
			c.Security.Authentication.Sources = []APIKeySource{{Type: "cookie", Name: "k"}}
		}, wantField: "security.authentication.sources[0].type"},
		{name: "short key", mutate: func(c *Config) {
			c.Security.Authentication.Keys = []APIKeyConfig{{Key: "short"}}
		}, wantField: "security.authentication.keys[0].key"},
		{name: "duplicate key", mutate: func(c *Config) {
			c.Security.Authentication.Keys = []APIKeyConfig{{Key: "0123456789abcdef"}, {Key: "0123456789abcdef"}}
		}, wantField: "security.authentication.keys[1].key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					return
				}
			}
			t.Errorf("expected error on %s, got %v", tt.wantField, verr.Errors)
		})
	}
}

func TestValidate_CronSchedules(t *testing.T) {
	for _, schedule := range []string{"@every 5m", "*/10 * * * *", "0 */5 * * * *", "@hourly"} {
		cfg := Default()
		cfg.Expiry.Schedule = schedule
		if err := Validate(cfg); err != nil {
			t.Errorf("schedule %q rejected: %v", schedule, err)
		}
	}
}
