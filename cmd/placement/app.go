package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/placement/pkg/builder"
	"mercator-hq/placement/pkg/cli"
	"mercator-hq/placement/pkg/config"
	"mercator-hq/placement/pkg/expiry"
	"mercator-hq/placement/pkg/layout"
	"mercator-hq/placement/pkg/layout/store"
	"mercator-hq/placement/pkg/magictags"
	"mercator-hq/placement/pkg/placement"
	"mercator-hq/placement/pkg/render"
	"mercator-hq/placement/pkg/security/auth"
	"mercator-hq/placement/pkg/targeting"
	"mercator-hq/placement/pkg/telemetry/logging"
	"mercator-hq/placement/pkg/telemetry/metrics"
	"mercator-hq/placement/pkg/telemetry/tracing"
	"mercator-hq/placement/pkg/vocabulary"
	"mercator-hq/placement/pkg/vocabulary/commerce"
	"mercator-hq/placement/pkg/vocabulary/lms"
	"mercator-hq/placement/pkg/vocabulary/multilingual"
)

// app is the engine wired from configuration, shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *vocabulary.Registry
	store    store.Store
	filter   *placement.ExpirationFilter
	metrics  *metrics.Collector
	tracer   *tracing.Tracer
	renderer *render.Service
	auditor  *expiry.Auditor
	auth     *auth.Middleware
}

// loadConfig reads the config file (defaults when path is empty), applies
// PLACEMENT_* overrides and validates the result.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(path)
	if err != nil {
		return nil, cli.NewConfigError(path, err.Error())
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, verbose bool) (*slog.Logger, error) {
	lc := logging.FromConfig(cfg.Telemetry.Logging)
	if verbose {
		lc.Level = "debug"
	}
	logger, err := logging.New(lc)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	return logger, nil
}

// commandLogger is the logger of one-shot commands: warnings and above
// unless verbose.
func commandLogger(cfg *config.Config, verbose bool) (*slog.Logger, error) {
	lc := logging.FromConfig(cfg.Telemetry.Logging)
	lc.Level = "warn"
	if verbose {
		lc.Level = "debug"
	}
	logger, err := logging.New(lc)
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	return logger, nil
}

// buildRegistry registers the core vocabulary plus the contributors whose
// capabilities are switched on.
func buildRegistry(engine config.EngineConfig) (*vocabulary.Registry, error) {
	var contributors []vocabulary.Contributor
	if engine.Capabilities.Commerce {
		contributors = append(contributors, commerce.New(commerce.Options{CartPageID: engine.CartPageID}))
	}
	if engine.Capabilities.LMS {
		contributors = append(contributors, lms.New())
	}
	if engine.Capabilities.Multilingual {
		contributors = append(contributors, multilingual.New(engine.Languages...))
	}
	registry, err := vocabulary.NewDefaultRegistry(contributors...)
	if err != nil {
		return nil, fmt.Errorf("build vocabulary: %w", err)
	}
	return registry, nil
}

// storeConfig maps the store section onto the backend options.
func storeConfig(sc config.StoreConfig) store.Config {
	wal := config.DefaultSQLiteWALMode
	if sc.SQLite.WALMode != nil {
		wal = *sc.SQLite.WALMode
	}
	return store.Config{
		Backend: sc.Backend,
		File: store.FileConfig{
			Path:     sc.File.Path,
			Watch:    sc.File.Watch,
			Debounce: sc.File.Debounce,
		},
		SQLite: store.SQLiteConfig{
			Path:        sc.SQLite.Path,
			Driver:      sc.SQLite.Driver,
			WALMode:     wal,
			BusyTimeout: sc.SQLite.BusyTimeout,
		},
		Redis: store.RedisConfig{
			URL:          sc.Redis.URL,
			KeyPrefix:    sc.Redis.KeyPrefix,
			PoolSize:     sc.Redis.PoolSize,
			DialTimeout:  sc.Redis.DialTimeout,
			ReadTimeout:  sc.Redis.ReadTimeout,
			WriteTimeout: sc.Redis.WriteTimeout,
		},
	}
}

func expirationFilter(engine config.EngineConfig) (*placement.ExpirationFilter, error) {
	loc, err := time.LoadLocation(engine.Timezone)
	if err != nil {
		return nil, cli.NewConfigError("engine.timezone", err.Error())
	}
	return placement.NewExpirationFilter(loc), nil
}

func detector(engine config.EngineConfig) (*builder.Detector, error) {
	if len(engine.Builders) == 0 {
		return builder.NewDetector(nil), nil
	}
	enabled := make([]builder.Origin, 0, len(engine.Builders))
	for _, name := range engine.Builders {
		origin, ok := builder.ParseOrigin(name)
		if !ok {
			return nil, cli.NewConfigError("engine.builders", fmt.Sprintf("unknown builder %q", name))
		}
		enabled = append(enabled, origin)
	}
	return builder.NewDetector(enabled), nil
}

func capabilities(engine config.EngineConfig) layout.Capabilities {
	return layout.Capabilities{
		Sidebar: engine.Capabilities.Sidebar,
		PWA:     engine.Capabilities.PWA,
	}
}

// openStore opens the configured store without the rest of the engine.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	s, err := store.Open(ctx, storeConfig(cfg.Store), logger)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	return s, nil
}

// newApp wires the engine. The caller owns Close.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close(context.Background())
		}
	}()

	if a.registry, err = buildRegistry(cfg.Engine); err != nil {
		return nil, err
	}
	if a.filter, err = expirationFilter(cfg.Engine); err != nil {
		return nil, err
	}
	det, err := detector(cfg.Engine)
	if err != nil {
		return nil, err
	}
	if a.store, err = openStore(ctx, cfg, logger); err != nil {
		return nil, err
	}

	a.metrics = metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())
	if a.tracer, err = tracing.New(&cfg.Telemetry.Tracing, Version); err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	matcher := targeting.NewMatcher(a.registry, logger)
	resolver := placement.NewResolver(matcher, &placement.Config{
		Expiration: a.filter,
		Observer:   a.metrics,
		Logger:     logger,
	})
	substitutor := magictags.New(a.registry, &magictags.Config{
		AvatarSize: cfg.Engine.AvatarSize,
		Observer:   a.metrics,
		Logger:     logger,
	})

	a.renderer, err = render.NewService(render.Config{
		Store:       a.store,
		Resolver:    resolver,
		Substitutor: substitutor,
		Detector:    det,
		Tracer:      a.tracer,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	a.auditor = expiry.New(a.store, expiry.Config{
		Schedule: cfg.Expiry.Schedule,
		Filter:   a.filter,
		Recorder: a.metrics,
		Logger:   logger,
	})

	ring := auth.NewKeyRing(cfg.Security.Authentication.Keys)
	a.auth = auth.NewMiddleware(ring, auth.SourcesFromConfig(cfg.Security.Authentication.Sources), logger)

	logger.Debug("engine wired",
		"store", cfg.Store.Backend,
		"contributors", a.registry.Contributors(),
		"timezone", a.filter.Location().String(),
		"tracing", a.tracer.Enabled(),
	)
	return a, nil
}

// Close releases the store and flushes pending spans.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.auditor != nil {
		a.auditor.Stop()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown tracer: %w", err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errors.Join(errs...)
}
