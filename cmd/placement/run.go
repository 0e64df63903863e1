package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mercator-hq/placement/pkg/cli"
	"mercator-hq/placement/pkg/config"
	"mercator-hq/placement/pkg/layout/store"
	"mercator-hq/placement/pkg/server"
	"mercator-hq/placement/pkg/telemetry/health"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the placement server",
	Long: `Start the placement HTTP server with the specified configuration.

The server exposes the render API (/v1/resolve, /v1/layouts/{id}/render), the
admin API for layouts and the vocabulary, health probes and metrics. With the
file backend and watch enabled, layout files are reloaded on change. When
expiry.schedule is set, expired layouts are audited on that schedule.

Examples:
  # Start with defaults (file store in ./layouts)
  placement run

  # Start with custom config
  placement run --config /etc/placement/config.yaml

  # Override listen address
  placement run --listen 0.0.0.0:8080

  # Validate config without starting server
  placement run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
}

// runConfig loads the configuration and applies the run flag overrides.
func runConfig() (*config.Config, error) {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}
	return cfg, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := runConfig()
	if err != nil {
		return err
	}

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
		fmt.Fprintf(cmd.OutOrStdout(), "  listen:  %s\n", cfg.Server.ListenAddress)
		fmt.Fprintf(cmd.OutOrStdout(), "  store:   %s\n", cfg.Store.Backend)
		fmt.Fprintf(cmd.OutOrStdout(), "  expiry:  %s\n", scheduleLabel(cfg.Expiry.Schedule))
		return nil
	}

	logger, err := newLogger(cfg, verbose)
	if err != nil {
		return err
	}

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := a.Close(closeCtx); err != nil {
			logger.Error("shutdown incomplete", "error", err)
		}
	}()

	checker := health.New(cfg.Telemetry.Health.CheckTimeout, logger)
	if cfg.Expiry.Schedule != "" {
		checker.RegisterCheck("expiry", a.auditor.Check, false)
	}

	srv, err := server.New(server.Options{
		Server:       cfg.Server,
		Telemetry:    cfg.Telemetry,
		Renderer:     a.renderer,
		Store:        a.store,
		Registry:     a.registry,
		Capabilities: capabilities(cfg.Engine),
		Metrics:      a.metrics,
		Health:       checker,
		Tracer:       a.tracer,
		Auth:         a.auth,
		Version:      Version,
		Logger:       logger,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	if fs, ok := a.store.(*store.FileStore); ok && cfg.Store.File.Watch {
		g.Go(func() error {
			return fs.Watch(gctx)
		})
	}
	if cfg.Expiry.Schedule != "" {
		g.Go(func() error {
			if _, err := a.auditor.RunOnce(gctx); err != nil {
				logger.Warn("initial expiry audit failed", "error", err)
			}
			return a.auditor.Start(gctx)
		})
	}

	logger.Info("placement started",
		"version", Version,
		"listen_address", cfg.Server.ListenAddress,
		"store", cfg.Store.Backend,
		"expiry_schedule", cfg.Expiry.Schedule,
	)

	start := time.Now()
	if err := g.Wait(); err != nil {
		return cli.NewCommandError("run", err)
	}
	logger.Info("placement stopped", "uptime", time.Since(start).Round(time.Second).String())
	return nil
}

func scheduleLabel(schedule string) string {
	if schedule == "" {
		return "disabled"
	}
	return schedule
}
