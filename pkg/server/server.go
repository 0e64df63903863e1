package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"mercator-hq/placement/pkg/config"
	"mercator-hq/placement/pkg/layout"
	"mercator-hq/placement/pkg/layout/store"
	"mercator-hq/placement/pkg/render"
	"mercator-hq/placement/pkg/security/auth"
	"mercator-hq/placement/pkg/telemetry/health"
	"mercator-hq/placement/pkg/telemetry/metrics"
	"mercator-hq/placement/pkg/telemetry/tracing"
	"mercator-hq/placement/pkg/vocabulary"
)

// Options wires a Server.
type Options struct {
	Server    config.ServerConfig
	Telemetry config.TelemetryConfig

	Renderer *render.Service
	Store    store.Store
	Registry *vocabulary.Registry

	// Capabilities gate the slots listed by the vocabulary endpoint.
	Capabilities layout.Capabilities

	// Optional collaborators.
	Metrics *metrics.Collector
	Health  *health.Checker
	Tracer  *tracing.Tracer
	Auth    *auth.Middleware

	Version string
	Logger  *slog.Logger
}

// Server is the placement HTTP server.
type Server struct {
	opts       Options
	handler    http.Handler
	logger     *slog.Logger
	httpServer *http.Server

	shutdownOnce sync.Once
	mu           sync.Mutex
	running      bool
}

// New validates opts and builds the router.
func New(opts Options) (*Server, error) {
	if opts.Renderer == nil {
		return nil, errors.New("server: renderer is required")
	}
	if opts.Store == nil {
		return nil, errors.New("server: store is required")
	}
	if opts.Registry == nil {
		return nil, errors.New("server: vocabulary registry is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	defaults := config.Config{Server: opts.Server, Telemetry: opts.Telemetry}
	config.ApplyDefaults(&defaults)
	opts.Server, opts.Telemetry = defaults.Server, defaults.Telemetry

	if opts.Health == nil {
		opts.Health = health.New(opts.Telemetry.Health.CheckTimeout, opts.Logger)
	}
	opts.Health.RegisterCheck("store", opts.Store.Ping, true)

	s := &Server{opts: opts, logger: opts.Logger}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured address and serves until ctx is done or
// the listener fails. A cancelled ctx triggers a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Server.ListenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.Server.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server is already running")
	}
	s.running = true
	s.httpServer = &http.Server{
		Handler:        s.handler,
		ReadTimeout:    s.opts.Server.ReadTimeout,
		WriteTimeout:   s.opts.Server.WriteTimeout,
		IdleTimeout:    s.opts.Server.IdleTimeout,
		MaxHeaderBytes: s.opts.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	srv := s.httpServer
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting placement server", "address", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	}
}

// Shutdown gracefully stops the server within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		srv := s.httpServer
		running := s.running
		s.running = false
		s.mu.Unlock()
		if !running || srv == nil {
			return
		}

		shutdownCtx := ctx
		if timeout := s.opts.Server.ShutdownTimeout; timeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.opts.Server.ShutdownTimeout.String())
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}
		s.logger.Info("placement server stopped")
	})

	return shutdownErr
}
