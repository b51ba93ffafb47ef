package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/study-lab/internal/config"
	"github.com/JaimeStill/study-lab/internal/infrastructure"
)

// Server owns the study-lab process: infrastructure, the API modules and the
// HTTP listener, all tied to one lifecycle coordinator.
type Server struct {
	infra           *infrastructure.Infrastructure
	modules         *Modules
	http            *httpServer
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

func NewServer(cfg *config.Config) (*Server, error) {
	infra, err := infrastructure.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("infrastructure: %w", err)
	}

	modules, err := NewModules(infra, cfg)
	if err != nil {
		return nil, fmt.Errorf("modules: %w", err)
	}

	router := buildRouter(infra)
	modules.Mount(router)

	logger := infra.Logger.With("system", "server")
	logger.Info("server initialized",
		"version", cfg.Version,
		"addr", cfg.Server.Addr(),
		slog.Group("ingest",
			"storage_path", cfg.Storage.BasePath,
			"max_upload", cfg.Storage.MaxUploadSize,
			"ratelimit_store", cfg.RateLimit.Store,
		),
		slog.Group("features",
			"classifier", cfg.Moderation.APIKey != "",
			"agent", cfg.Summarizer.Enabled(),
		),
	)

	return &Server{
		infra:           infra,
		modules:         modules,
		http:            newHTTPServer(&cfg.Server, router, infra.Logger),
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeoutDuration(),
	}, nil
}

// Start returns once the listener is bound. Database and storage checks
// finish in the background; /readyz reports 503 until they do.
func (s *Server) Start() error {
	started := time.Now()

	if err := s.infra.Start(); err != nil {
		return fmt.Errorf("infrastructure: %w", err)
	}

	if err := s.http.Start(s.infra.Lifecycle); err != nil {
		if serr := s.infra.Lifecycle.Shutdown(s.shutdownTimeout); serr != nil {
			s.logger.Error("teardown after failed start", "error", serr)
		}
		return err
	}

	go func() {
		s.infra.Lifecycle.WaitForStartup()
		s.logger.Info("service ready", "addr", s.Addr(), "elapsed", time.Since(started))
	}()

	return nil
}

// Run starts the server and blocks until ctx is done, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Shutdown(s.shutdownTimeout)
}

func (s *Server) Shutdown(timeout time.Duration) error {
	started := time.Now()
	s.logger.Info("shutdown requested", "timeout", timeout)

	if err := s.infra.Lifecycle.Shutdown(timeout); err != nil {
		s.logger.Error("shutdown incomplete", "error", err)
		return err
	}

	s.logger.Info("shutdown complete", "elapsed", time.Since(started))
	return nil
}

// Addr returns the address the HTTP server is bound to.
func (s *Server) Addr() string {
	return s.http.Addr()
}
