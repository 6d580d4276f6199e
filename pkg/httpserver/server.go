package httpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arbitragex/arbfeed/internal/store"
	"github.com/arbitragex/arbfeed/internal/view"
	"github.com/arbitragex/arbfeed/pkg/healthprobe"
)

// FeedStatus reports whether the upstream feed connection is up.
type FeedStatus interface {
	Connected() bool
}

// Server provides HTTP endpoints for the opportunity view, metrics and
// health checks.
type Server struct {
	server        *http.Server
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	listener      net.Listener
	wg            sync.WaitGroup
}

// Config holds server configuration.
type Config struct {
	Port          string
	Logger        *zap.Logger
	HealthChecker *healthprobe.HealthChecker
	Store         *store.Store
	Status        FeedStatus
	// Defaults is the filter selection applied when a request does not
	// override a group.
	Defaults view.Selection
}

// New creates a new HTTP server.
func New(cfg *Config) *Server {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// Routes
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Get("/health", cfg.HealthChecker.Health())
	r.Get("/ready", cfg.HealthChecker.Ready())

	if cfg.Store != nil {
		oppHandler := NewOpportunitiesHandler(cfg.Store, cfg.Status, cfg.Defaults, cfg.Logger)
		r.Get("/api/opportunities", oppHandler.HandleOpportunities)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{
		server:        server,
		logger:        cfg.Logger,
		healthChecker: cfg.HealthChecker,
	}
}

// Start binds the listener and begins serving in the background. It
// returns once the listener is accepting, so callers can order startup
// on it instead of sleeping.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.server.Addr, err)
	}
	s.listener = ln

	s.logger.Info("http-server-listening", zap.String("addr", ln.Addr().String()))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.server.Serve(ln)
		if err != nil && err != http.ErrServerClosed {
			s.logger.Error("http-server-error", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the bound listener address. Before Start it returns the
// configured address.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.server.Addr
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully shuts down the HTTP server and waits for the
// serve goroutine to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("http-server-shutting-down")

	err := s.server.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.wg.Wait()

	s.logger.Info("http-server-shutdown-complete")
	return nil
}
