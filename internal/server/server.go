// Package server exposes reconciliation over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bank-ledger-reconciler/internal/matcher"
	"bank-ledger-reconciler/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds HTTP server configuration.
type Config struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// MaxBodyBytes limits request bodies
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// DefaultConfig returns the defaults for the HTTP server.
func DefaultConfig() Config {
	return Config{
		Port:         8080,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		MaxBodyBytes: 10 << 20,
	}
}

// Server is the reconciliation HTTP API.
type Server struct {
	config     Config
	matching   *matcher.MatchingConfig
	router     chi.Router
	httpServer *http.Server
	metrics    *Metrics
	logger     logger.Logger
}

// NewServer creates a server that reconciles with the given matching
// configuration. A nil matching config uses the defaults.
func NewServer(cfg Config, matching *matcher.MatchingConfig, log logger.Logger) (*Server, error) {
	if matching == nil {
		matching = matcher.DefaultMatchingConfig()
	}
	if err := matching.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matching configuration: %w", err)
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}

	s := &Server{
		config:   cfg,
		matching: matching,
		router:   chi.NewRouter(),
		metrics:  NewMetrics(),
		logger:   log.WithComponent("server"),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))

	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/reconciliations", s.handleReconcile)
		r.Post("/ledger-metrics", s.handleLedgerMetrics)
		r.Post("/explanations", s.handleExplain)
	})
}

// requestLogger logs every request once it has been served.
func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.WithFields(logger.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
			}).Info("Request served")
		})
	}
}

// Start serves HTTP until Shutdown is called. It returns nil right away when
// Shutdown already ran.
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting reconciliation API server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down reconciliation API server")
	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router.
func (s *Server) Router() chi.Router {
	return s.router
}

// Metrics returns the run metrics of this server.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}
