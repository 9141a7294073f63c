// Package server is the HTTP surface: the webhook ingest endpoint plus a
// small read-only API for operators.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hardikramesh/tradingbot1/internal/server/handler"
	"github.com/hardikramesh/tradingbot1/internal/server/middleware"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port   int
	APIKey string // if empty, /api authentication is disabled
}

// Handlers aggregates the HTTP handlers the server registers. Decisions may
// be nil when no journal is configured; its routes are then not registered.
type Handlers struct {
	Health    *handler.HealthHandler
	Webhook   *handler.WebhookHandler
	Status    *handler.StatusHandler
	Positions *handler.PositionHandler
	Decisions *handler.DecisionHandler
}

// Server is the HTTP API server for the trading bridge.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered on the ServeMux. The
// webhook endpoint authenticates with the body shared secret only; the /api
// read endpoints (except health) go through the API-key middleware.
func NewServer(cfg Config, handlers Handlers, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Alert ingest. Authenticated by the payload secret, not the API key,
	// because the signal source can only send a JSON body.
	mux.HandleFunc("POST /webhook", handlers.Webhook.Receive)

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.Check)

	auth := middleware.Auth(cfg.APIKey)

	mux.Handle("GET /api/status", auth(http.HandlerFunc(handlers.Status.GetStatus)))
	mux.Handle("GET /api/positions", auth(http.HandlerFunc(handlers.Positions.ListPositions)))
	mux.Handle("GET /api/positions/{symbol}", auth(http.HandlerFunc(handlers.Positions.GetPosition)))

	if handlers.Decisions != nil {
		mux.Handle("GET /api/decisions", auth(http.HandlerFunc(handlers.Decisions.ListDecisions)))
		mux.Handle("GET /api/orders", auth(http.HandlerFunc(handlers.Decisions.ListOrders)))
	}

	var h http.Handler = mux
	h = middleware.Logging(logger)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

// Handler exposes the composed handler chain for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
