package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"traderaven/internal/server/handler"
	"traderaven/internal/server/middleware"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port int
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health  *handler.HealthHandler
	Week    *handler.WeekHandler
	Values  *handler.ValuesHandler
	Rosters *handler.RostersHandler
	Trades  *handler.TradesHandler
}

// Server is the headless HTTP control API for the trade monitor.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
func NewServer(cfg Config, handlers Handlers, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check.
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// League week endpoints.
	mux.HandleFunc("GET /api/week", handlers.Week.GetWeek)
	mux.HandleFunc("POST /api/week/override", handlers.Week.OverrideWeek)

	// Valuation endpoints.
	mux.HandleFunc("POST /api/values/refresh", handlers.Values.RefreshValues)
	mux.HandleFunc("GET /api/values/source", handlers.Values.GetSource)
	mux.HandleFunc("GET /api/values/player", handlers.Values.GetPlayer)
	mux.HandleFunc("GET /api/values/compare", handlers.Values.ComparePlayers)

	// Roster endpoints.
	mux.HandleFunc("GET /api/rosters", handlers.Rosters.ListRosters)
	mux.HandleFunc("POST /api/rosters/refresh", handlers.Rosters.RefreshRosters)

	// Trade watcher endpoints.
	mux.HandleFunc("GET /api/trades/status", handlers.Trades.GetStatus)
	mux.HandleFunc("POST /api/trades/poll", handlers.Trades.TriggerPoll)

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
