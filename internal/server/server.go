// Package server exposes the read API consumed by the frontend. It only ever
// serves the last committed snapshot; an in-progress update cycle is
// invisible to readers.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	"FreeGameHub/internal/ports"
	"FreeGameHub/internal/stats"
	"FreeGameHub/internal/usecase"
)

// Config holds listener settings.
type Config struct {
	Port int
}

// Server wires the HTTP layer to the core components.
type Server struct {
	httpServer *http.Server
	updater    *usecase.Updater
	store      ports.SnapshotStore
	notifier   ports.Notifier
	stats      *stats.Stats
	logger     *slog.Logger
}

// New builds the router with rate limiting and CORS applied to every route.
func New(cfg Config, updater *usecase.Updater, store ports.SnapshotStore, notifier ports.Notifier, st *stats.Stats, logger *slog.Logger) *Server {
	s := &Server{
		updater:  updater,
		store:    store,
		notifier: notifier,
		stats:    st,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/free-games", s.handleFreeGames)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("POST /api/test-telegram", s.handleTestTelegram)
	mux.HandleFunc("GET /api/health", s.handleHealth)

	handler := cors.Default().Handler(newRateLimiter().middleware(mux))

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler exposes the full middleware chain for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	s.logger.Info("http server listening", "addr", s.httpServer.Addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("encode response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"success": false,
		"error":   message,
	})
}
