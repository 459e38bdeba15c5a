package server

import (
	"fmt"
	"net/http"
	"time"

	"FreeGameHub/internal/domain"
)

// handleFreeGames returns the last successfully committed snapshot, even if
// the most recent cycle failed.
func (s *Server) handleFreeGames(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	s.writeJSON(w, http.StatusOK, snapshotBody(snap, "", true))
}

// handleRefresh triggers one update cycle synchronously. Cycle errors are
// logged and recorded in stats, but the response still carries the current
// snapshot: readers never see a partial state.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("manual refresh requested", "remote", r.RemoteAddr)

	if err := s.updater.RunCycle(r.Context()); err != nil {
		s.logger.Warn("manual refresh cycle failed", "error", err)
	}

	snap := s.store.Snapshot()
	s.writeJSON(w, http.StatusOK, snapshotBody(snap, "refresh completed", true))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	report := s.stats.Snapshot(len(snap.Listings))
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"totalScans":        report.TotalScans,
		"alertsSent":        report.AlertsSent,
		"gamesFoundHistory": report.GamesFoundHistory,
		"lastScanDuration":  report.LastScanDuration,
		"errors":            report.Errors,
		"bootTime":          report.BootTime,
		"currentGames":      report.CurrentGames,
		"uptime":            report.Uptime,
		"uptimeFormatted":   report.UptimeFormatted,
	})
}

// handleTestTelegram pushes a synthetic single-listing batch through the real
// notifier so channel configuration can be verified end to end.
func (s *Server) handleTestTelegram(w http.ResponseWriter, r *http.Request) {
	worth := "$59.99"
	probe := domain.Listing{
		ID:           fmt.Sprintf("test-%d", time.Now().UnixNano()),
		Title:        "Telegram Test Game",
		URL:          "https://example.com",
		Platform:     domain.PlatformPC,
		PlatformName: "PC",
		Worth:        worth,
		Type:         domain.TypeGame,
		Category:     domain.CategoryPC,
		Genre:        domain.GenreOther,
		Source:       domain.SourceGamerPower,
	}

	sent, err := s.notifier.Alert(r.Context(), []domain.Listing{probe})
	if err != nil {
		s.logger.Warn("test alert failed", "error", err)
		s.writeError(w, http.StatusBadGateway, "test message delivery failed")
		return
	}

	message := "test message sent"
	if !sent {
		message = "notifier disabled, nothing sent"
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": sent,
		"message": message,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"uptime":    s.stats.Snapshot(0).Uptime,
	})
}

func snapshotBody(snap domain.Snapshot, message string, success bool) map[string]any {
	games := snap.Listings
	if games == nil {
		games = []domain.Listing{}
	}

	body := map[string]any{
		"success":     success,
		"games":       games,
		"lastUpdated": snap.LastUpdated,
		"count":       len(games),
	}
	if message != "" {
		body["message"] = message
	}
	return body
}
