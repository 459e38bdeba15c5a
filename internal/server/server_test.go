package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FreeGameHub/internal/domain"
	"FreeGameHub/internal/infrastructure/storage"
	"FreeGameHub/internal/ports"
	"FreeGameHub/internal/stats"
	"FreeGameHub/internal/usecase"
)

type fakeSource struct {
	listings []domain.Listing
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(ctx context.Context) ([]domain.Listing, error) {
	return f.listings, nil
}

type fakeNotifier struct {
	batches [][]domain.Listing
	sent    bool
}

func (f *fakeNotifier) Alert(ctx context.Context, listings []domain.Listing) (bool, error) {
	f.batches = append(f.batches, listings)
	return f.sent, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sample(id string) domain.Listing {
	return domain.Listing{
		ID:       id,
		Title:    id,
		URL:      "https://x.com/" + id,
		Platform: domain.PlatformPC,
		Category: domain.CategoryPC,
		Type:     domain.TypeGame,
		Genre:    domain.GenreOther,
	}
}

func newTestServer(t *testing.T, source *fakeSource, notifier ports.Notifier) (*Server, *storage.FileStore) {
	t.Helper()

	store := storage.NewFileStore(filepath.Join(t.TempDir(), "games-cache.json"), nil)
	require.NoError(t, store.Load())

	st := stats.New()
	updater := usecase.NewUpdater(usecase.UpdaterDeps{
		Aggregator: usecase.NewAggregator([]ports.ListingSource{source}, nil),
		Store:      store,
		Notifier:   notifier,
		Stats:      st,
	})

	srv := New(Config{Port: 0}, updater, store, notifier, st, discardLogger())
	return srv, store
}

func TestFreeGamesEmptySnapshot(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, &fakeSource{}, &fakeNotifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/free-games", nil)
	req.RemoteAddr = "192.0.2.10:1234"
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success     bool             `json:"success"`
		Games       []domain.Listing `json:"games"`
		LastUpdated *string          `json:"lastUpdated"`
		Count       int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.True(t, body.Success)
	assert.NotNil(t, body.Games)
	assert.Empty(t, body.Games)
	assert.Nil(t, body.LastUpdated)
	assert.Zero(t, body.Count)
}

func TestRefreshRunsCycleAndReturnsSnapshot(t *testing.T) {
	t.Parallel()

	source := &fakeSource{listings: []domain.Listing{sample("gp-1"), sample("gp-2")}}
	srv, store := newTestServer(t, source, &fakeNotifier{})

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	req.RemoteAddr = "192.0.2.11:1234"
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool             `json:"success"`
		Games   []domain.Listing `json:"games"`
		Count   int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.True(t, body.Success)
	assert.Equal(t, 2, body.Count)
	assert.Len(t, store.Snapshot().Listings, 2)
}

func TestRefreshRequiresPost(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, &fakeSource{}, &fakeNotifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/refresh", nil)
	req.RemoteAddr = "192.0.2.12:1234"
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	t.Parallel()

	source := &fakeSource{listings: []domain.Listing{sample("gp-1")}}
	srv, _ := newTestServer(t, source, &fakeNotifier{})

	refresh := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	refresh.RemoteAddr = "192.0.2.13:1234"
	srv.Handler().ServeHTTP(httptest.NewRecorder(), refresh)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.RemoteAddr = "192.0.2.13:1234"
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success      bool `json:"success"`
		TotalScans   int  `json:"totalScans"`
		CurrentGames int  `json:"currentGames"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.True(t, body.Success)
	assert.Equal(t, 1, body.TotalScans)
	assert.Equal(t, 1, body.CurrentGames)
}

func TestTestTelegramSendsSyntheticBatch(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{sent: true}
	srv, _ := newTestServer(t, &fakeSource{}, notifier)

	req := httptest.NewRequest(http.MethodPost, "/api/test-telegram", nil)
	req.RemoteAddr = "192.0.2.14:1234"
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, notifier.batches, 1)
	require.Len(t, notifier.batches[0], 1)
	assert.Contains(t, notifier.batches[0][0].ID, "test-")

	var body struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
}

func TestTestTelegramDisabledNotifier(t *testing.T) {
	t.Parallel()

	notifier := &fakeNotifier{sent: false}
	srv, _ := newTestServer(t, &fakeSource{}, notifier)

	req := httptest.NewRequest(http.MethodPost, "/api/test-telegram", nil)
	req.RemoteAddr = "192.0.2.15:1234"
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Contains(t, body.Message, "disabled")
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, &fakeSource{}, &fakeNotifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.RemoteAddr = "192.0.2.16:1234"
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool   `json:"success"`
		Status  string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "ok", body.Status)
}

func TestRateLimitKicksIn(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, &fakeSource{}, &fakeNotifier{})

	limited := false
	for i := 0; i < burstSize+5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.RemoteAddr = "192.0.2.99:1234"
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited, "burst beyond the bucket size must be rejected")
}
