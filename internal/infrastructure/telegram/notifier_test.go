package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FreeGameHub/internal/domain"
)

func batch(n int) []domain.Listing {
	listings := make([]domain.Listing, 0, n)
	for i := 0; i < n; i++ {
		listings = append(listings, domain.Listing{
			ID:           fmt.Sprintf("gp-%d", i),
			Title:        fmt.Sprintf("Game %d", i),
			URL:          fmt.Sprintf("https://x.com/%d", i),
			Platform:     domain.PlatformPC,
			PlatformName: "Steam",
			Category:     domain.CategoryPC,
			Type:         domain.TypeGame,
			Genre:        domain.GenreOther,
		})
	}
	return listings
}

func newTestNotifier(t *testing.T, status int) (*Notifier, *[]string) {
	t.Helper()

	var texts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		texts = append(texts, payload.Text)
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)

	n := New("token", "chat", "https://hub.example.com", []string{"gta", "elden"}, nil)
	n.apiBase = server.URL
	return n, &texts
}

func TestAlertSkipsEmptyBatch(t *testing.T) {
	t.Parallel()

	n, texts := newTestNotifier(t, http.StatusOK)

	sent, err := n.Alert(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Empty(t, *texts)
}

func TestAlertSkipsWhenDisabled(t *testing.T) {
	t.Parallel()

	n := New("", "", "https://hub.example.com", nil, nil)

	sent, err := n.Alert(context.Background(), batch(3))
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestAlertTruncatesAtTenItems(t *testing.T) {
	t.Parallel()

	n, texts := newTestNotifier(t, http.StatusOK)

	sent, err := n.Alert(context.Background(), batch(15))
	require.NoError(t, err)
	assert.True(t, sent)

	require.Len(t, *texts, 1)
	text := (*texts)[0]

	assert.Equal(t, 10, strings.Count(text, "Claim Now"))
	assert.Contains(t, text, "...and 5 more games")
	assert.Contains(t, text, "https://hub.example.com")
}

func TestAlertVIPHeader(t *testing.T) {
	t.Parallel()

	n, texts := newTestNotifier(t, http.StatusOK)

	listings := batch(2)
	listings[1].Title = "GTA VI Giveaway"

	sent, err := n.Alert(context.Background(), listings)
	require.NoError(t, err)
	assert.True(t, sent)

	require.Len(t, *texts, 1)
	text := (*texts)[0]
	assert.Contains(t, text, "AAA SNIPER ALERT")
	assert.Contains(t, text, "💎")
}

func TestAlertRegularHeader(t *testing.T) {
	t.Parallel()

	n, texts := newTestNotifier(t, http.StatusOK)

	sent, err := n.Alert(context.Background(), batch(2))
	require.NoError(t, err)
	assert.True(t, sent)

	require.Len(t, *texts, 1)
	assert.Contains(t, (*texts)[0], "New Free Games!")
}

func TestAlertEscapesHTMLInTitles(t *testing.T) {
	t.Parallel()

	n, texts := newTestNotifier(t, http.StatusOK)

	listings := batch(1)
	listings[0].Title = "Tower <Defense> & Friends"

	_, err := n.Alert(context.Background(), listings)
	require.NoError(t, err)

	require.Len(t, *texts, 1)
	assert.Contains(t, (*texts)[0], "Tower &lt;Defense&gt; &amp; Friends")
}

func TestAlertDeliveryFailure(t *testing.T) {
	t.Parallel()

	n, _ := newTestNotifier(t, http.StatusBadGateway)

	sent, err := n.Alert(context.Background(), batch(1))
	require.Error(t, err)
	assert.False(t, sent)
}
