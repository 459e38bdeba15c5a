// Package telegram delivers new-listing alerts through the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"FreeGameHub/internal/domain"
	"FreeGameHub/internal/ports"
)

const (
	defaultAPIBase = "https://api.telegram.org"

	// One message itemizes at most this many listings; the rest collapse
	// into a summary line (Telegram caps messages at 4096 chars).
	itemLimit = 10
)

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Notifier sends alert batches to one Telegram chat.
type Notifier struct {
	botToken    string
	chatID      string
	publicURL   string
	vipKeywords []string
	apiBase     string
	client      *http.Client
	logger      *slog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// New registers bot token and chat identifier. Empty credentials produce a
// disabled notifier whose Alert is a silent no-op.
func New(botToken, chatID, publicURL string, vipKeywords []string, logger *slog.Logger) *Notifier {
	return &Notifier{
		botToken:    botToken,
		chatID:      chatID,
		publicURL:   publicURL,
		vipKeywords: vipKeywords,
		apiBase:     defaultAPIBase,
		client:      &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
}

// Enabled reports whether both credentials are present.
func (n *Notifier) Enabled() bool {
	return n.botToken != "" && n.chatID != ""
}

// Alert posts one HTML message summarizing the batch. It returns (false, nil)
// when skipped (disabled notifier or empty batch) and (false, err) on
// delivery failure; the caller decides how failures count.
func (n *Notifier) Alert(ctx context.Context, listings []domain.Listing) (bool, error) {
	if !n.Enabled() || len(listings) == 0 {
		return false, nil
	}

	if err := n.send(ctx, n.buildMessage(listings)); err != nil {
		return false, err
	}

	if n.logger != nil {
		n.logger.Info("telegram alert sent", "listings", len(listings))
	}
	return true, nil
}

// buildMessage renders the alert. A batch containing any high-value title
// gets the sniper header; that affects only the rendering, never routing.
func (n *Notifier) buildMessage(listings []domain.Listing) string {
	var b strings.Builder

	if n.containsVIP(listings) {
		b.WriteString("🚨🚨 <b>AAA SNIPER ALERT!</b> 🚨🚨\n\n")
	} else {
		b.WriteString("✨ <b>New Free Games!</b>\n\n")
	}

	shown := listings
	if len(shown) > itemLimit {
		shown = shown[:itemLimit]
	}

	for _, l := range shown {
		icon := "🎮"
		switch {
		case n.isVIP(l.Title):
			icon = "💎"
		case l.Category == domain.CategoryAndroid:
			icon = "📱"
		}

		platform := l.PlatformName
		if platform == "" {
			platform = string(l.Platform)
		}

		fmt.Fprintf(&b, "%s <b>%s</b>\n   📦 %s\n   ➜ <a href=\"%s\">Claim Now</a>\n\n",
			icon, htmlEscaper.Replace(l.Title), htmlEscaper.Replace(platform), l.URL)
	}

	if len(listings) > itemLimit {
		fmt.Fprintf(&b, "<i>...and %d more games</i>\n", len(listings)-itemLimit)
	}

	fmt.Fprintf(&b, "\n👀 <a href=\"%s\">See all on FreeGameHub</a>", n.publicURL)
	return b.String()
}

func (n *Notifier) containsVIP(listings []domain.Listing) bool {
	for _, l := range listings {
		if n.isVIP(l.Title) {
			return true
		}
	}
	return false
}

func (n *Notifier) isVIP(title string) bool {
	lower := strings.ToLower(title)
	for _, keyword := range n.vipKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func (n *Notifier) send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)

	payload, err := json.Marshal(map[string]any{
		"chat_id":                  n.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}
