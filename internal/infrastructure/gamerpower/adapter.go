// Package gamerpower adapts the GamerPower giveaway API into the Listing
// model. One Fetch covers both the pc and android catalogs.
package gamerpower

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"FreeGameHub/internal/domain"
	"FreeGameHub/internal/genre"
	"FreeGameHub/internal/ports"
)

const (
	defaultBaseURL   = "https://www.gamerpower.com/api/giveaways"
	placeholderImage = "https://via.placeholder.com/300x150?text=Free+Game"
	userAgent        = "FreeGameHub/2.0"
)

// end_date comes back as "2025-12-31 23:59:00" or the literal "N/A".
const endDateLayout = "2006-01-02 15:04:05"

// giveaway mirrors the upstream JSON shape.
type giveaway struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Image           string `json:"image"`
	OpenGiveawayURL string `json:"open_giveaway_url"`
	GiveawayURL     string `json:"giveaway_url"`
	Platforms       string `json:"platforms"`
	EndDate         string `json:"end_date"`
	Worth           string `json:"worth"`
	Type            string `json:"type"`
}

// Adapter queries one fixed GamerPower endpoint per platform.
type Adapter struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

var _ ports.ListingSource = (*Adapter)(nil)

// New wires an HTTP client; a nil client gets a bounded-timeout default.
func New(client *http.Client, baseURL string, logger *slog.Logger) *Adapter {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Adapter{client: client, baseURL: baseURL, logger: logger}
}

// Name identifies the adapter in registration order and log lines.
func (a *Adapter) Name() string {
	return string(domain.SourceGamerPower)
}

// Fetch pulls the pc and android giveaway catalogs. A failure of one platform
// query is logged and skipped so the other still contributes.
func (a *Adapter) Fetch(ctx context.Context) ([]domain.Listing, error) {
	var listings []domain.Listing

	for _, category := range []domain.Category{domain.CategoryPC, domain.CategoryAndroid} {
		items, err := a.fetchPlatform(ctx, category)
		if err != nil {
			a.warn("platform query failed", "category", category, "error", err)
			continue
		}
		listings = append(listings, items...)
	}

	return listings, nil
}

func (a *Adapter) fetchPlatform(ctx context.Context, category domain.Category) ([]domain.Listing, error) {
	url := fmt.Sprintf("%s?platform=%s", a.baseURL, category)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request giveaways: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gamerpower returned %s", resp.Status)
	}

	var giveaways []giveaway
	if err := json.NewDecoder(resp.Body).Decode(&giveaways); err != nil {
		return nil, fmt.Errorf("decode giveaways: %w", err)
	}

	listings := make([]domain.Listing, 0, len(giveaways))
	for _, g := range giveaways {
		listings = append(listings, mapGiveaway(g, category))
	}
	return listings, nil
}

func mapGiveaway(g giveaway, category domain.Category) domain.Listing {
	description := g.Description
	if description == "" {
		description = "Free game available"
	}

	image := g.Image
	if image == "" {
		image = placeholderImage
	}

	url := g.OpenGiveawayURL
	if url == "" {
		url = g.GiveawayURL
	}

	worth := g.Worth
	if worth == "N/A" {
		worth = ""
	}

	listingType := domain.ListingType(g.Type)
	if listingType == "" {
		listingType = domain.TypeGame
	}

	return domain.Listing{
		ID:           fmt.Sprintf("gp-%d", g.ID),
		Title:        g.Title,
		Description:  description,
		Image:        image,
		URL:          url,
		Platform:     detectPlatform(g.Platforms, category),
		PlatformName: platformName(g.Platforms, category),
		EndDate:      parseEndDate(g.EndDate),
		Worth:        worth,
		Type:         listingType,
		Category:     category,
		Genre:        genre.Detect(g.Title, g.Description),
		Source:       domain.SourceGamerPower,
	}
}

func detectPlatform(platforms string, category domain.Category) domain.Platform {
	if category == domain.CategoryAndroid {
		return domain.PlatformAndroid
	}

	lower := strings.ToLower(platforms)
	switch {
	case strings.Contains(lower, "steam"):
		return domain.PlatformSteam
	case strings.Contains(lower, "epic"):
		return domain.PlatformEpic
	case strings.Contains(lower, "gog"):
		return domain.PlatformGOG
	default:
		return domain.PlatformPC
	}
}

func platformName(platforms string, category domain.Category) string {
	if category == domain.CategoryAndroid {
		return "Play Store"
	}
	if platforms == "" {
		return "PC"
	}
	return platforms
}

func parseEndDate(value string) *time.Time {
	if value == "" || value == "N/A" {
		return nil
	}

	parsed, err := time.Parse(endDateLayout, value)
	if err != nil {
		return nil
	}
	return &parsed
}

func (a *Adapter) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
