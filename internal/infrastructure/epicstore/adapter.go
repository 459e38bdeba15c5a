// Package epicstore adapts the Epic Games Store free-promotions feed. Only
// elements with a promotional window covering the current time are kept, so
// announced-but-not-yet-free titles never leak into the listing set.
package epicstore

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
	defaultBaseURL   = "https://store-site-backend-static.ak.epicgames.com/freeGamesPromotions"
	storePageBase    = "https://store.epicgames.com/en-US/p/"
	placeholderImage = "https://via.placeholder.com/300x150?text=Epic+Games"
	userAgent        = "FreeGameHub/2.0"
)

// The upstream nests promotions two levels deep; these DTOs mirror only the
// fields this adapter reads.
type promotionsResponse struct {
	Data struct {
		Catalog struct {
			SearchStore struct {
				Elements []element `json:"elements"`
			} `json:"searchStore"`
		} `json:"Catalog"`
	} `json:"data"`
}

type element struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URLSlug     string `json:"urlSlug"`
	KeyImages   []struct {
		Type string `json:"type"`
		URL  string `json:"url"`
	} `json:"keyImages"`
	CatalogNs struct {
		Mappings []struct {
			PageSlug string `json:"pageSlug"`
		} `json:"mappings"`
	} `json:"catalogNs"`
	Categories []struct {
		Path string `json:"path"`
	} `json:"categories"`
	Price struct {
		TotalPrice struct {
			FmtPrice struct {
				OriginalPrice string `json:"originalPrice"`
			} `json:"fmtPrice"`
		} `json:"totalPrice"`
	} `json:"price"`
	Promotions struct {
		PromotionalOffers []struct {
			PromotionalOffers []promoWindow `json:"promotionalOffers"`
		} `json:"promotionalOffers"`
	} `json:"promotions"`
}

type promoWindow struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Category paths on Epic map to the coarse genre tags directly; keyword
// detection over text is only the fallback.
var genreByPath = []struct {
	fragment string
	genre    domain.Genre
}{
	{"SHOOTER", domain.GenreShooter},
	{"ACTION", domain.GenreAction},
	{"ADVENTURE", domain.GenreRPG},
	{"RPG", domain.GenreRPG},
	{"STRATEGY", domain.GenreStrategy},
	{"PUZZLE", domain.GenrePuzzle},
	{"RACING", domain.GenreRacing},
	{"SPORTS", domain.GenreSports},
	{"INDIE", domain.GenreIndie},
}

// Adapter queries the free-promotions endpoint.
type Adapter struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
	now     func() time.Time
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
	return &Adapter{client: client, baseURL: baseURL, logger: logger, now: time.Now}
}

// Name identifies the adapter in registration order and log lines.
func (a *Adapter) Name() string {
	return string(domain.SourceEpic)
}

// Fetch returns the currently-free Epic promotions.
func (a *Adapter) Fetch(ctx context.Context) ([]domain.Listing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request promotions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("epic returned %s", resp.Status)
	}

	var payload promotionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode promotions: %w", err)
	}

	now := a.now()
	elements := payload.Data.Catalog.SearchStore.Elements
	var listings []domain.Listing
	for _, el := range elements {
		window, ok := activeWindow(el, now)
		if !ok {
			continue
		}
		listings = append(listings, mapElement(el, window))
	}

	if a.logger != nil {
		a.logger.Debug("epic promotions filtered", "elements", len(elements), "free_now", len(listings))
	}
	return listings, nil
}

// activeWindow finds a promotional window with start <= now <= end.
func activeWindow(el element, now time.Time) (promoWindow, bool) {
	for _, offer := range el.Promotions.PromotionalOffers {
		for _, window := range offer.PromotionalOffers {
			start, err := time.Parse(time.RFC3339, window.StartDate)
			if err != nil {
				continue
			}
			end, err := time.Parse(time.RFC3339, window.EndDate)
			if err != nil {
				continue
			}
			if !start.After(now) && !end.Before(now) {
				return window, true
			}
		}
	}
	return promoWindow{}, false
}

func mapElement(el element, window promoWindow) domain.Listing {
	description := el.Description
	if description == "" {
		description = "Free game on the Epic Games Store"
	}

	var endDate *time.Time
	if parsed, err := time.Parse(time.RFC3339, window.EndDate); err == nil {
		endDate = &parsed
	}

	return domain.Listing{
		ID:           "epic-" + el.ID,
		Title:        el.Title,
		Description:  description,
		Image:        pickImage(el),
		URL:          storePageBase + pageSlug(el),
		Platform:     domain.PlatformEpic,
		PlatformName: "Epic Games",
		EndDate:      endDate,
		Worth:        el.Price.TotalPrice.FmtPrice.OriginalPrice,
		Type:         domain.TypeGame,
		Category:     domain.CategoryPC,
		Genre:        detectGenre(el),
		Source:       domain.SourceEpic,
	}
}

func pageSlug(el element) string {
	if len(el.CatalogNs.Mappings) > 0 && el.CatalogNs.Mappings[0].PageSlug != "" {
		return el.CatalogNs.Mappings[0].PageSlug
	}
	return el.URLSlug
}

func pickImage(el element) string {
	for _, img := range el.KeyImages {
		if img.Type == "OfferImageWide" {
			return img.URL
		}
	}
	if len(el.KeyImages) > 0 {
		return el.KeyImages[0].URL
	}
	return placeholderImage
}

func detectGenre(el element) domain.Genre {
	for _, cat := range el.Categories {
		path := strings.ToUpper(cat.Path)
		for _, mapping := range genreByPath {
			if strings.Contains(path, mapping.fragment) {
				return mapping.genre
			}
		}
	}
	return genre.Detect(el.Title, el.Description)
}
