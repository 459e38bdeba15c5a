// Package forum adapts the r/googleplaydeals feed into the Listing model.
// The feed is a sale board, not a structured catalog: free-ness, expiry and
// price all have to be teased out of post titles with heuristics, and any
// extraction that fails degrades to "unknown" rather than dropping the post.
package forum

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"FreeGameHub/internal/domain"
	"FreeGameHub/internal/genre"
	"FreeGameHub/internal/ports"
)

const (
	defaultBaseURL   = "https://www.reddit.com/r/googleplaydeals/new.json"
	placeholderImage = "https://upload.wikimedia.org/wikipedia/commons/d/d7/Android_robot.svg"
	userAgent        = "FreeGameHub/2.0"
	postLimit        = 25
	descriptionMax   = 150
)

var (
	bracketTags   = regexp.MustCompile(`\[.*?\]`)
	parenTags     = regexp.MustCompile(`\(.*?\)`)
	untilPattern  = regexp.MustCompile(`(?i)until\s+(\d{1,2})[/.](\d{1,2})`)
	endsPattern   = regexp.MustCompile(`(?i)ends?\s+(\d{1,2})\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*`)
	pricePattern  = regexp.MustCompile(`\$?(\d+\.?\d*)`)
	freeMarkers   = []string{"free", "100%", "gratis"}
	dealTags      = []string{"[app", "[icon pack", "[game"}
	monthByAbbrev = map[string]time.Month{
		"jan": time.January, "feb": time.February, "mar": time.March,
		"apr": time.April, "may": time.May, "jun": time.June,
		"jul": time.July, "aug": time.August, "sep": time.September,
		"oct": time.October, "nov": time.November, "dec": time.December,
	}
)

// listingResponse mirrors the subreddit JSON feed.
type listingResponse struct {
	Data struct {
		Children []struct {
			Data post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type post struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	Thumbnail    string `json:"thumbnail"`
	Selftext     string `json:"selftext"`
	SelftextHTML string `json:"selftext_html"`
	Preview      struct {
		Images []struct {
			Source struct {
				URL string `json:"url"`
			} `json:"source"`
		} `json:"images"`
	} `json:"preview"`
}

// Adapter scans the newest deal posts.
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
	return string(domain.SourceReddit)
}

// Fetch returns posts that advertise a free app, game or icon pack.
func (a *Adapter) Fetch(ctx context.Context) ([]domain.Listing, error) {
	url := fmt.Sprintf("%s?limit=%d", a.baseURL, postLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit returned %s", resp.Status)
	}

	var payload listingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	var listings []domain.Listing
	for _, child := range payload.Data.Children {
		if !isDeal(child.Data.Title) {
			continue
		}
		listings = append(listings, a.mapPost(child.Data))
	}

	if a.logger != nil {
		a.logger.Debug("forum posts filtered", "posts", len(payload.Data.Children), "deals", len(listings))
	}
	return listings, nil
}

// isDeal keeps posts tagged as an app/game/icon pack that also carry a
// free-ness marker.
func isDeal(title string) bool {
	lower := strings.ToLower(title)

	tagged := false
	for _, tag := range dealTags {
		if strings.Contains(lower, tag) {
			tagged = true
			break
		}
	}
	if !tagged {
		return false
	}

	for _, marker := range freeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func (a *Adapter) mapPost(p post) domain.Listing {
	title := cleanTitle(p.Title)
	description := extractDescription(p)

	return domain.Listing{
		ID:           "rd-" + p.ID,
		Title:        title,
		Description:  description,
		Image:        pickImage(p),
		URL:          p.URL,
		Platform:     domain.PlatformAndroid,
		PlatformName: "Play Store",
		EndDate:      extractEndDate(p.Title, a.now()),
		Worth:        extractPrice(p.Title),
		Type:         detectType(p.Title),
		Category:     domain.CategoryAndroid,
		Genre:        genre.Detect(title, description),
		Source:       domain.SourceReddit,
	}
}

// cleanTitle strips the [App]/(price) style tags posters prepend.
func cleanTitle(title string) string {
	title = bracketTags.ReplaceAllString(title, "")
	title = parenTags.ReplaceAllString(title, "")
	return strings.TrimSpace(title)
}

func detectType(title string) domain.ListingType {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "[app"):
		return domain.TypeApp
	case strings.Contains(lower, "[icon pack"):
		return domain.TypeIconPack
	default:
		return domain.TypeGame
	}
}

func pickImage(p post) string {
	if strings.HasPrefix(p.Thumbnail, "http") {
		return p.Thumbnail
	}
	if len(p.Preview.Images) > 0 && p.Preview.Images[0].Source.URL != "" {
		return strings.ReplaceAll(p.Preview.Images[0].Source.URL, "&amp;", "&")
	}
	return placeholderImage
}

// extractDescription prefers the rendered selftext HTML, stripped to plain
// text, over the raw markdown body.
func extractDescription(p post) string {
	text := ""
	if p.SelftextHTML != "" {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.SelftextHTML)); err == nil {
			text = strings.TrimSpace(doc.Text())
		}
	}
	if text == "" {
		text = strings.TrimSpace(p.Selftext)
	}
	if len(text) < 10 {
		return "Google Play promotion"
	}
	if len(text) > descriptionMax {
		return text[:descriptionMax] + "..."
	}
	return text
}

// extractEndDate tries "until 01/31" and "ends 31 Jan" patterns against the
// raw post title. The year is assumed to be the current one; a window that
// already passed rolls into next year (boards post "until 01/02" in late
// December).
func extractEndDate(title string, now time.Time) *time.Time {
	if m := untilPattern.FindStringSubmatch(title); m != nil {
		month := atoi(m[1])
		day := atoi(m[2])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			date := time.Date(now.Year(), time.Month(month), day, 23, 59, 59, 0, time.UTC)
			if date.Before(now.AddDate(0, -6, 0)) {
				date = date.AddDate(1, 0, 0)
			}
			return &date
		}
	}

	if m := endsPattern.FindStringSubmatch(title); m != nil {
		day := atoi(m[1])
		month, ok := monthByAbbrev[strings.ToLower(m[2])]
		if ok && day >= 1 && day <= 31 {
			date := time.Date(now.Year(), month, day, 23, 59, 59, 0, time.UTC)
			if date.Before(now.AddDate(0, -6, 0)) {
				date = date.AddDate(1, 0, 0)
			}
			return &date
		}
	}

	return nil
}

// extractPrice pulls the original price from titles like "Game ($4.99 -> Free)".
// Boards always list paid-gone-free items, so the fallback is "Paid" rather
// than unknown.
func extractPrice(title string) string {
	if m := pricePattern.FindStringSubmatch(title); m != nil {
		return "$" + m[1]
	}
	return "Paid"
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
