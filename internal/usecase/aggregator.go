package usecase

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"FreeGameHub/internal/domain"
	"FreeGameHub/internal/ports"
)

// Aggregator fans out over all registered sources and merges their output
// into one deduplicated listing set.
type Aggregator struct {
	sources []ports.ListingSource
	logger  *slog.Logger
}

// NewAggregator keeps sources in registration order; that order decides
// tie-breaks and the final listing order.
func NewAggregator(sources []ports.ListingSource, logger *slog.Logger) *Aggregator {
	return &Aggregator{sources: sources, logger: logger}
}

// Aggregate fetches from every source concurrently and settles all of them: a
// failed source is logged and contributes nothing, the rest are still used.
func (a *Aggregator) Aggregate(ctx context.Context) []domain.Listing {
	results := make([][]domain.Listing, len(a.sources))

	var wg sync.WaitGroup
	for i, src := range a.sources {
		wg.Add(1)
		go func(i int, src ports.ListingSource) {
			defer wg.Done()

			listings, err := src.Fetch(ctx)
			if err != nil {
				a.warn("source fetch failed", "source", src.Name(), "error", err)
				return
			}
			a.debug("source fetched", "source", src.Name(), "count", len(listings))
			results[i] = listings
		}(i, src)
	}
	wg.Wait()

	var merged []domain.Listing
	for _, listings := range results {
		merged = append(merged, listings...)
	}

	unified := dedupe(merged)
	a.debug("aggregate done", "fetched", len(merged), "unified", len(unified))
	return unified
}

// dedupe collapses listings sharing a claim URL (case-insensitive, trimmed)
// to the one with the higher completeness score; ties keep the first-seen
// listing. Listings without a URL are always kept. Output order is stable
// first-seen order.
func dedupe(listings []domain.Listing) []domain.Listing {
	out := make([]domain.Listing, 0, len(listings))
	index := make(map[string]int, len(listings))

	for _, l := range listings {
		key := strings.ToLower(strings.TrimSpace(l.URL))
		if key == "" {
			out = append(out, l)
			continue
		}

		if at, seen := index[key]; seen {
			if completenessScore(l) > completenessScore(out[at]) {
				out[at] = l
			}
			continue
		}

		index[key] = len(out)
		out = append(out, l)
	}

	return out
}

// completenessScore measures how much usable detail a listing carries; used
// only to pick a winner among same-URL duplicates.
func completenessScore(l domain.Listing) int {
	score := 0
	if l.Image != "" && !strings.Contains(l.Image, "placeholder") {
		score += 10
	}
	if len(l.Description) > 50 {
		score += 5
	}
	if l.EndDate != nil {
		score += 3
	}
	if l.Worth != "" {
		score += 2
	}
	return score
}

func (a *Aggregator) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}

func (a *Aggregator) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
