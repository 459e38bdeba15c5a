package domain

import "time"

// Platform identifies the store or ecosystem a listing belongs to.
type Platform string

const (
	PlatformSteam   Platform = "steam"
	PlatformEpic    Platform = "epic"
	PlatformGOG     Platform = "gog"
	PlatformAndroid Platform = "android"
	PlatformPC      Platform = "pc"
	PlatformOther   Platform = "other"
)

// Category splits listings into the two coarse buckets the frontend filters on.
type Category string

const (
	CategoryPC      Category = "pc"
	CategoryAndroid Category = "android"
)

// ListingType describes what kind of item is being given away.
type ListingType string

const (
	TypeGame     ListingType = "Game"
	TypeDLC      ListingType = "DLC"
	TypeApp      ListingType = "App"
	TypeIconPack ListingType = "Icon Pack"
)

// Genre is a best-effort heuristic tag, never authoritative.
type Genre string

const (
	GenreAction   Genre = "action"
	GenreRPG      Genre = "rpg"
	GenreIndie    Genre = "indie"
	GenreStrategy Genre = "strategy"
	GenrePuzzle   Genre = "puzzle"
	GenreRacing   Genre = "racing"
	GenreSports   Genre = "sports"
	GenreShooter  Genre = "shooter"
	GenreOther    Genre = "other"
)

// Source names the adapter that produced a listing.
type Source string

const (
	SourceGamerPower Source = "gamerpower"
	SourceEpic       Source = "epic"
	SourceReddit     Source = "reddit"
)

// Listing is one normalized free-game/app/DLC offer. Adapters construct it
// once; later stages only filter and select, never mutate fields.
//
// ID is namespaced by source ("gp-123", "epic-abc", "rd-xyz") and is the diff
// identity across snapshots. URL is the claim link and the cross-source dedup
// key. A nil EndDate means no known expiry; an empty Worth means the original
// price is unknown or non-monetary.
type Listing struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Image        string      `json:"image"`
	URL          string      `json:"url"`
	Platform     Platform    `json:"platform"`
	PlatformName string      `json:"platformName"`
	EndDate      *time.Time  `json:"endDate"`
	Worth        string      `json:"worth,omitempty"`
	Type         ListingType `json:"type"`
	Category     Category    `json:"category"`
	Genre        Genre       `json:"genre"`
	Source       Source      `json:"source"`
}

// Snapshot is the set of all currently-known listings plus the time of the
// last successful update. A nil LastUpdated means no cycle has completed yet.
type Snapshot struct {
	Listings    []Listing
	LastUpdated *time.Time
}
