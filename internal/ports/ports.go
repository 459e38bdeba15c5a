package ports

import (
	"context"
	"time"

	"FreeGameHub/internal/domain"
)

// ListingSource pulls current giveaways from one upstream provider.
type ListingSource interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.Listing, error)
}

// SnapshotStore owns the persisted listing set and its diff/prune lifecycle.
type SnapshotStore interface {
	Load() error
	DiffNew(candidate []domain.Listing) []domain.Listing
	Replace(candidate []domain.Listing) error
	PruneExpired(now time.Time) (int, error)
	Snapshot() domain.Snapshot
}

// Notifier pushes a batch of newly-detected listings to an alert channel.
// sent reports whether a message actually went out; it is false when the
// channel is disabled or the batch is empty.
type Notifier interface {
	Alert(ctx context.Context, listings []domain.Listing) (sent bool, err error)
}

// Scheduler controls when update cycles execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
