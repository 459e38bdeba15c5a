package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"FreeGameHub/internal/ports"
	"FreeGameHub/internal/stats"
)

// UpdaterDeps wires all driven adapters into the update orchestrator.
type UpdaterDeps struct {
	Aggregator *Aggregator
	Store      ports.SnapshotStore
	Notifier   ports.Notifier
	Stats      *stats.Stats
	Logger     *slog.Logger
}

// Updater runs the aggregate → diff → notify → persist → prune cycle. A
// mutex guarantees at most one concurrent write cycle: a manual refresh
// arriving mid-cycle waits for the running one, then executes its own.
type Updater struct {
	mu sync.Mutex

	aggregator *Aggregator
	store      ports.SnapshotStore
	notifier   ports.Notifier
	stats      *stats.Stats
	logger     *slog.Logger
	now        func() time.Time
}

// NewUpdater constructs the orchestration component.
func NewUpdater(deps UpdaterDeps) *Updater {
	return &Updater{
		aggregator: deps.Aggregator,
		store:      deps.Store,
		notifier:   deps.Notifier,
		stats:      deps.Stats,
		logger:     deps.Logger,
		now:        time.Now,
	}
}

// RunCycle executes one full update. Notification failures never abort the
// cycle; a persistence failure is recorded and returned, but the in-memory
// snapshot has already advanced so the read API stays current. When every
// source comes back empty the previous snapshot is left untouched.
func (u *Updater) RunCycle(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	start := u.now()
	u.stats.IncrementScans()
	u.info("update cycle started")

	listings := u.aggregator.Aggregate(ctx)
	if len(listings) == 0 {
		u.warn("no listings from any source, keeping previous snapshot")
		u.stats.SetScanDuration(u.now().Sub(start))
		return nil
	}

	fresh := u.store.DiffNew(listings)
	if len(fresh) > 0 {
		u.info("new listings detected", "count", len(fresh))

		sent, err := u.notifier.Alert(ctx, fresh)
		if err != nil {
			u.warn("alert delivery failed", "error", err)
			u.stats.AddError(fmt.Errorf("alert delivery: %w", err))
		}
		if sent {
			u.stats.IncrementAlerts()
		}
	}

	var cycleErr error
	if err := u.store.Replace(listings); err != nil {
		u.warn("snapshot persistence failed", "error", err)
		u.stats.AddError(fmt.Errorf("persist snapshot: %w", err))
		cycleErr = fmt.Errorf("persist snapshot: %w", err)
	}

	removed, err := u.store.PruneExpired(u.now())
	if err != nil {
		u.warn("prune persistence failed", "error", err)
		u.stats.AddError(fmt.Errorf("prune expired: %w", err))
	}
	if removed > 0 {
		u.info("expired listings pruned", "count", removed)
	}

	u.stats.SetGamesFound(len(listings))
	u.stats.SetScanDuration(u.now().Sub(start))
	u.info("update cycle done", "total", len(listings), "new", len(fresh), "duration", u.now().Sub(start))

	return cycleErr
}

func (u *Updater) info(msg string, args ...any) {
	if u.logger != nil {
		u.logger.Info(msg, args...)
	}
}

func (u *Updater) warn(msg string, args ...any) {
	if u.logger != nil {
		u.logger.Warn(msg, args...)
	}
}
