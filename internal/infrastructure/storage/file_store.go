// Package storage persists the listing snapshot as one whole-file JSON
// document. A crash mid-write may corrupt the file; Load recovers to an empty
// snapshot instead of propagating the parse failure.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"

	"FreeGameHub/internal/domain"
	"FreeGameHub/internal/ports"
)

// FileStore owns the in-memory snapshot and its durable JSON copy. Readers
// always see the last committed snapshot; an in-progress update cycle never
// blocks them.
type FileStore struct {
	path   string
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	snapshot domain.Snapshot
}

var _ ports.SnapshotStore = (*FileStore)(nil)

// cacheFile is the on-disk layout consumed by the frontend and older deploys.
type cacheFile struct {
	LastUpdated *time.Time       `json:"lastUpdated"`
	Games       []domain.Listing `json:"games"`
}

// NewFileStore wires the cache file path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
}

// Load reads the cache file at process start. A missing or corrupt file is
// never fatal: the store initializes empty and the next cycle repopulates it.
func (s *FileStore) Load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.debug("no cache file yet", "path", s.path)
			return nil
		}
		s.warn("cannot read cache file, starting empty", "path", s.path, "error", err)
		return nil
	}

	var file cacheFile
	if err := json.Unmarshal(raw, &file); err != nil {
		s.warn("corrupt cache file, starting empty", "path", s.path, "error", err)
		return nil
	}

	s.mu.Lock()
	s.snapshot = domain.Snapshot{Listings: file.Games, LastUpdated: file.LastUpdated}
	s.mu.Unlock()

	s.debug("cache loaded", "listings", len(file.Games))
	return nil
}

// DiffNew returns the subset of candidate whose ID is absent from the current
// snapshot. An empty snapshot yields an empty result so the very first
// population never triggers an alert storm.
func (s *FileStore) DiffNew(candidate []domain.Listing) []domain.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.snapshot.Listings) == 0 {
		return nil
	}

	known := make(map[string]struct{}, len(s.snapshot.Listings))
	for _, l := range s.snapshot.Listings {
		known[l.ID] = struct{}{}
	}

	var fresh []domain.Listing
	for _, l := range candidate {
		if _, ok := known[l.ID]; !ok {
			fresh = append(fresh, l)
		}
	}
	return fresh
}

// Replace swaps the snapshot for candidate wholesale, stamps LastUpdated, and
// persists. The in-memory state is updated even when the write fails;
// durability then waits for the next successful write.
func (s *FileStore) Replace(candidate []domain.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	listings := make([]domain.Listing, len(candidate))
	copy(listings, candidate)

	now := s.now()
	s.snapshot = domain.Snapshot{Listings: listings, LastUpdated: &now}

	return s.persistLocked()
}

// PruneExpired removes listings whose EndDate is strictly in the past and
// persists only when something was removed. Listings without an expiry are
// never pruned.
func (s *FileStore) PruneExpired(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.snapshot.Listings[:0]
	for _, l := range s.snapshot.Listings {
		if l.EndDate != nil && l.EndDate.Before(now) {
			continue
		}
		kept = append(kept, l)
	}

	removed := len(s.snapshot.Listings) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	s.snapshot.Listings = kept
	if err := s.persistLocked(); err != nil {
		return removed, err
	}
	return removed, nil
}

// Snapshot returns a copy for readers; callers may not mutate the store
// through it.
func (s *FileStore) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	listings := make([]domain.Listing, len(s.snapshot.Listings))
	copy(listings, s.snapshot.Listings)
	return domain.Snapshot{Listings: listings, LastUpdated: s.snapshot.LastUpdated}
}

func (s *FileStore) persistLocked() error {
	file := cacheFile{LastUpdated: s.snapshot.LastUpdated, Games: s.snapshot.Listings}
	if file.Games == nil {
		file.Games = []domain.Listing{}
	}

	raw, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write cache %s: %w", s.path, err)
	}

	return nil
}

func (s *FileStore) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *FileStore) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
