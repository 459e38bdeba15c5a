// Package stats tracks runtime counters for the update pipeline. Counters are
// monotonically updated in memory and never persisted across restarts.
package stats

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const maxErrors = 10

// ErrorEntry is one recorded cycle error.
type ErrorEntry struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats owns its counters; callers mutate it only through methods.
type Stats struct {
	mu               sync.Mutex
	bootTime         time.Time
	totalScans       int
	alertsSent       int
	gamesFound       int
	lastScanDuration time.Duration
	errors           []ErrorEntry
}

// Report is the JSON shape served by the stats endpoint.
type Report struct {
	TotalScans        int          `json:"totalScans"`
	AlertsSent        int          `json:"alertsSent"`
	GamesFoundHistory int          `json:"gamesFoundHistory"`
	LastScanDuration  int64        `json:"lastScanDuration"`
	Errors            []ErrorEntry `json:"errors"`
	BootTime          time.Time    `json:"bootTime"`
	CurrentGames      int          `json:"currentGames"`
	Uptime            float64      `json:"uptime"`
	UptimeFormatted   string       `json:"uptimeFormatted"`
}

// New starts the uptime clock at construction time.
func New() *Stats {
	return &Stats{bootTime: time.Now()}
}

// IncrementScans counts one started update cycle.
func (s *Stats) IncrementScans() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalScans++
}

// IncrementAlerts counts one delivered notification.
func (s *Stats) IncrementAlerts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alertsSent++
}

// SetGamesFound records the size of the last unified listing set.
func (s *Stats) SetGamesFound(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gamesFound = count
}

// SetScanDuration records the wall-clock time of the last cycle.
func (s *Stats) SetScanDuration(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastScanDuration = d
}

// AddError prepends err to the bounded error log, keeping the most recent
// entries only.
func (s *Stats) AddError(err error) {
	if err == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry := ErrorEntry{Message: err.Error(), Timestamp: time.Now()}
	s.errors = append([]ErrorEntry{entry}, s.errors...)
	if len(s.errors) > maxErrors {
		s.errors = s.errors[:maxErrors]
	}
}

// Snapshot builds a Report; currentGames is supplied by the caller because the
// listing set belongs to the snapshot store.
func (s *Stats) Snapshot(currentGames int) Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	uptime := time.Since(s.bootTime)
	errs := make([]ErrorEntry, len(s.errors))
	copy(errs, s.errors)

	return Report{
		TotalScans:        s.totalScans,
		AlertsSent:        s.alertsSent,
		GamesFoundHistory: s.gamesFound,
		LastScanDuration:  s.lastScanDuration.Milliseconds(),
		Errors:            errs,
		BootTime:          s.bootTime,
		CurrentGames:      currentGames,
		Uptime:            uptime.Seconds(),
		UptimeFormatted:   formatUptime(uptime),
	}
}

func formatUptime(d time.Duration) string {
	seconds := int64(d.Seconds())
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if len(parts) == 0 {
		return "< 1m"
	}
	return strings.Join(parts, " ")
}
