package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/veleda/skald/internal/atlas"
)

// Snapshot represents the latest browse data available to the UI.
type Snapshot struct {
	Stories             []atlas.StoryMetadata
	Pages               int  // Number of pages fetched so far
	Exhausted           bool // True once a fetch returned no new stories
	Halted              bool // True once the pager stopped on a fatal error
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive fetch failures
}

// IsStalled returns true when the API has been unreachable for multiple fetches.
func (s Snapshot) IsStalled() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Append adds a fetched page of stories to the snapshot and clears any
// recorded error.
func (s *Store) Append(stories []atlas.StoryMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Stories = append(s.snapshot.Stories, stories...)
	s.snapshot.Pages++
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Fail records a fetch error. Previously fetched stories are kept so the UI
// can keep rendering them while the error is shown.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastError = err
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures++
}

// Halt records a fatal error and marks the pager as stopped.
func (s *Store) Halt(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastError = err
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.Halted = true
}

// MarkExhausted records that the API has no further stories to page through.
func (s *Store) MarkExhausted() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Exhausted = true
	s.snapshot.LastUpdated = time.Now()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Stories = cloneStories(s.snapshot.Stories)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneStories(stories []atlas.StoryMetadata) []atlas.StoryMetadata {
	if len(stories) == 0 {
		return nil
	}
	dup := make([]atlas.StoryMetadata, len(stories))
	copy(dup, stories)
	return dup
}
