package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/veleda/skald/internal/atlas"
	"github.com/veleda/skald/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	// Verify that backoff never exceeds maxBackoff regardless of input
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

type fetchStep struct {
	page  []atlas.StoryMetadata
	err   error
	block bool // wait for ctx cancellation before returning
}

// scriptedFetcher returns canned bulk responses in sequence and records the
// queries it saw. Calls past the script return an empty page, which ends the
// pager run.
type scriptedFetcher struct {
	mu      sync.Mutex
	steps   []fetchStep
	queries []atlas.MetadataQuery
}

func (f *scriptedFetcher) FetchBulkMetadata(ctx context.Context, query atlas.MetadataQuery) ([]atlas.StoryMetadata, error) {
	f.mu.Lock()
	i := len(f.queries)
	f.queries = append(f.queries, query)
	var step fetchStep
	if i < len(f.steps) {
		step = f.steps[i]
	}
	f.mu.Unlock()

	if step.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return step.page, step.err
}

func (f *scriptedFetcher) FetchStoryMetadata(ctx context.Context, id int64) (*atlas.StoryMetadata, error) {
	return nil, errors.New("not scripted")
}

func (f *scriptedFetcher) FetchMaxStoryID(ctx context.Context) (int64, error) {
	return 0, errors.New("not scripted")
}

func (f *scriptedFetcher) FetchMaxUpdateID(ctx context.Context) (int64, error) {
	return 0, errors.New("not scripted")
}

func (f *scriptedFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func (f *scriptedFetcher) query(i int) atlas.MetadataQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[i]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestStartPager_PagesUntilExhausted(t *testing.T) {
	fetcher := &scriptedFetcher{steps: []fetchStep{
		{page: []atlas.StoryMetadata{{ID: 10}, {ID: 12}}},
		{page: []atlas.StoryMetadata{{ID: 15}}},
		{}, // empty page ends the run
	}}
	store := &state.Store{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartPager(ctx, store, fetcher, atlas.MetadataQuery{}, time.Millisecond)
	waitFor(t, func() bool { return store.Snapshot().Exhausted })

	snap := store.Snapshot()
	if len(snap.Stories) != 3 || snap.Pages != 2 {
		t.Fatalf("snapshot = %d stories %d pages, want 3 stories 2 pages", len(snap.Stories), snap.Pages)
	}
	if got := fetcher.query(0); got.MinFicID != 0 || got.Limit != defaultPageSize {
		t.Fatalf("first query = %+v, want MinFicID 0 Limit %d", got, defaultPageSize)
	}
	if got := fetcher.query(1).MinFicID; got != 13 {
		t.Fatalf("second query MinFicID = %d, want 13", got)
	}
	if got := fetcher.query(2).MinFicID; got != 16 {
		t.Fatalf("third query MinFicID = %d, want 16", got)
	}
}

func TestStartPager_RetriesWithoutAdvancingCursor(t *testing.T) {
	fetcher := &scriptedFetcher{steps: []fetchStep{
		{page: []atlas.StoryMetadata{{ID: 4}}},
		{err: errors.New("boom")},
		{page: []atlas.StoryMetadata{{ID: 6}}},
	}}
	store := &state.Store{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartPager(ctx, store, fetcher, atlas.MetadataQuery{MinFicID: 2}, time.Millisecond)
	waitFor(t, func() bool { return store.Snapshot().Exhausted })

	if got := fetcher.query(0).MinFicID; got != 2 {
		t.Fatalf("first query MinFicID = %d, want 2", got)
	}
	if got := fetcher.query(1).MinFicID; got != 5 {
		t.Fatalf("second query MinFicID = %d, want 5", got)
	}
	if got := fetcher.query(2).MinFicID; got != 5 {
		t.Fatalf("retry query MinFicID = %d, want cursor held at 5", got)
	}

	snap := store.Snapshot()
	if len(snap.Stories) != 2 {
		t.Fatalf("stories = %d, want 2", len(snap.Stories))
	}
	if snap.ConsecutiveFailures != 0 {
		t.Fatalf("ConsecutiveFailures = %d, want 0 after recovery", snap.ConsecutiveFailures)
	}
}

func TestStartPager_HaltsWhenCredentialsRejected(t *testing.T) {
	fetcher := &scriptedFetcher{steps: []fetchStep{
		{err: &atlas.AuthError{StatusCode: 401}},
	}}
	store := &state.Store{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartPager(ctx, store, fetcher, atlas.MetadataQuery{}, time.Millisecond)
	waitFor(t, func() bool { return store.Snapshot().Halted })

	snap := store.Snapshot()
	var authErr *atlas.AuthError
	if !errors.As(snap.LastError, &authErr) {
		t.Fatalf("LastError = %v, want AuthError", snap.LastError)
	}

	time.Sleep(20 * time.Millisecond)
	if got := fetcher.calls(); got != 1 {
		t.Fatalf("calls after halt = %d, want 1", got)
	}
}

func TestStartPager_CancelStopsQuietly(t *testing.T) {
	fetcher := &scriptedFetcher{steps: []fetchStep{{block: true}}}
	store := &state.Store{}
	ctx, cancel := context.WithCancel(context.Background())

	StartPager(ctx, store, fetcher, atlas.MetadataQuery{}, time.Millisecond)
	waitFor(t, func() bool { return fetcher.calls() == 1 })
	cancel()

	time.Sleep(20 * time.Millisecond)
	snap := store.Snapshot()
	if snap.LastError != nil || snap.ConsecutiveFailures != 0 {
		t.Fatalf("snapshot after cancel = %+v, want no recorded failure", snap)
	}
}
