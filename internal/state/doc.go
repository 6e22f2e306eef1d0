// Package state provides thread-safe state management for the skald browse view.
//
// # Overview
//
// This package implements a simple but thread-safe store for sharing fetched
// story metadata between the background pager and the UI. It acts as the
// coordination point where page fetches meet UI rendering.
//
// # Architecture
//
// The package follows a producer-consumer pattern:
//
//	Producer (Pager):              Consumer (UI):
//	┌────────────────────┐        ┌─────────────────┐
//	│ FetchBulkMetadata()│        │                 │
//	│      ↓             │        │                 │
//	│ store.Append()     │───────→│ store.Snapshot()│
//	│ store.Fail()       │ (mutex)│      ↓          │
//	│      ↓             │        │  render UI      │
//	│  next page...      │        │                 │
//	└────────────────────┘        └─────────────────┘
//
// The Store mediates between these two independent goroutines, ensuring:
//   - Atomic updates (no partial/torn reads)
//   - No data races (mutex-protected access)
//   - Immutable snapshots (defensive copying)
//
// # Update Semantics
//
// Unlike a status poller, the pager accumulates: each successful fetch
// appends a page of stories rather than replacing the previous page. The
// other transitions are:
//
//   - Append(stories): add a page, clear the error, reset the failure count
//   - Fail(err): keep all fetched stories, record the error, bump the count
//   - Halt(err): record a fatal error and mark the pager stopped for good
//   - MarkExhausted(): record that the API has no further pages
//
// Keeping fetched stories across failures means the UI always has the most
// recent successful data to display while also surfacing fetch problems.
//
// # Stall Detection
//
// IsStalled returns true after two consecutive failures. A single failed
// fetch is usually transient; two in a row means the API is likely
// unreachable and the UI should say so rather than silently showing
// stale data.
//
// # Defensive Copying
//
// Snapshot performs deep copies to prevent shared state:
//
//   - Story slices are cloned (not just the slice header)
//   - Error values are wrapped (not shared pointers)
//
// The cost of copying is minimal for the page sizes skald uses and much
// simpler than alternative coordination strategies.
//
// # Usage Example
//
//	// Pager goroutine:
//	store := &state.Store{}
//	for {
//		page, err := client.FetchBulkMetadata(ctx, query)
//		if err != nil {
//			store.Fail(err)
//		} else {
//			store.Append(page)
//		}
//		time.Sleep(interval)
//	}
//
//	// UI goroutine:
//	ticker := time.NewTicker(time.Second)
//	for range ticker.C {
//		snap := store.Snapshot()
//		renderUI(snap)
//	}
//
// # Testing Considerations
//
// The Store is safe to construct with zero value:
//
//	store := &state.Store{}  // Ready to use immediately
//
// For tests:
//   - No initialization required
//   - Thread-safe from first use
//   - Snapshot() returns zero Snapshot if never updated
package state
