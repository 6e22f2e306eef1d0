// Package app provides the orchestration layer for the skald CLI.
//
// # Overview
//
// This package wires together configuration, the Atlas client, state
// management, and the UI behind each CLI command. It serves as the
// composition root where all dependencies are initialized and connected.
//
// # Architecture
//
// Every command starts the same way:
//
//  1. Load skald configuration from ~/.config/skald/config.toml
//  2. Initialize the Atlas HTTP client with a 30 second request timeout
//  3. Run the requested operation against the client
//
// The browse command additionally:
//
//  4. Creates a shared state.Store for UI and pager coordination
//  5. Launches the background pager goroutine
//  6. Starts the TUI and blocks until the user exits or the context cancels
//
// # Data Flow
//
//	Background Pager Loop:
//	┌─────────────────────────────────────────┐
//	│ StartPager() goroutine                  │
//	│  ├─> FetchBulkMetadata(cursor query)    │
//	│  ├─> store.Append()  (atomic)           │
//	│  ├─> advance cursor past highest id     │
//	│  └─> sleep, then next page              │
//	│      └─> UI reads store.Snapshot()      │
//	└─────────────────────────────────────────┘
//
// # Paging Behavior
//
// The pager walks the Atlas bulk endpoint using min_fic_id as a cursor.
// After each page the cursor jumps past the highest story id seen, so a
// page is never fetched twice. The run ends when the API returns an empty
// page, which is recorded to the store as exhaustion rather than treated
// as an error.
//
// On fetch failure the cursor is held in place and the fetch is retried
// after a backoff that doubles per consecutive failure, capped at 30
// seconds. Rejected credentials halt the pager entirely: retrying a 401
// with identical credentials cannot succeed.
//
// # Error Handling
//
// The app package distinguishes between fatal and recoverable errors:
//
// Fatal errors (returned from the operation):
//   - Configuration file present but invalid
//   - Atlas client initialization failure (malformed base URL)
//   - Rejected credentials
//
// Recoverable errors (logged, paging continues):
//   - Transient page fetch failures
//   - Network timeouts during paging
//
// # Configuration
//
// The Options struct allows callers to customize:
//
//   - ConfigPath: Path to skald config.toml (default: ~/.config/skald/config.toml)
//   - PageEvery: Seconds between browse page fetches (default: 2 seconds)
//
// # Usage Example
//
//	a, err := app.New(app.Options{})
//	if err != nil {
//		log.Fatalf("skald failed to start: %v", err)
//	}
//	if err := a.LookupStories(ctx, []string{"13912800"}); err != nil {
//		log.Fatalf("lookup failed: %v", err)
//	}
//
// # Dependencies
//
//   - atlas: HTTP client for the Atlas metadata API
//   - config: Loads and saves the skald configuration file
//   - state: Thread-safe container for browse results
//   - ui: Terminal user interface and card rendering
package app
