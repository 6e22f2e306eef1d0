// Package ui implements the interactive terminal interface for browsing
// FanFiction.net story metadata served by an Atlas instance.
//
// # Overview
//
// The interface is a Bubble Tea program with a single browse screen:
//
//	┌─────────────────────────────────────────────────────┐
//	│ Header: pager status, story/page counts, timestamp  │
//	├──────────────────────────┬──────────────────────────┤
//	│ Story list               │ Story detail             │
//	│ (selection, filters,     │ (scrollable viewport)    │
//	│  title search)           │                          │
//	├──────────────────────────┴──────────────────────────┤
//	│ Command bar: key hints, active search, theme        │
//	└─────────────────────────────────────────────────────┘
//
// Stories arrive asynchronously: a background pager appends pages to a
// shared state.Store, and the Model polls the store on a timer via
// fetchSnapshotCmd. The Model itself holds no fetching logic and never
// blocks on the network.
//
// # Data Flow
//
//	state.Store ──snapshot──▶ Model.Update ──▶ View
//	     ▲                        │
//	     │                     tickMsg
//	  app.StartPager         (poll timer)
//
// Selection is tracked by story ID, not row index, so the highlighted
// story stays put as new pages arrive and as filters narrow the list.
//
// # Filters and Search
//
// The f key cycles a completion filter (all, complete, in progress,
// crossovers). The / key opens a title search field; enter applies the
// pattern as a case-insensitive substring match and esc clears it.
// Filter and search compose, and both apply to the already fetched
// stories only. Server-side filtering belongs to the pager query.
//
// # Themes
//
// Three built-in color themes (Nightfox, Kanagawa, Slate) can be cycled
// at runtime with T. The starting theme comes from Options.ThemeName,
// which the caller reads from the preferences file, and cycling writes
// the new choice back through prefs.Save so it sticks across sessions.
// Content ratings (K, K+, T, M) get per-theme colors via
// Theme.RatingColor.
//
// # Rendering for the CLI
//
// RenderStoryCard and RenderStoryLine are used by the non-interactive
// commands to print stories with the same styling vocabulary as the
// TUI. Lipgloss degrades to plain text when stdout is not a terminal,
// so piped output stays clean.
package ui
