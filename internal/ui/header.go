package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/veleda/skald/internal/atlas"
)

// renderHeader renders the status bar with pager state.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	if m.lastUpdated.IsZero() {
		return styles.Header.Width(m.width).Render(
			bg.Render("skald", styles.Logo) + sep +
				bg.Render("Connecting to Atlas...", styles.WarningText.Bold(true)))
	}

	maxErr := 80
	if m.width < 100 {
		maxErr = 40
	}

	var parts []string
	parts = append(parts, bg.Render("skald", styles.Logo))

	snap := m.snapshot
	switch {
	case snap.Halted:
		parts = append(parts, bg.Render("ATLAS HALTED", styles.DangerText.Bold(true)))
		if snap.LastError != nil {
			parts = append(parts, bg.Render(truncate(snap.LastError.Error(), maxErr), styles.DangerText))
		}

	case snap.IsStalled():
		parts = append(parts,
			bg.Render("ATLAS "+classifyFetchError(snap.LastError), styles.DangerText.Bold(true)),
			bg.Render("Retrying...", styles.WarningText.Bold(true)))

	default:
		parts = append(parts,
			bg.Render("Stories:", styles.MutedText)+bg.Space()+
				bg.Render(FormatCount(len(snap.Stories)), styles.Text))
		parts = append(parts,
			bg.Render("Pages:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", snap.Pages), styles.Text))

		if snap.Exhausted {
			parts = append(parts, bg.Render("● all fetched", styles.SuccessText))
		} else {
			parts = append(parts, bg.Render("● fetching", styles.InfoText))
		}

		// A single failed fetch is worth a hint but not an alarm.
		if snap.LastError != nil {
			parts = append(parts,
				bg.Render("!", styles.WarningText.Bold(true))+bg.Space()+
					bg.Render(truncate(snap.LastError.Error(), maxErr), styles.WarningText))
		}
	}

	if m.queryLabel != "" {
		parts = append(parts, bg.Render(truncate(m.queryLabel, 40), styles.FaintText))
	}

	if timeStr := m.formatTimestamp(); timeStr != "" {
		parts = append(parts, bg.Render(timeStr, styles.MutedText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// formatTimestamp formats the last update time with relative indicator.
func (m Model) formatTimestamp() string {
	if m.lastUpdated.IsZero() {
		return ""
	}

	timeSince := time.Since(m.lastUpdated)
	timeStr := m.lastUpdated.Format("15:04:05")

	if timeSince < time.Minute {
		timeStr += " (now)"
	} else if timeSince < time.Hour {
		timeStr += fmt.Sprintf(" (%dm ago)", int(timeSince.Minutes()))
	} else if timeSince < 24*time.Hour {
		timeStr += fmt.Sprintf(" (%dh ago)", int(timeSince.Hours()))
	}

	return timeStr
}

// classifyFetchError returns a short description of a fetch error.
func classifyFetchError(err error) string {
	if err == nil {
		return ""
	}

	var authErr *atlas.AuthError
	if errors.As(err, &authErr) {
		return "UNAUTHORIZED"
	}
	var apiErr *atlas.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode > 0 {
		return fmt.Sprintf("HTTP %d", apiErr.StatusCode)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the command hints bar. While the search field is
// focused it shows the input instead.
func (m Model) renderCommandBar() string {
	// Command bar uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if m.searching {
		return styles.Header.Width(m.width).Render(
			bg.Render("/", styles.AccentText) + m.searchInput.View())
	}

	type cmd struct{ key, desc string }
	commands := []cmd{
		{"f", m.filterModeLabel()}, // Shows current filter state
		{"/", "Search"},
		{"j/k", "Navigate"},
		{"Tab", "Focus"},
		{"?", "More"},
		{"q", "Quit"},
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	// Show the applied title search pattern
	if m.searchQuery != "" {
		segments = append(segments, bg.Render("/"+truncate(m.searchQuery, 18), styles.AccentText))
	}

	// Theme indicator
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}
