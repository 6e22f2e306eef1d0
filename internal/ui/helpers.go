package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var countPrinter = message.NewPrinter(language.English)

// FormatCount renders an integer with thousands separators, e.g. 31632
// becomes "31,632". Word counts on FanFiction.net run into the millions,
// so the bare digits are hard to scan.
func FormatCount(n int) string {
	return countPrinter.Sprintf("%d", n)
}

// truncate shortens a string to maxLen runes, appending an ellipsis when
// anything was cut.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen == 1 {
		return "…"
	}
	return string(runes[:maxLen-1]) + "…"
}

// truncateMiddle shortens a string by cutting from the middle, keeping the
// start and end visible. Useful for long fandom crossover names where both
// halves matter.
func truncateMiddle(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return truncate(s, maxLen)
	}
	head := (maxLen - 1) / 2
	tail := maxLen - 1 - head
	return string(runes[:head]) + "…" + string(runes[len(runes)-tail:])
}

// padRight pads a string with spaces to the given rune width, truncating
// first if it is too long.
func padRight(s string, width int) string {
	s = truncate(s, width)
	if pad := width - len([]rune(s)); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}

// viewportSized returns a viewport with sane minimum dimensions. A zero or
// negative size makes bubbles' viewport misbehave during the first resize.
func viewportSized(width, height int) viewport.Model {
	return viewport.New(maxInt(width, 1), maxInt(height, 1))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
