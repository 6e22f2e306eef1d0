package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/veleda/skald/internal/atlas"
)

// selectRow moves the selection to the given row, clamped to the visible
// list, and remembers the story ID there so later list changes can restore
// it.
func (m *Model) selectRow(row int) {
	stories := m.getVisibleStories()
	count := len(stories)
	if count == 0 {
		m.selectedRow = 0
		m.selectedID = 0
		return
	}
	m.selectedRow = minInt(maxInt(row, 0), count-1)
	m.selectedID = stories[m.selectedRow].ID
}

// updateStoryList re-resolves the remembered selection after the visible
// list changes. The selected story keeps the highlight while it is still
// visible, even when new pages land before it; otherwise the selection
// clamps to the nearest row.
func (m *Model) updateStoryList() {
	stories := m.getVisibleStories()
	count := len(stories)

	if count == 0 {
		m.selectedRow = 0
		m.selectedID = 0
		return
	}

	if m.selectedID > 0 {
		for i, story := range stories {
			if story.ID == m.selectedID {
				m.selectedRow = i
				return
			}
		}
	}

	// Story no longer visible - clamp to valid range
	if m.selectedRow >= count {
		m.selectedRow = count - 1
	}
	m.selectedID = stories[m.selectedRow].ID
}

// getVisibleStories returns fetched stories narrowed by the active filter
// mode and title search. Order follows the pager's append order, which is
// ascending story id.
func (m *Model) getVisibleStories() []atlas.StoryMetadata {
	stories := make([]atlas.StoryMetadata, 0, len(m.snapshot.Stories))
	query := strings.ToLower(m.searchQuery)

	for _, story := range m.snapshot.Stories {
		if !matchesFilter(story, m.filterMode) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(story.Title), query) {
			continue
		}
		stories = append(stories, story)
	}

	return stories
}

// matchesFilter reports whether a story passes the given filter mode.
func matchesFilter(story atlas.StoryMetadata, mode StoryFilter) bool {
	switch mode {
	case FilterComplete:
		return story.IsComplete
	case FilterInProgress:
		return !story.IsComplete
	case FilterCrossovers:
		return story.IsCrossover
	default:
		return true
	}
}

// getSelectedStory returns the currently selected story, or nil.
func (m *Model) getSelectedStory() *atlas.StoryMetadata {
	stories := m.getVisibleStories()
	if m.selectedRow < 0 || m.selectedRow >= len(stories) {
		return nil
	}
	return &stories[m.selectedRow]
}

// splitWidths returns the list and detail pane widths for a terminal width.
// Extra wide terminals give the detail pane more room.
func splitWidths(total int) (listWidth, detailWidth int) {
	if total >= 160 {
		listWidth = total * 30 / 100
	} else {
		listWidth = total * 40 / 100
	}
	return listWidth, total - listWidth
}

// renderBrowse renders the browse view with split layout (list + detail).
func (m Model) renderBrowse() string {
	styles := m.theme.Styles()
	contentHeight := m.height - 2 // Account for header + cmdbar

	if len(m.snapshot.Stories) == 0 {
		msg := "Waiting for stories..."
		if m.snapshot.Halted {
			msg = "Fetching stopped"
		}
		return lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render(msg))
	}

	listWidth, detailWidth := splitWidths(m.width)
	story := m.getSelectedStory()

	// === List Pane ===
	listTitle := m.getListTitle()
	listFocused := m.focusedPane == 0
	listBg := m.theme.SurfaceAlt
	if listFocused {
		listBg = m.theme.FocusBg
	}
	listContent := m.renderStoryList(listWidth-2, contentHeight-2, listBg)
	listPane := m.renderTitledBox(listTitle, listContent, listWidth, contentHeight, listFocused)

	// === Detail Pane ===
	detailFocused := m.focusedPane == 1
	var detailContent string
	if story != nil {
		detailContent = m.detailViewport.View()
	} else {
		detailBg := m.theme.SurfaceAlt
		if detailFocused {
			detailBg = m.theme.FocusBg
		}
		detailContent = lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.Muted)).
			Background(lipgloss.Color(detailBg)).
			Render("Select a story")
	}
	detailPane := m.renderTitledBox("Details", detailContent, detailWidth, contentHeight, detailFocused)

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// renderStoryList renders the visible stories as styled rows, keeping the
// selected row in view.
func (m Model) renderStoryList(width, height int, bgColor string) string {
	stories := m.getVisibleStories()
	if len(stories) == 0 {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.theme.Muted)).
			Background(lipgloss.Color(bgColor)).
			Render("No stories match")
	}

	// Scroll window around the selection
	start := 0
	if height > 0 && m.selectedRow >= height {
		start = m.selectedRow - height + 1
	}
	end := len(stories)
	if height > 0 && start+height < end {
		end = start + height
	}

	var lines []string
	for i := start; i < end; i++ {
		story := stories[i]
		if i == m.selectedRow {
			content := m.formatStoryRowContent(story, width, true)
			lines = append(lines, lipgloss.NewStyle().
				Background(lipgloss.Color(m.theme.SelectionBg)).
				Width(width).
				Render(content))
		} else {
			content := m.formatStoryRowContent(story, width, false)
			lines = append(lines, lipgloss.NewStyle().
				Background(lipgloss.Color(bgColor)).
				Width(width).
				Render(content))
		}
	}

	return strings.Join(lines, "\n")
}

// formatStoryRowContent formats a story row with inline colors.
// Format: "#ID Title · Rating ✓"
// When selected is true, uses SelectionText color for all text to ensure
// contrast.
func (m Model) formatStoryRowContent(story atlas.StoryMetadata, width int, selected bool) string {
	title := story.Title
	if title == "" {
		title = fmt.Sprintf("Story #%d", story.ID)
	}

	var flags []string
	if rating := strings.TrimSpace(story.Rating); rating != "" {
		flags = append(flags, rating)
	}
	if story.IsComplete {
		flags = append(flags, "✓")
	}
	if story.IsCrossover {
		flags = append(flags, "⨯")
	}
	flagStr := strings.Join(flags, " ")

	idStr := fmt.Sprintf("#%d", story.ID)
	separatorLen := 3 // " · "
	titleWidth := maxInt(width-len(idStr)-len(flagStr)-separatorLen-2, 10)

	var idStyle, titleStyle, sepStyle, flagStyle lipgloss.Style
	if selected {
		selText := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.SelectionText))
		idStyle = selText
		titleStyle = selText
		sepStyle = selText
		flagStyle = selText
	} else {
		styles := m.theme.Styles()
		idStyle = styles.MutedText
		titleStyle = styles.Text
		sepStyle = styles.FaintText
		flagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.RatingColor(story.Rating)))
	}

	row := idStyle.Render(idStr) + " " + titleStyle.Render(truncate(title, titleWidth))
	if flagStr != "" {
		row += sepStyle.Render(" · ") + flagStyle.Render(flagStr)
	}
	return row
}

// renderTitledBox renders content in a box with the title embedded in the
// top border: ┌─── Title ───┐. When focused, uses the focus border and
// background colors.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.FocusBg
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := width - 2 // Account for left and right border chars
	titleLen := len([]rune(title))
	leftPad := maxInt((innerWidth-titleLen-2)/2, 0)
	rightPad := maxInt(innerWidth-titleLen-2-leftPad, 0)

	topBorder := borderStyle.Render("┌"+strings.Repeat("─", leftPad)) +
		titleStyle.Render(" "+title+" ") +
		borderStyle.Render(strings.Repeat("─", rightPad)+"┐")

	bottomBorder := borderStyle.Render("└" + strings.Repeat("─", maxInt(innerWidth, 0)) + "┘")

	contentStyle := lipgloss.NewStyle().Width(innerWidth).Background(lipgloss.Color(bgColorStr))

	contentLines := strings.Split(content, "\n")
	boxHeight := height - 2 // -2 for top and bottom borders

	var paddedLines []string
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		paddedLines = append(paddedLines,
			borderStyle.Render("│")+contentStyle.Render(line)+borderStyle.Render("│"))
	}

	return topBorder + "\n" + strings.Join(paddedLines, "\n") + "\n" + bottomBorder
}

// getListTitle returns the list pane title with optional filter indicator.
func (m Model) getListTitle() string {
	total := len(m.snapshot.Stories)
	visible := len(m.getVisibleStories())

	if m.filterMode == FilterAll && m.searchQuery == "" {
		return fmt.Sprintf("Stories (%d)", total)
	}
	return fmt.Sprintf("Stories (%d/%d) %s", visible, total, m.filterModeLabel())
}

// listPageSize returns the number of list rows visible at the current size.
func (m Model) listPageSize() int {
	return maxInt(m.height-4, 1)
}

// initDetailViewport creates the detail viewport sized for the current
// terminal.
func (m *Model) initDetailViewport() {
	_, detailWidth := splitWidths(m.width)
	m.detailViewport = viewportSized(detailWidth-2, m.height-4)
}

// updateDetailViewport refreshes the detail pane content for the selected
// story.
func (m *Model) updateDetailViewport() {
	if !m.ready {
		return
	}

	_, detailWidth := splitWidths(m.width)
	m.detailViewport.Width = detailWidth - 2
	m.detailViewport.Height = m.height - 4

	story := m.getSelectedStory()
	if story == nil {
		m.detailViewport.SetContent("")
		return
	}
	m.detailViewport.SetContent(m.renderDetailContent(*story, detailWidth-4))
	m.detailViewport.GotoTop()
}
