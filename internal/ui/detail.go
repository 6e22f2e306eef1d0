package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/veleda/skald/internal/atlas"
)

// cardWidth is the fixed width of CLI story cards.
const cardWidth = 72

// RenderStoryCard renders a boxed, multi-line summary of a story for CLI
// output. Missing fields are omitted rather than rendered blank; the only
// field a story is guaranteed to carry is its id.
func RenderStoryCard(story atlas.StoryMetadata, theme Theme) string {
	styles := theme.Styles()
	var b strings.Builder

	title := story.Title
	if title == "" {
		title = fmt.Sprintf("Story #%d", story.ID)
	}
	b.WriteString(styles.AccentText.Bold(true).Render(title))
	if story.AuthorName != "" {
		b.WriteString(styles.MutedText.Render(" by "))
		b.WriteString(styles.Text.Render(story.AuthorName))
	}
	b.WriteString("\n")

	if fandoms := story.Fandoms(); len(fandoms) > 0 {
		line := strings.Join(fandoms, " · ")
		if story.IsCrossover {
			line = "⨯ " + line
		}
		b.WriteString(styles.InfoText.Render(line))
		b.WriteString("\n")
	}

	if facts := storyFactsLine(story, theme); facts != "" {
		b.WriteString(facts)
		b.WriteString("\n")
	}

	if counts := storyCountsLine(story, styles); counts != "" {
		b.WriteString(counts)
		b.WriteString("\n")
	}

	if dates := storyDatesLine(story); dates != "" {
		b.WriteString(styles.FaintText.Render(dates))
		b.WriteString("\n")
	}

	if characters := story.Characters(); len(characters) > 0 {
		b.WriteString(styles.MutedText.Render(strings.Join(characters, ", ")))
		b.WriteString("\n")
	}

	if desc := strings.TrimSpace(story.Description); desc != "" {
		b.WriteString("\n")
		b.WriteString(styles.Text.Render(desc))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(story.URL()))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Border)).
		Padding(0, 1).
		Width(cardWidth)

	return box.Render(b.String())
}

// RenderStoryLine renders a one-line summary of a story for list output.
func RenderStoryLine(story atlas.StoryMetadata, theme Theme) string {
	styles := theme.Styles()

	title := story.Title
	if title == "" {
		title = fmt.Sprintf("Story #%d", story.ID)
	}

	parts := []string{
		styles.MutedText.Render(fmt.Sprintf("%9d", story.ID)),
		styles.Text.Render(padRight(truncate(title, 42), 42)),
	}

	if fandoms := story.Fandoms(); len(fandoms) > 0 {
		parts = append(parts, styles.InfoText.Render(padRight(truncate(strings.Join(fandoms, " · "), 30), 30)))
	}
	if story.WordCount > 0 {
		parts = append(parts, styles.MutedText.Render(FormatCount(story.WordCount)+" words"))
	}
	if story.IsComplete {
		parts = append(parts, styles.SuccessText.Render("✓"))
	}

	return strings.Join(parts, "  ")
}

// storyFactsLine builds the "rating · language · genres" line.
func storyFactsLine(story atlas.StoryMetadata, theme Theme) string {
	styles := theme.Styles()
	var parts []string

	if rating := strings.TrimSpace(story.Rating); rating != "" {
		ratingStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.RatingColor(rating)))
		parts = append(parts, ratingStyle.Render("Rated "+rating))
	}
	if lang := strings.TrimSpace(story.Language); lang != "" {
		parts = append(parts, styles.MutedText.Render(lang))
	}
	if genres := story.Genres(); len(genres) > 0 {
		parts = append(parts, styles.MutedText.Render(strings.Join(genres, "/")))
	}

	return strings.Join(parts, styles.FaintText.Render(" · "))
}

// storyCountsLine builds the "words · chapters · status · engagement" line.
func storyCountsLine(story atlas.StoryMetadata, styles Styles) string {
	var parts []string

	if story.WordCount > 0 {
		parts = append(parts, FormatCount(story.WordCount)+" words")
	}
	if story.ChapterCount > 0 {
		noun := "chapters"
		if story.ChapterCount == 1 {
			noun = "chapter"
		}
		parts = append(parts, fmt.Sprintf("%d %s", story.ChapterCount, noun))
	}
	if len(parts) == 0 && !story.IsComplete {
		return ""
	}

	status := "In progress"
	if story.IsComplete {
		status = "Complete"
	}
	parts = append(parts, status)

	line := styles.Text.Render(strings.Join(parts, " · "))

	var engagement []string
	if story.ReviewCount > 0 {
		engagement = append(engagement, FormatCount(story.ReviewCount)+" reviews")
	}
	if story.FavoriteCount > 0 {
		engagement = append(engagement, FormatCount(story.FavoriteCount)+" favorites")
	}
	if story.FollowCount > 0 {
		engagement = append(engagement, FormatCount(story.FollowCount)+" follows")
	}
	if len(engagement) > 0 {
		line += styles.FaintText.Render(" · ") + styles.MutedText.Render(strings.Join(engagement, " · "))
	}

	return line
}

// storyDatesLine builds the "published · updated" line, skipping timestamps
// that are missing or unparseable.
func storyDatesLine(story atlas.StoryMetadata) string {
	var parts []string

	if published := story.ParsedPublished(); !published.IsZero() {
		parts = append(parts, "published "+published.Format("2006-01-02"))
	}
	if updated := story.ParsedUpdated(); !updated.IsZero() {
		parts = append(parts, "updated "+updated.Format("2006-01-02"))
	}

	return strings.Join(parts, " · ")
}

// renderDetailContent renders the detail pane body for the browse view.
func (m Model) renderDetailContent(story atlas.StoryMetadata, width int) string {
	styles := m.theme.Styles()
	var b strings.Builder

	wrap := lipgloss.NewStyle().Width(maxInt(width, 20))

	title := story.Title
	if title == "" {
		title = fmt.Sprintf("Story #%d", story.ID)
	}
	header := styles.AccentText.Bold(true).Render(title)
	if story.AuthorName != "" {
		header += styles.MutedText.Render(" by ") + styles.Text.Render(story.AuthorName)
	}
	b.WriteString(wrap.Render(header))
	b.WriteString("\n")

	if fandoms := story.Fandoms(); len(fandoms) > 0 {
		line := strings.Join(fandoms, " · ")
		if story.IsCrossover {
			line = "⨯ " + line
		}
		b.WriteString(wrap.Render(styles.InfoText.Render(line)))
		b.WriteString("\n")
	}

	if facts := storyFactsLine(story, m.theme); facts != "" {
		b.WriteString(wrap.Render(facts))
		b.WriteString("\n")
	}
	if counts := storyCountsLine(story, styles); counts != "" {
		b.WriteString(wrap.Render(counts))
		b.WriteString("\n")
	}
	if dates := storyDatesLine(story); dates != "" {
		b.WriteString(wrap.Render(styles.FaintText.Render(dates)))
		b.WriteString("\n")
	}
	if characters := story.Characters(); len(characters) > 0 {
		b.WriteString(wrap.Render(styles.MutedText.Render(strings.Join(characters, ", "))))
		b.WriteString("\n")
	}

	if desc := strings.TrimSpace(story.Description); desc != "" {
		b.WriteString("\n")
		b.WriteString(wrap.Render(styles.Text.Render(desc)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(wrap.Render(styles.FaintText.Render(story.URL())))
	if authorURL := story.AuthorURL(); authorURL != "" {
		b.WriteString("\n")
		b.WriteString(wrap.Render(styles.FaintText.Render(authorURL)))
	}

	return b.String()
}
