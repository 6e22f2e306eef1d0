package atlas

import (
	"fmt"
	"strings"
	"time"
)

const (
	ficSiteURL = "https://www.fanfiction.net"

	// Timestamps without a zone are treated as UTC, matching the API.
	atlasTimestampLayout = "2006-01-02T15:04:05"
)

// StoryMetadata mirrors a story record from the Atlas ffn/meta endpoints.
// Only the id is guaranteed; every other field may be missing or null on the
// wire and decodes to its zero value.
type StoryMetadata struct {
	ID            int64  `json:"id"`
	UpdateID      int64  `json:"update_id"`
	WebID         int64  `json:"web_id"`
	WebCreated    string `json:"web_created"`
	AuthorID      int64  `json:"author_id"`
	AuthorName    string `json:"author_name"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Published     string `json:"published"`
	Updated       string `json:"updated"`
	IsComplete    bool   `json:"is_complete"`
	Rating        string `json:"rating"`
	Language      string `json:"language"`
	RawGenres     string `json:"raw_genres"`
	ChapterCount  int    `json:"chapter_count"`
	WordCount     int    `json:"word_count"`
	ReviewCount   int    `json:"review_count"`
	FavoriteCount int    `json:"favorite_count"`
	FollowCount   int    `json:"follow_count"`
	RawCharacters string `json:"raw_characters"`
	RawFandoms    string `json:"raw_fandoms"`
	IsCrossover   bool   `json:"is_crossover"`
	FandomID0     *int64 `json:"fandom_id0"`
	FandomID1     *int64 `json:"fandom_id1"`
}

// URL returns the canonical story page address.
func (s StoryMetadata) URL() string {
	return fmt.Sprintf("%s/s/%d", ficSiteURL, s.ID)
}

// AuthorURL returns the canonical author page address, or empty when the
// author id is unknown.
func (s StoryMetadata) AuthorURL() string {
	if s.AuthorID <= 0 {
		return ""
	}
	return fmt.Sprintf("%s/u/%d", ficSiteURL, s.AuthorID)
}

// Genres splits the raw genre string ("Drama/Supernatural") into its parts.
func (s StoryMetadata) Genres() []string {
	raw := strings.TrimSpace(s.RawGenres)
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "/")
}

// Characters parses the raw character list. The site wraps paired characters
// in square brackets ("Harry P., [Draco M., Luna L.]"); brackets are treated
// as separators and blank entries dropped, so pairing is flattened away.
func (s StoryMetadata) Characters() []string {
	raw := strings.TrimSpace(s.RawCharacters)
	if raw == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, "[", ", ")
	raw = strings.ReplaceAll(raw, "]", ", ")

	var characters []string
	for _, part := range strings.Split(raw, ", ") {
		if name := strings.TrimSpace(part); name != "" {
			characters = append(characters, name)
		}
	}
	return characters
}

// Fandoms splits the raw fandom string. Crossovers arrive as
// "<first> and <second> Crossovers"; the suffix belongs to the site label,
// not the fandom name, and is stripped.
func (s StoryMetadata) Fandoms() []string {
	raw := strings.TrimSpace(s.RawFandoms)
	if raw == "" {
		return nil
	}
	parts := strings.SplitN(raw, " and ", 2)
	if len(parts) == 2 {
		parts[1] = strings.TrimSuffix(parts[1], " Crossovers")
	}
	return parts
}

// FandomIDs returns the known fandom ids in slot order. Stories list one id,
// crossovers two.
func (s StoryMetadata) FandomIDs() []int64 {
	ids := make([]int64, 0, 2)
	if s.FandomID0 != nil {
		ids = append(ids, *s.FandomID0)
	}
	if s.FandomID1 != nil {
		ids = append(ids, *s.FandomID1)
	}
	return ids
}

// ParsedPublished returns the publication timestamp as time.Time when possible.
func (s StoryMetadata) ParsedPublished() time.Time {
	return parseTime(s.Published)
}

// ParsedUpdated returns the last-update timestamp as time.Time when possible.
func (s StoryMetadata) ParsedUpdated() time.Time {
	return parseTime(s.Updated)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, atlasTimestampLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
