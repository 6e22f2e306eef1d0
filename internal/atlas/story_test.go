package atlas

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

// parselkingJSON is a real ffn/meta record shape; description is omitted on
// purpose to cover optional-field decoding.
const parselkingJSON = `{
	"id": 14174230,
	"update_id": 446518576,
	"web_id": 151645549,
	"web_created": "2023-06-10T06:15:58.105Z",
	"author_id": 424665,
	"author_name": "megamatt09",
	"title": "Parselking",
	"published": "2022-12-18T23:18:25Z",
	"updated": "2023-05-21T21:04:53Z",
	"is_complete": false,
	"rating": "M",
	"language": "English",
	"raw_genres": "Drama/Supernatural",
	"chapter_count": 13,
	"word_count": 114913,
	"review_count": 216,
	"favorite_count": 878,
	"follow_count": 1073,
	"raw_characters": null,
	"raw_fandoms": "Harry Potter",
	"is_crossover": false,
	"fandom_id0": 224,
	"fandom_id1": null
}`

func TestStoryMetadata_DecodesFixture(t *testing.T) {
	var story StoryMetadata
	if err := json.Unmarshal([]byte(parselkingJSON), &story); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	if story.ID != 14174230 {
		t.Fatalf("ID = %d, want 14174230", story.ID)
	}
	if story.Title != "Parselking" || story.AuthorName != "megamatt09" {
		t.Fatalf("title/author = %q/%q, want Parselking/megamatt09", story.Title, story.AuthorName)
	}
	if story.ChapterCount != 13 || story.WordCount != 114913 {
		t.Fatalf("chapters/words = %d/%d, want 13/114913", story.ChapterCount, story.WordCount)
	}
	if story.ReviewCount != 216 || story.FavoriteCount != 878 || story.FollowCount != 1073 {
		t.Fatalf("reviews/favorites/follows = %d/%d/%d, want 216/878/1073",
			story.ReviewCount, story.FavoriteCount, story.FollowCount)
	}
	if story.IsComplete || story.IsCrossover {
		t.Fatalf("is_complete/is_crossover = %v/%v, want false/false", story.IsComplete, story.IsCrossover)
	}
	if story.Description != "" {
		t.Fatalf("Description = %q, want empty for omitted field", story.Description)
	}
	if story.RawCharacters != "" {
		t.Fatalf("RawCharacters = %q, want empty for null field", story.RawCharacters)
	}
	if story.FandomID0 == nil || *story.FandomID0 != 224 {
		t.Fatalf("FandomID0 = %v, want 224", story.FandomID0)
	}
	if story.FandomID1 != nil {
		t.Fatalf("FandomID1 = %v, want nil", story.FandomID1)
	}
}

func TestStoryMetadata_DerivedAccessors(t *testing.T) {
	var story StoryMetadata
	if err := json.Unmarshal([]byte(parselkingJSON), &story); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}

	if got := story.URL(); got != "https://www.fanfiction.net/s/14174230" {
		t.Fatalf("URL() = %q", got)
	}
	if got := story.AuthorURL(); got != "https://www.fanfiction.net/u/424665" {
		t.Fatalf("AuthorURL() = %q", got)
	}
	if got := story.Genres(); !reflect.DeepEqual(got, []string{"Drama", "Supernatural"}) {
		t.Fatalf("Genres() = %#v", got)
	}
	if got := story.Fandoms(); !reflect.DeepEqual(got, []string{"Harry Potter"}) {
		t.Fatalf("Fandoms() = %#v", got)
	}
	if got := story.FandomIDs(); !reflect.DeepEqual(got, []int64{224}) {
		t.Fatalf("FandomIDs() = %#v", got)
	}
	if got := story.Characters(); got != nil {
		t.Fatalf("Characters() = %#v, want nil for null raw field", got)
	}
	if got := story.ParsedPublished(); !got.Equal(time.Date(2022, 12, 18, 23, 18, 25, 0, time.UTC)) {
		t.Fatalf("ParsedPublished() = %v", got)
	}
	if got := story.ParsedUpdated(); !got.Equal(time.Date(2023, 5, 21, 21, 4, 53, 0, time.UTC)) {
		t.Fatalf("ParsedUpdated() = %v", got)
	}
}

func TestStoryMetadata_Characters(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"plain list", "Harry P., Hermione G.", []string{"Harry P.", "Hermione G."}},
		{"trailing pair", "Harry P., [Carol D., Wanda M.]", []string{"Harry P.", "Carol D.", "Wanda M."}},
		{"leading pair", "[Naruto U., Hinata H.] Sasuke U.", []string{"Naruto U.", "Hinata H.", "Sasuke U."}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			story := StoryMetadata{RawCharacters: tt.raw}
			if got := story.Characters(); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Characters() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestStoryMetadata_Fandoms(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"single", "Harry Potter", []string{"Harry Potter"}},
		{"crossover", "Harry Potter and Marvel Crossovers", []string{"Harry Potter", "Marvel"}},
		{"crossover multiword", "Naruto and High School DxD Crossovers", []string{"Naruto", "High School DxD"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			story := StoryMetadata{RawFandoms: tt.raw}
			if got := story.Fandoms(); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Fandoms() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseTime_Layouts(t *testing.T) {
	if got := parseTime("2023-06-10T06:15:58.105Z"); got.IsZero() {
		t.Fatal("nano layout did not parse")
	}
	if got := parseTime("2022-12-18T23:18:25Z"); !got.Equal(time.Date(2022, 12, 18, 23, 18, 25, 0, time.UTC)) {
		t.Fatalf("rfc3339 = %v", got)
	}
	if got := parseTime("2023-05-21T21:04:53"); !got.Equal(time.Date(2023, 5, 21, 21, 4, 53, 0, time.UTC)) {
		t.Fatalf("zoneless = %v", got)
	}
	if got := parseTime(""); !got.IsZero() {
		t.Fatalf("empty = %v, want zero", got)
	}
	if got := parseTime("yesterday"); !got.IsZero() {
		t.Fatalf("garbage = %v, want zero", got)
	}
}
