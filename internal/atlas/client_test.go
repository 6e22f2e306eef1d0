package atlas

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"
)

const magicalMarvelJSON = `{
	"id": 13912800,
	"update_id": 431008331,
	"web_id": 148790192,
	"web_created": "2021-07-11T18:46:46.272Z",
	"author_id": 424665,
	"author_name": "megamatt09",
	"title": "Magical Marvel",
	"description": "Harry's twists and turns lead him to a larger world.",
	"published": "2021-07-10T20:28:14Z",
	"updated": "2023-04-02T17:51:09Z",
	"is_complete": false,
	"rating": "M",
	"language": "English",
	"raw_genres": "Adventure/Romance",
	"chapter_count": 104,
	"word_count": 351274,
	"review_count": 1843,
	"favorite_count": 3912,
	"follow_count": 4120,
	"raw_characters": "Harry P., [Carol D., Wanda M.]",
	"raw_fandoms": "Harry Potter and Marvel Crossovers",
	"is_crossover": true,
	"fandom_id0": 224,
	"fandom_id1": 357
}`

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "https" {
		t.Fatalf("scheme = %q, want https", u.Scheme)
	}
	if u.Host != "atlas.fanfic.dev" {
		t.Fatalf("host = %q, want atlas.fanfic.dev", u.Host)
	}
	if u.Path != "/v0/" {
		t.Fatalf("path = %q, want /v0/", u.Path)
	}

	u, err = parseBaseURL("example.com/api/v1")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "https" || u.Path != "/api/v1/" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	u, err = parseBaseURL("http://localhost:8080/v0?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.RawQuery != "" || u.Fragment != "" || u.Path != "/v0/" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("https://"); err == nil {
		t.Fatal("parseBaseURL accepted url without host")
	}
}

func TestClient_FetchStoryMetadata(t *testing.T) {
	t.Parallel()

	var gotUserAgent, gotAccept string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "iris" || pass != "sekrit" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		gotUserAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/ffn/meta/13912800":
			_, _ = w.Write([]byte(magicalMarvelJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{
		BaseURL:     server.URL,
		Credentials: Credentials{Username: "iris", Password: "sekrit"},
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	story, err := c.FetchStoryMetadata(ctx, 13912800)
	if err != nil {
		t.Fatalf("FetchStoryMetadata returned error: %v", err)
	}
	if story.ID != 13912800 {
		t.Fatalf("ID = %d, want 13912800", story.ID)
	}
	if story.Title != "Magical Marvel" || story.AuthorName != "megamatt09" {
		t.Fatalf("title/author = %q/%q", story.Title, story.AuthorName)
	}
	if story.ChapterCount != 104 || story.WordCount != 351274 {
		t.Fatalf("chapters/words = %d/%d, want 104/351274", story.ChapterCount, story.WordCount)
	}
	if !story.IsCrossover || story.FandomID1 == nil || *story.FandomID1 != 357 {
		t.Fatalf("crossover fields = %v/%v", story.IsCrossover, story.FandomID1)
	}
	if gotAccept != "application/json" {
		t.Fatalf("Accept = %q, want application/json", gotAccept)
	}
	if !strings.HasPrefix(gotUserAgent, "skald/") {
		t.Fatalf("User-Agent = %q, want skald/*", gotUserAgent)
	}
}

func TestClient_NotFoundCarriesID(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchStoryMetadata(context.Background(), 999999999)
	if err == nil {
		t.Fatal("FetchStoryMetadata returned nil error, want *NotFoundError")
	}
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %T (%v), want *NotFoundError", err, err)
	}
	if notFound.ID != 999999999 {
		t.Fatalf("NotFoundError.ID = %d, want 999999999", notFound.ID)
	}
}

func TestClient_AuthRejected(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ffn/meta/1":
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		default:
			http.Error(w, "forbidden", http.StatusForbidden)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchStoryMetadata(context.Background(), 1)
	var authErr *AuthError
	if !errors.As(err, &authErr) || authErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("error = %v, want *AuthError with 401", err)
	}

	_, err = c.FetchStoryMetadata(context.Background(), 2)
	authErr = nil
	if !errors.As(err, &authErr) || authErr.StatusCode != http.StatusForbidden {
		t.Fatalf("error = %v, want *AuthError with 403", err)
	}
}

func TestClient_HTTPErrorAndDecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ffn/meta/1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		default:
			http.Error(w, "nope", http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchStoryMetadata(context.Background(), 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T (%v), want *APIError", err, err)
	}
	if !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("error = %v, want decode response error", err)
	}
	if apiErr.Snippet != "{not-json" {
		t.Fatalf("Snippet = %q, want raw body", apiErr.Snippet)
	}

	_, err = c.FetchStoryMetadata(context.Background(), 2)
	apiErr = nil
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T (%v), want *APIError", err, err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError || apiErr.Snippet != "nope" {
		t.Fatalf("APIError = %#v, want status 500 snippet nope", apiErr)
	}
}

func TestClient_TransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	c, err := NewClient(Options{BaseURL: base})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchStoryMetadata(context.Background(), 1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T (%v), want *APIError", err, err)
	}
	if apiErr.StatusCode != 0 || apiErr.Err == nil {
		t.Fatalf("APIError = %#v, want status 0 with wrapped transport error", apiErr)
	}
	if !strings.Contains(err.Error(), "execute request") {
		t.Fatalf("error = %v, want execute request error", err)
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	c, err := NewClient(Options{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err = c.FetchStoryMetadata(ctx, 1)
	if err == nil {
		t.Fatal("FetchStoryMetadata returned nil error after cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled in chain", err)
	}
}

func TestClient_ConcurrentFetches(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idStr := strings.TrimPrefix(r.URL.Path, "/ffn/meta/")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id": %s, "title": "Story %s"}`, idStr, idStr)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	ids := []int64{13912800, 14174230}
	results := make([]*StoryMetadata, len(ids))
	errs := make([]error, len(ids))

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			results[i], errs[i] = c.FetchStoryMetadata(context.Background(), id)
		}(i, id)
	}
	wg.Wait()

	for i, id := range ids {
		if errs[i] != nil {
			t.Fatalf("fetch %d returned error: %v", id, errs[i])
		}
		if results[i].ID != id {
			t.Fatalf("fetch %d returned id %d, want %d", id, results[i].ID, id)
		}
		want := fmt.Sprintf("Story %d", id)
		if results[i].Title != want {
			t.Fatalf("fetch %d title = %q, want %q", id, results[i].Title, want)
		}
	}
}

func TestClient_BulkQueryEncoding(t *testing.T) {
	t.Parallel()

	var gotQuery url.Values

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ffn/meta" {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 101}, {"id": 102}]`))
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	stories, err := c.FetchBulkMetadata(context.Background(), MetadataQuery{
		MinUpdateID:     446000000,
		MinFicID:        100,
		TitleLike:       "marvel",
		DescriptionLike: "larger world",
		FandomsLike:     "Harry Potter",
		AuthorID:        424665,
		Limit:           500,
	})
	if err != nil {
		t.Fatalf("FetchBulkMetadata returned error: %v", err)
	}
	if len(stories) != 2 || stories[0].ID != 101 || stories[1].ID != 102 {
		t.Fatalf("FetchBulkMetadata stories = %#v, want ids 101, 102", stories)
	}
	if gotQuery.Get("min_update_id") != "446000000" ||
		gotQuery.Get("min_fic_id") != "100" ||
		gotQuery.Get("title_ilike") != "marvel" ||
		gotQuery.Get("description_ilike") != "larger world" ||
		gotQuery.Get("raw_fandoms_ilike") != "Harry Potter" ||
		gotQuery.Get("author_id") != "424665" ||
		gotQuery.Get("limit") != "500" {
		t.Fatalf("FetchBulkMetadata query = %v, want params encoded", gotQuery)
	}
}

func TestClient_BulkLimitValidation(t *testing.T) {
	c, err := NewClient(Options{BaseURL: "127.0.0.1:1"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	for _, limit := range []int{-1, 10001} {
		_, err := c.FetchBulkMetadata(context.Background(), MetadataQuery{Limit: limit})
		if err == nil {
			t.Fatalf("FetchBulkMetadata accepted limit %d", limit)
		}
	}
}

func TestClient_MaxIDs(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/ffn/id":
			_, _ = w.Write([]byte("15234567"))
		case "/update_id":
			_, _ = w.Write([]byte("446518576"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(Options{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	storyID, err := c.FetchMaxStoryID(context.Background())
	if err != nil {
		t.Fatalf("FetchMaxStoryID returned error: %v", err)
	}
	if storyID != 15234567 {
		t.Fatalf("FetchMaxStoryID = %d, want 15234567", storyID)
	}

	updateID, err := c.FetchMaxUpdateID(context.Background())
	if err != nil {
		t.Fatalf("FetchMaxUpdateID returned error: %v", err)
	}
	if updateID != 446518576 {
		t.Fatalf("FetchMaxUpdateID = %d, want 446518576", updateID)
	}
}

func TestClient_RequiresPositiveID(t *testing.T) {
	c, err := NewClient(Options{BaseURL: "127.0.0.1:1"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	for _, id := range []int64{0, -5} {
		if _, err := c.FetchStoryMetadata(context.Background(), id); err == nil {
			t.Fatalf("FetchStoryMetadata accepted id %d", id)
		}
	}
}

func TestBodySnippet_Caps(t *testing.T) {
	long := strings.Repeat("x", 4*snippetLimit)
	if got := bodySnippet([]byte(long)); len(got) > snippetLimit {
		t.Fatalf("snippet length = %d, want <= %d", len(got), snippetLimit)
	}
	if got := bodySnippet([]byte("  nope\n")); got != "nope" {
		t.Fatalf("snippet = %q, want trimmed body", got)
	}
}
