package atlas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// MetadataFetcher defines the interface for fetching Atlas story metadata.
// This interface is implemented by *Client and can be used for testing.
type MetadataFetcher interface {
	FetchStoryMetadata(ctx context.Context, id int64) (*StoryMetadata, error)
	FetchBulkMetadata(ctx context.Context, query MetadataQuery) ([]StoryMetadata, error)
	FetchMaxStoryID(ctx context.Context) (int64, error)
	FetchMaxUpdateID(ctx context.Context) (int64, error)
}

// Ensure Client implements MetadataFetcher at compile time.
var _ MetadataFetcher = (*Client)(nil)

// Credentials is the basic-auth pair sent with every request, passed through
// to the HTTP layer unmodified.
type Credentials struct {
	Username string
	Password string
}

// Client talks to the Atlas metadata API. It borrows the caller's HTTP
// session and holds no per-call state, so concurrent calls on one instance
// are independent.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	creds     Credentials
	userAgent string
}

const (
	// DefaultBaseURL is the public Atlas deployment.
	DefaultBaseURL = "https://atlas.fanfic.dev/v0/"

	defaultUserAgent = "skald/0.1"

	// Bulk limit bounds fixed by the remote API.
	minBulkLimit = 1
	maxBulkLimit = 10000

	// snippetLimit caps how much response body is kept for diagnostics.
	snippetLimit = 256
)

// Options configure a Client. The zero value targets the public deployment
// without authentication.
type Options struct {
	// BaseURL overrides DefaultBaseURL. A bare host is given an https scheme.
	BaseURL string

	// Credentials are sent as HTTP basic auth on every request.
	Credentials Credentials

	// HTTPClient is the caller-owned session the client borrows. The client
	// never closes it or alters its settings; timeouts, pooling, and
	// connection lifecycle belong to the caller. http.DefaultClient is used
	// when nil.
	HTTPClient *http.Client

	// UserAgent overrides the default request User-Agent.
	UserAgent string
}

// NewClient builds a Client from opts.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		baseURL:   base,
		http:      httpClient,
		creds:     opts.Credentials,
		userAgent: userAgent,
	}, nil
}

// FetchStoryMetadata retrieves the metadata record for a single story.
// A 404 from the API is returned as *NotFoundError carrying id.
func (c *Client) FetchStoryMetadata(ctx context.Context, id int64) (*StoryMetadata, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if id <= 0 {
		return nil, fmt.Errorf("story id must be positive")
	}
	rel := &url.URL{Path: "ffn/meta/" + strconv.FormatInt(id, 10)}
	var payload StoryMetadata
	if err := c.get(ctx, rel, &payload); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, &NotFoundError{ID: id}
		}
		return nil, err
	}
	return &payload, nil
}

// MetadataQuery configures ffn/meta bulk requests. Zero fields are omitted
// from the query string.
type MetadataQuery struct {
	MinUpdateID     int64  // lowest update_id to include
	MinFicID        int64  // lowest story id to include; the pagination cursor
	TitleLike       string // case-insensitive title substring
	DescriptionLike string // case-insensitive description substring
	FandomsLike     string // case-insensitive raw fandom substring
	AuthorID        int64
	Limit           int // page size; zero lets the server choose
}

// FetchBulkMetadata retrieves a block of story records matching query,
// ordered by the server. An empty result is not an error.
func (c *Client) FetchBulkMetadata(ctx context.Context, query MetadataQuery) ([]StoryMetadata, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if query.Limit != 0 && (query.Limit < minBulkLimit || query.Limit > maxBulkLimit) {
		return nil, fmt.Errorf("limit %d outside %d..%d", query.Limit, minBulkLimit, maxBulkLimit)
	}
	values := url.Values{}
	if query.MinUpdateID > 0 {
		values.Set("min_update_id", strconv.FormatInt(query.MinUpdateID, 10))
	}
	if query.MinFicID > 0 {
		values.Set("min_fic_id", strconv.FormatInt(query.MinFicID, 10))
	}
	if title := strings.TrimSpace(query.TitleLike); title != "" {
		values.Set("title_ilike", title)
	}
	if desc := strings.TrimSpace(query.DescriptionLike); desc != "" {
		values.Set("description_ilike", desc)
	}
	if fandoms := strings.TrimSpace(query.FandomsLike); fandoms != "" {
		values.Set("raw_fandoms_ilike", fandoms)
	}
	if query.AuthorID > 0 {
		values.Set("author_id", strconv.FormatInt(query.AuthorID, 10))
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	rel := &url.URL{Path: "ffn/meta", RawQuery: values.Encode()}
	var payload []StoryMetadata
	if err := c.get(ctx, rel, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchMaxStoryID retrieves the highest story id known to Atlas.
func (c *Client) FetchMaxStoryID(ctx context.Context) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("client is nil")
	}
	var id int64
	if err := c.get(ctx, &url.URL{Path: "ffn/id"}, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// FetchMaxUpdateID retrieves the highest update id known to Atlas.
func (c *Client) FetchMaxUpdateID(ctx context.Context) (int64, error) {
	if c == nil {
		return 0, fmt.Errorf("client is nil")
	}
	var id int64
	if err := c.get(ctx, &url.URL{Path: "update_id"}, &id); err != nil {
		return 0, err
	}
	return id, nil
}

// get performs one authenticated GET and decodes the JSON response into
// dest. Every call is a single independent round trip; retries, caching, and
// rate limiting are the caller's business. Failures map onto the error
// taxonomy: 401/403 to *AuthError, any other non-2xx status, transport
// failure, or undecodable body to *APIError.
func (c *Client) get(ctx context.Context, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return &APIError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.SetBasicAuth(c.creds.Username, c.creds.Password)

	resp, err := c.http.Do(req)
	if err != nil {
		return &APIError{Err: fmt.Errorf("execute request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{StatusCode: resp.StatusCode}
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return &APIError{StatusCode: resp.StatusCode, Snippet: readSnippet(resp.Body)}
	}

	if dest == nil {
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Err: fmt.Errorf("read response: %w", err)}
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return &APIError{Err: fmt.Errorf("decode response: %w", err), Snippet: bodySnippet(body)}
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	// Endpoint paths are relative; the trailing slash keeps ResolveReference
	// appending instead of replacing the last segment.
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// readSnippet drains at most snippetLimit bytes of an error body. The extra
// content beyond the cap is discarded, not read.
func readSnippet(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, snippetLimit))
	if err != nil {
		return ""
	}
	return bodySnippet(data)
}

func bodySnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > snippetLimit {
		s = strings.TrimSpace(s[:snippetLimit])
	}
	return s
}
