// Package atlas provides an HTTP client for the Atlas fan-fiction metadata API.
//
// # Overview
//
// This package defines the API client for the Atlas metadata service plus the
// pure helpers around it: resolving story references (bare ids or
// fanfiction.net URLs) to numeric ids, typed story records mirroring the wire
// schema, and a small error taxonomy that callers can branch on.
//
// # Architecture
//
// The package is split into four files:
//
//   - client.go: HTTP client, request/response handling, bulk query encoding
//   - story.go: StoryMetadata record and its derived accessors
//   - extract.go: story reference to id resolution
//   - errors.go: the error taxonomy
//
// # Client Usage
//
// The client borrows an HTTP session owned by the caller; it never closes it
// or installs timeouts of its own:
//
//	client, err := atlas.NewClient(atlas.Options{
//		Credentials: atlas.Credentials{Username: user, Password: pass},
//		HTTPClient:  &http.Client{Timeout: 30 * time.Second},
//	})
//	if err != nil {
//		return err
//	}
//
//	id, err := atlas.ExtractFicID("https://www.fanfiction.net/s/13912800/1/Magical-Marvel")
//	if err != nil {
//		return err
//	}
//	story, err := client.FetchStoryMetadata(ctx, id)
//
// # API Endpoints
//
// Four read-only endpoints, all GET, all JSON:
//
//   - ffn/meta/<id>: one story record
//   - ffn/meta: a block of story records filtered by MetadataQuery
//   - ffn/id: the highest story id known to Atlas (bare integer)
//   - update_id: the highest update id known to Atlas (bare integer)
//
// # Request Handling
//
// All requests:
//   - Use context for cancellation; an abandoned call is cancelled by the
//     transport, nothing else
//   - Set Accept: application/json and a skald User-Agent
//   - Carry HTTP basic authentication from the held credential pair
//   - Are single independent round trips: no retries, no caching, no rate
//     limiting (callers own that policy)
//
// # Error Taxonomy
//
// Failed operations return one of four distinct types, checked with
// errors.As; the distinction is the point, callers decide retry policy by
// type:
//
//   - *InvalidReferenceError: ExtractFicID found no usable id; fix the input
//   - *NotFoundError: the API answered 404 for the requested story id
//   - *AuthError: the API answered 401 or 403; fix credentials, retrying
//     will not help
//   - *APIError: everything else, with whatever status code and body
//     snippet were available; transport and JSON decode failures are
//     reachable through Unwrap
//
// # Type System
//
// StoryMetadata mirrors the Atlas schema field for field. Only the id is
// guaranteed; all other fields are optional and decode to zero values when
// missing or null. Raw site strings stay on the struct as received, with
// derived accessors doing the interpretation:
//
//   - Genres() splits "Drama/Supernatural"
//   - Characters() flattens the site's "[A, B]" pairing brackets
//   - Fandoms() splits crossover labels and strips the " Crossovers" suffix
//   - FandomIDs() collects the non-null fandom id slots
//   - URL() and AuthorURL() build canonical fanfiction.net addresses
//
// Timestamps are strings on the wire; ParsedPublished and ParsedUpdated fall
// back across RFC3339Nano, RFC3339, and a zoneless UTC layout, returning the
// zero time when nothing matches.
//
// # Thread Safety
//
// A Client holds only read-only state (base URL, credentials, the borrowed
// session), so concurrent calls on one instance are safe and independent.
// Connection pooling lives in the http.Client, not here.
//
// # Testing Considerations
//
// When testing code that uses this package:
//   - Use httptest.Server and point BaseURL at it
//   - Assert on error types with errors.As, not on message text
//   - The MetadataFetcher interface stands in for *Client where a fake is
//     easier than a server
//
// # Design Rationale
//
// The client is intentionally minimal:
//   - No retries or backoff (the taxonomy tells callers what is retryable)
//   - No caching (a fetch is always a fetch)
//   - No locks or per-call state (nothing to protect)
//   - No credential storage or refresh (the pair is held, never managed)
package atlas
