package atlas

import "fmt"

// InvalidReferenceError reports a story reference that contains no usable id.
type InvalidReferenceError struct {
	Reference string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("no story id in reference %q", e.Reference)
}

// NotFoundError reports a 404 for a requested story id.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("story %d not found", e.ID)
}

// AuthError reports rejected credentials (HTTP 401 or 403).
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("atlas rejected credentials (status %d)", e.StatusCode)
}

// APIError is the catch-all for failed calls: unexpected HTTP statuses,
// transport failures, and undecodable response bodies. StatusCode is zero
// when no response arrived. Snippet holds the leading bytes of the response
// body, when one was available, for diagnostics.
type APIError struct {
	StatusCode int
	Snippet    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Snippet != "" {
		return fmt.Sprintf("atlas returned status %d: %s", e.StatusCode, e.Snippet)
	}
	return fmt.Sprintf("atlas returned status %d", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
