package atlas

import (
	"regexp"
	"strconv"
	"strings"
)

// storyURLPattern matches the fanfiction.net story path marker. The scheme
// and host prefix are optional so partial references like
// "fanfiction.net/s/123/4/Some-Title" still resolve.
var storyURLPattern = regexp.MustCompile(`(?:https?://)?(?:www\.|m\.)?fanfiction\.net/s/([0-9]+)`)

// ExtractFicID resolves a story reference to its numeric id. The reference is
// either a bare decimal numeral or a URL containing the /s/<id> story path.
// Trailing path segments and query strings after the id are ignored. A
// reference that yields no positive id returns *InvalidReferenceError.
func ExtractFicID(reference string) (int64, error) {
	trimmed := strings.TrimSpace(reference)
	if trimmed == "" {
		return 0, &InvalidReferenceError{Reference: reference}
	}

	if isNumeral(trimmed) {
		return parseStoryID(trimmed, reference)
	}

	match := storyURLPattern.FindStringSubmatch(trimmed)
	if match == nil {
		return 0, &InvalidReferenceError{Reference: reference}
	}
	return parseStoryID(match[1], reference)
}

// parseStoryID converts a digit string to a positive int64. Leading zeros are
// accepted; zero, negative, and overflowing values are not valid story ids.
func parseStoryID(digits, reference string) (int64, error) {
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || id <= 0 {
		return 0, &InvalidReferenceError{Reference: reference}
	}
	return id, nil
}

func isNumeral(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
