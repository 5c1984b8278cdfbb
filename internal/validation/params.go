package validation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultMaxQueryLength bounds search queries when no limit is configured.
const DefaultMaxQueryLength = 500

var (
	ErrEmptyQuery    = errors.New("query cannot be empty")
	ErrQueryTooLong  = errors.New("query too long")
	ErrInvalidNumber = errors.New("invalid number")
)

// ValidateQuery trims a search query and checks it against maxLen
// characters (runes, not bytes). A non-positive maxLen means
// DefaultMaxQueryLength.
func ValidateQuery(q string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxQueryLength
	}
	q = strings.TrimSpace(q)
	switch {
	case q == "":
		return "", ErrEmptyQuery
	case utf8.RuneCountInString(q) > maxLen:
		return "", fmt.Errorf("%w: maximum %d characters", ErrQueryTooLong, maxLen)
	case strings.IndexByte(q, 0) >= 0:
		return "", fmt.Errorf("%w in query", ErrInvalidCharacter)
	}
	return q, nil
}

func parseInt(raw, name string, min int) (n int, blank bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true, nil
	}
	n, err = strconv.Atoi(raw)
	if err != nil || n < min {
		return 0, false, fmt.Errorf("%w: %s must be an integer >= %d, got %q", ErrInvalidNumber, name, min, raw)
	}
	return n, false, nil
}

// ParseLimit parses a page size. Blank input yields def; values above max
// are clamped to max when max is positive.
func ParseLimit(raw string, def, max int) (int, error) {
	n, blank, err := parseInt(raw, "limit", 1)
	switch {
	case err != nil:
		return 0, err
	case blank:
		return def, nil
	case max > 0 && n > max:
		return max, nil
	}
	return n, nil
}

// ParseOffset parses a non-negative offset. Blank input yields 0.
func ParseOffset(raw string) (int, error) {
	n, _, err := parseInt(raw, "offset", 0)
	return n, err
}
