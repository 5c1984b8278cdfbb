package search

import (
	"strings"
	"unicode"
)

// Tokenize lowercases s, replaces every rune that is not an ASCII letter,
// digit, underscore or whitespace with a space, and splits on whitespace.
// It is used for both verse text and queries.
func Tokenize(s string) []string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		case unicode.IsSpace(r):
			return r
		}
		return ' '
	}, strings.ToLower(s))
	return strings.Fields(mapped)
}
