package search

import (
	"regexp"
	"unicode/utf8"
)

// Snippet geometry, in characters.
const (
	snippetContext  = 30
	snippetFallback = 150
	ellipsis        = "..."
)

// snippet returns a window of text around the first match of re with every
// match in the window wrapped in pre/post. Without a match it returns the
// first snippetFallback characters of text.
func snippet(text string, re *regexp.Regexp, pre, post string) string {
	var loc []int
	if re != nil {
		loc = re.FindStringIndex(text)
	}
	if loc == nil {
		return truncate(text, snippetFallback)
	}

	start := backRunes(text, loc[0], snippetContext)
	end := forwardRunes(text, loc[1], snippetContext)

	window := re.ReplaceAllStringFunc(text[start:end], func(m string) string {
		return pre + m + post
	})
	if start > 0 {
		window = ellipsis + window
	}
	if end < len(text) {
		window += ellipsis
	}
	return window
}

func truncate(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return text[:forwardRunes(text, 0, n)] + ellipsis
}

// backRunes returns the byte offset n runes before pos, clipped to 0.
func backRunes(s string, pos, n int) int {
	for ; n > 0 && pos > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:pos])
		pos -= size
	}
	return pos
}

// forwardRunes returns the byte offset n runes after pos, clipped to len(s).
func forwardRunes(s string, pos, n int) int {
	for ; n > 0 && pos < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[pos:])
		pos += size
	}
	return pos
}
