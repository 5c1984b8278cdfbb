package server

import (
	"net/http"
	"strings"
	"unicode"
)

// APIContentSecurityPolicy forbids every resource load; the API only
// serves JSON.
const APIContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'"

// SecurityHeaders sets nosniff, frame denial, referrer policy and csp on
// every response. An empty csp leaves Content-Security-Policy unset.
func SecurityHeaders(csp string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		if csp != "" {
			h.Set("Content-Security-Policy", csp)
		}
		next.ServeHTTP(w, r)
	})
}

// CleanParam trims a query parameter, drops control characters (newline
// and tab survive) and cuts it to at most maxRunes runes. A non-positive
// maxRunes means no limit.
func CleanParam(s string, maxRunes int) string {
	var b strings.Builder
	b.Grow(len(s))
	n := 0
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		if maxRunes > 0 && n == maxRunes {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String()
}
