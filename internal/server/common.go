// Package server holds HTTP middleware shared by the API and the websocket
// endpoint.
package server

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/FocuswithJustin/JuniperSearch/internal/logging"
)

// OriginAllowed reports whether origin matches an entry of allowed: "*",
// an exact origin, or "*.example.org" for any subdomain. An empty list
// allows every origin.
func OriginAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return true
	}
	if origin == "" {
		return false
	}
	if slices.Contains(allowed, origin) {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	host := u.Hostname()
	for _, a := range allowed {
		if suffix, ok := strings.CutPrefix(a, "*"); ok && strings.HasPrefix(suffix, ".") && strings.HasSuffix(host, suffix) {
			return true
		}
	}
	return false
}

// CORS answers preflights and sets Access-Control headers. With no
// origins configured every origin gets "*". Otherwise a disallowed
// preflight is refused with 403 and other disallowed requests are served
// without CORS headers, which the browser then blocks.
type CORS struct {
	Origins []string
}

const (
	corsMethods = "GET, POST, DELETE, OPTIONS"
	corsHeaders = "Content-Type, Authorization, X-API-Key, X-Request-ID"
)

func (c CORS) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		preflight := r.Method == http.MethodOptions

		if len(c.Origins) == 0 {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			origin := r.Header.Get("Origin")
			h.Add("Vary", "Origin")
			if !OriginAllowed(origin, c.Origins) {
				if preflight {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		h.Set("Access-Control-Allow-Methods", corsMethods)
		h.Set("Access-Control-Allow-Headers", corsHeaders)

		if preflight {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SlowRequestThreshold is the duration above which TimingMiddleware warns.
const SlowRequestThreshold = 500 * time.Millisecond

// TimingMiddleware logs requests slower than SlowRequestThreshold.
func TimingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if d := time.Since(start); d > SlowRequestThreshold {
			logging.WarnContext(r.Context(), "slow request",
				"method", r.Method,
				"path", r.URL.Path,
				"duration_ms", d.Milliseconds())
		}
	})
}
