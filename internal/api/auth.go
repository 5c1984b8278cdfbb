package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	apperrors "github.com/FocuswithJustin/JuniperSearch/core/errors"
	"github.com/FocuswithJustin/JuniperSearch/internal/logging"
)

// MinAPIKeyLength is the shortest key AuthConfig.Validate accepts.
const MinAPIKeyLength = 16

// AuthConfig protects the endpoints that change the index with a shared key.
type AuthConfig struct {
	Enabled bool
	APIKey  string
}

// Validate reports a missing or short key. A disabled config is always valid.
func (c AuthConfig) Validate() error {
	switch {
	case !c.Enabled:
		return nil
	case c.APIKey == "":
		return apperrors.NewValidation("auth.api_key", "required when authentication is enabled")
	case len(c.APIKey) < MinAPIKeyLength:
		return apperrors.NewValidation("auth.api_key", "must be at least 16 characters")
	}
	return nil
}

// presentedKey returns the key a request carries: X-API-Key first, then an
// Authorization bearer token, then (when fromQuery) the api_key parameter.
func presentedKey(r *http.Request, fromQuery bool) string {
	if k := r.Header.Get("X-API-Key"); k != "" {
		return k
	}
	if scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token)
	}
	if fromQuery {
		return r.URL.Query().Get("api_key")
	}
	return ""
}

// check returns why r is not authorized, or "" when it is.
func (c AuthConfig) check(r *http.Request, fromQuery bool) string {
	key := presentedKey(r, fromQuery)
	if key == "" {
		return "missing API key"
	}
	if subtle.ConstantTimeCompare([]byte(key), []byte(c.APIKey)) != 1 {
		return "invalid API key"
	}
	return ""
}

// requireKey guards POST, PUT, PATCH and DELETE. Reads pass through.
func requireKey(c AuthConfig, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		if reason := c.check(r, false); reason != "" {
			logging.SecurityEvent("unauthorized_request", "auth",
				"method", r.Method,
				"path", r.URL.Path,
				"reason", reason)
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized: "+reason)
			return
		}
		next.ServeHTTP(w, r)
	})
}
