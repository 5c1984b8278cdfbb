package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSecurityHeaders(t *testing.T) {
	tests := []struct {
		name    string
		csp     string
		wantCSP string
	}{
		{"api policy", APIContentSecurityPolicy, APIContentSecurityPolicy},
		{"no policy", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			SecurityHeaders(tt.csp, okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

			want := map[string]string{
				"X-Content-Type-Options":  "nosniff",
				"X-Frame-Options":         "DENY",
				"Referrer-Policy":         "no-referrer",
				"Content-Security-Policy": tt.wantCSP,
			}
			for k, v := range want {
				if got := w.Header().Get(k); got != v {
					t.Errorf("%s = %q, want %q", k, got, v)
				}
			}
		})
	}
}

func TestCleanParam(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"  love  ", 0, "love"},
		{"lo\x00ve", 0, "love"},
		{"light\x07\x1b[31m", 0, "light[31m"},
		{"line1\nline2\ttab", 0, "line1\nline2\ttab"},
		{"del\x7f", 0, "del"},
		{"Ésaïe", 0, "Ésaïe"},
		{"Ésaïe", 3, "Ésa"},
		{"this is too long", 7, "this is"},
		{"a\x00b\x00c", 2, "ab"},
		{strings.Repeat("x", 300), 200, strings.Repeat("x", 200)},
	}
	for _, tt := range tests {
		if got := CleanParam(tt.in, tt.max); got != tt.want {
			t.Errorf("CleanParam(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
