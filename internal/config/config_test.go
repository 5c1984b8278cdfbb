package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/FocuswithJustin/JuniperSearch/core/errors"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestParse(t *testing.T) {
	input := `
corpus: ftp://ftp.example.org/pub/kjv.json.xz
server:
  port: 9090
  allowed_origins: [https://example.org]
  api_key: 0123456789abcdef
  rate_limit: 120
search:
  default_limit: 20
  max_limit: 40
  cache_ttl: 90s
  highlight_pre: "**"
  highlight_post: "**"
log:
  level: debug
  format: text
ftp:
  timeout: 1m
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Corpus != "ftp://ftp.example.org/pub/kjv.json.xz" {
		t.Errorf("Corpus = %q", cfg.Corpus)
	}
	if cfg.Server.Port != 9090 || len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.RateLimit != 120 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Search.DefaultLimit != 20 || cfg.Search.MaxLimit != 40 {
		t.Errorf("Search limits = %d/%d", cfg.Search.DefaultLimit, cfg.Search.MaxLimit)
	}
	if cfg.Search.CacheTTL != 90*time.Second {
		t.Errorf("CacheTTL = %v, want 90s", cfg.Search.CacheTTL)
	}
	if cfg.Search.HighlightPre != "**" {
		t.Errorf("HighlightPre = %q", cfg.Search.HighlightPre)
	}
	if cfg.FTP.Timeout != time.Minute {
		t.Errorf("FTP.Timeout = %v", cfg.FTP.Timeout)
	}
	// Untouched values keep their defaults.
	if cfg.Search.MaxQueryLength != 500 {
		t.Errorf("MaxQueryLength = %d, want default 500", cfg.Search.MaxQueryLength)
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		field string
	}{
		{"unknown field", "serch:\n  default_limit: 5\n", ""},
		{"bad yaml", "server: [", ""},
		{"port out of range", "server:\n  port: 70000\n", "server.port"},
		{"short api key", "server:\n  api_key: abc\n", "server.api_key"},
		{"negative rate limit", "server:\n  rate_limit: -1\n", "server.rate_limit"},
		{"zero default limit", "search:\n  default_limit: 0\n", "search.default_limit"},
		{"max below default", "search:\n  default_limit: 10\n  max_limit: 5\n", "search.max_limit"},
		{"negative ttl", "search:\n  cache_ttl: -1s\n", "search.cache_ttl"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("error = %v, want ErrInvalidInput", err)
			}
			if tt.field == "" {
				return
			}
			var ve *apperrors.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("error = %v, want validation error on %s", err, tt.field)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("corpus: kjv.db\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Corpus != "kjv.db" {
		t.Errorf("Corpus = %q", cfg.Corpus)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for explicit missing file")
	}
}

func TestLoadMissingDefault(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != DefaultConfig().Server.Port {
		t.Error("missing default file should yield defaults")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Corpus = "bibles/kjv.xml"
	cfg.Search.CacheTTL = 2 * time.Minute

	var buf bytes.Buffer
	if err := cfg.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "cache_ttl: 2m0s") {
		t.Errorf("duration not written as string:\n%s", buf.String())
	}

	got, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Corpus != cfg.Corpus || got.Search.CacheTTL != cfg.Search.CacheTTL {
		t.Errorf("round trip = %+v", got)
	}
}
