// Package config loads the juniper-search YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/FocuswithJustin/JuniperSearch/core/errors"
	"github.com/FocuswithJustin/JuniperSearch/internal/logging"
)

// DefaultPath is the config file read when none is given.
const DefaultPath = "juniper-search.yaml"

// Config is the top-level configuration.
type Config struct {
	// Corpus is the corpus source: a file path or an ftp:// URL.
	Corpus string       `yaml:"corpus"`
	Server ServerConfig `yaml:"server"`
	Search SearchConfig `yaml:"search"`
	Log    LogConfig    `yaml:"log"`
	FTP    FTPConfig    `yaml:"ftp"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"` // empty = allow all
	APIKey         string   `yaml:"api_key"`         // protects POST and DELETE when set
	RateLimit      int      `yaml:"rate_limit"`      // requests per minute, 0 = off
	RateLimitBurst int      `yaml:"rate_limit_burst"`
}

// SearchConfig configures query handling.
type SearchConfig struct {
	DefaultLimit   int           `yaml:"default_limit"`
	MaxLimit       int           `yaml:"max_limit"`
	MaxQueryLength int           `yaml:"max_query_length"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	CacheSize      int           `yaml:"cache_size"`
	HighlightPre   string        `yaml:"highlight_pre"`
	HighlightPost  string        `yaml:"highlight_post"`
	Workers        int           `yaml:"workers"`
}

// LogConfig configures internal/logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// FTPConfig configures the ftp:// corpus fetcher.
type FTPConfig struct {
	Timeout  time.Duration `yaml:"timeout"`
	CacheDir string        `yaml:"cache_dir"`
	User     string        `yaml:"user"`
	Password string        `yaml:"password"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Search: SearchConfig{
			DefaultLimit:   50,
			MaxLimit:       200,
			MaxQueryLength: 500,
			CacheTTL:       5 * time.Minute,
			CacheSize:      1024,
			HighlightPre:   "<mark>",
			HighlightPost:  "</mark>",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		FTP: FTPConfig{
			Timeout:  30 * time.Second,
			CacheDir: defaultCacheDir(),
			User:     "anonymous",
			Password: "anonymous",
		},
	}
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return os.TempDir() + "/juniper-search"
	}
	return dir + "/juniper-search"
}

// Load reads path over the defaults. A missing file is not an error when
// path is DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && path == DefaultPath {
			return DefaultConfig(), nil
		}
		return nil, apperrors.NewIO("read config", path, err)
	}
	cfg, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML from r over the defaults and validates the result.
func Parse(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &apperrors.ParseError{Format: "YAML config", Message: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	switch {
	case c.Server.Port < 0 || c.Server.Port > 65535:
		return apperrors.NewValidation("server.port", fmt.Sprintf("%d out of range", c.Server.Port))
	case c.Server.APIKey != "" && len(c.Server.APIKey) < 16:
		return apperrors.NewValidation("server.api_key", "must be at least 16 characters")
	case c.Server.RateLimit < 0 || c.Server.RateLimitBurst < 0:
		return apperrors.NewValidation("server.rate_limit", "must not be negative")
	case c.Search.DefaultLimit < 1:
		return apperrors.NewValidation("search.default_limit", "must be at least 1")
	case c.Search.MaxLimit < c.Search.DefaultLimit:
		return apperrors.NewValidation("search.max_limit", "must not be below default_limit")
	case c.Search.MaxQueryLength < 1:
		return apperrors.NewValidation("search.max_query_length", "must be at least 1")
	case c.Search.CacheTTL < 0:
		return apperrors.NewValidation("search.cache_ttl", "must not be negative")
	case c.FTP.Timeout <= 0:
		return apperrors.NewValidation("ftp.timeout", "must be positive")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return apperrors.NewValidation("log.level", err.Error())
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return apperrors.NewValidation("log.format", err.Error())
	}
	return nil
}

// InitLogging applies the log section to internal/logging.
func (c *Config) InitLogging() {
	level, _ := logging.ParseLevel(c.Log.Level)
	format, _ := logging.ParseFormat(c.Log.Format)
	logging.InitLogger(level, format)
}

// Write encodes the configuration as YAML.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
