// Package service ties the search index to its corpus source and adds the
// pieces every front end needs: input limits, a response cache, and index
// lifecycle events.
package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/FocuswithJustin/JuniperSearch/core/books"
	"github.com/FocuswithJustin/JuniperSearch/core/corpus"
	apperrors "github.com/FocuswithJustin/JuniperSearch/core/errors"
	"github.com/FocuswithJustin/JuniperSearch/core/ref"
	"github.com/FocuswithJustin/JuniperSearch/core/search"
	"github.com/FocuswithJustin/JuniperSearch/internal/cache"
	"github.com/FocuswithJustin/JuniperSearch/internal/logging"
	"github.com/FocuswithJustin/JuniperSearch/internal/validation"
)

// Config holds service settings. Zero values fall back to the defaults of
// DefaultConfig.
type Config struct {
	Source         string // shown in Stats
	Registry       *books.Registry
	DefaultLimit   int
	MaxLimit       int
	MaxQueryLength int
	CacheTTL       time.Duration
	CacheSize      int
	HighlightPre   string
	HighlightPost  string
	Workers        int
}

// DefaultConfig returns the built-in service settings.
func DefaultConfig() Config {
	return Config{
		DefaultLimit:   search.DefaultLimit,
		MaxLimit:       200,
		MaxQueryLength: validation.DefaultMaxQueryLength,
		CacheTTL:       5 * time.Minute,
		CacheSize:      cache.DefaultMaxEntries,
		HighlightPre:   "<mark>",
		HighlightPost:  "</mark>",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Registry == nil {
		c.Registry = books.Default()
	}
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = d.DefaultLimit
	}
	if c.MaxLimit <= 0 {
		c.MaxLimit = d.MaxLimit
	}
	if c.MaxLimit < c.DefaultLimit {
		c.MaxLimit = c.DefaultLimit
	}
	if c.MaxQueryLength <= 0 {
		c.MaxQueryLength = d.MaxQueryLength
	}
	if c.HighlightPre == "" && c.HighlightPost == "" {
		c.HighlightPre, c.HighlightPost = d.HighlightPre, d.HighlightPost
	}
	return c
}

// Stats is the index summary plus source and cache details.
type Stats struct {
	search.Stats
	Source string      `json:"source,omitempty"`
	Cache  cache.Stats `json:"cache"`
}

type cacheKey struct {
	generation uint64
	query      string
	opts       search.Options
}

// Service is safe for concurrent use.
type Service struct {
	cfg    Config
	index  *search.Index
	parser *ref.Parser
	cache  *cache.TTLCache[cacheKey, *search.Response]

	buildMu sync.Mutex

	// generation changes whenever the index is replaced or cleared, so
	// cached responses from an older index are never served.
	generation atomic.Uint64

	obsMu     sync.RWMutex
	observers map[int]Observer
	nextObs   int
}

// New creates a service over loader. The index is built lazily.
func New(loader corpus.Loader, cfg Config) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		cfg: cfg,
		index: search.New(loader,
			search.WithRegistry(cfg.Registry),
			search.WithHighlight(cfg.HighlightPre, cfg.HighlightPost),
			search.WithWorkers(cfg.Workers),
		),
		parser:    ref.NewParser(cfg.Registry),
		cache:     cache.New[cacheKey, *search.Response](cfg.CacheTTL, cfg.CacheSize),
		observers: make(map[int]Observer),
	}
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// Search validates the query, clamps the limit to MaxLimit and runs it,
// serving repeated queries from the cache. A blank query is a
// ValidationError wrapping validation.ErrEmptyQuery.
func (s *Service) Search(ctx context.Context, query string, opts search.Options) (*search.Response, error) {
	q, err := validation.ValidateQuery(query, s.cfg.MaxQueryLength)
	if err != nil {
		return nil, &apperrors.ValidationError{
			Field:   "q",
			Message: err.Error(),
			Err:     fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err),
		}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Limit == 0 {
		opts.Limit = s.cfg.DefaultLimit
	}
	if opts.Limit > s.cfg.MaxLimit {
		opts.Limit = s.cfg.MaxLimit
	}
	opts.Book = strings.TrimSpace(opts.Book)

	if err := s.Build(ctx); err != nil {
		return nil, err
	}

	key := cacheKey{generation: s.generation.Load(), query: q, opts: opts}
	if resp, ok := s.cache.Get(key); ok {
		return resp, nil
	}

	start := time.Now()
	resp, err := s.index.Search(ctx, q, opts)
	if err != nil {
		return nil, err
	}
	logging.SearchQuery(ctx, q, resp.Total, time.Since(start),
		"scope", string(opts.Scope),
		"book", opts.Book,
		"limit", resp.Limit,
		"offset", resp.Offset,
	)
	s.cache.Set(key, resp)
	return resp, nil
}

// Build builds the index if it is not built yet and reports the outcome to
// observers.
func (s *Service) Build(ctx context.Context) error {
	if s.index.Built() {
		return nil
	}
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	if s.index.Built() {
		return nil
	}
	return s.build(ctx, EventIndexBuilding, func(ctx context.Context) error {
		return s.index.Build(ctx)
	})
}

// Rebuild reloads the corpus and replaces the index.
func (s *Service) Rebuild(ctx context.Context) error {
	s.buildMu.Lock()
	defer s.buildMu.Unlock()
	return s.build(ctx, EventIndexRebuilding, s.index.Rebuild)
}

func (s *Service) build(ctx context.Context, startEvent EventType, run func(context.Context) error) error {
	s.emit(Event{Type: startEvent})
	logging.IndexEvent(string(startEvent), nil, "source", s.cfg.Source)

	start := time.Now()
	err := run(ctx)
	s.generation.Add(1)
	s.cache.Invalidate()
	if err != nil {
		logging.IndexEvent(string(EventIndexFailed), err, "source", s.cfg.Source)
		s.emit(Event{Type: EventIndexFailed, Error: err.Error()})
		return err
	}

	stats := s.index.Stats()
	logging.IndexEvent(string(EventIndexBuilt), nil,
		"verses", stats.TotalVerses,
		"books", stats.TotalBooks,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	s.emit(Event{Type: EventIndexBuilt, Stats: &stats})
	return nil
}

// Clear discards the index and the response cache.
func (s *Service) Clear() {
	s.index.Clear()
	s.generation.Add(1)
	s.cache.Invalidate()
	logging.IndexEvent(string(EventIndexCleared), nil)
	s.emit(Event{Type: EventIndexCleared})
}

// Stats reports the index, source and cache state. It does not build the
// index.
func (s *Service) Stats() Stats {
	return Stats{
		Stats:  s.index.Stats(),
		Source: s.cfg.Source,
		Cache:  s.cache.Stats(),
	}
}

// Passage is a resolved reference with its verses.
type Passage struct {
	Reference ref.Reference  `json:"reference"`
	Formatted string         `json:"formatted"`
	Verses    []search.Entry `json:"verses"`
}

// Passage parses text as a single reference and returns its verses.
func (s *Service) Passage(ctx context.Context, text string) (*Passage, error) {
	r, err := s.parser.Parse(text)
	if err != nil {
		return nil, err
	}
	entries, err := s.index.Lookup(ctx, *r)
	if err != nil {
		return nil, err
	}
	return &Passage{Reference: *r, Formatted: ref.Format(*r), Verses: entries}, nil
}

// ParsedReferences is the outcome of parsing a reference list.
type ParsedReferences struct {
	References []*ref.Reference `json:"references"`
	Formatted  []string         `json:"formatted"`
	Rejected   []string         `json:"rejected"`
}

// ParseReferences parses a ";" or "," separated reference list.
func (s *Service) ParseReferences(text string) ParsedReferences {
	refs, rejected := s.parser.ParseMultiple(text)
	out := ParsedReferences{
		References: refs,
		Formatted:  make([]string, len(refs)),
		Rejected:   rejected,
	}
	if out.Rejected == nil {
		out.Rejected = []string{}
	}
	for i, r := range refs {
		out.Formatted[i] = ref.Format(*r)
	}
	return out
}

// ParseReference parses a single reference.
func (s *Service) ParseReference(text string) (*ref.Reference, error) {
	return s.parser.Parse(text)
}

// Books lists registry books, optionally restricted to one group.
func (s *Service) Books(group books.Group) []*books.Book {
	if group == "" {
		return s.cfg.Registry.All()
	}
	return s.cfg.Registry.InGroup(group)
}
