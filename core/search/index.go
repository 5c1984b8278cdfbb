// Package search implements the in-memory verse index and the query engine
// that ranks verses by token overlap with a query.
//
// An Index is built lazily from a corpus.Loader on the first query, or
// explicitly with Build. Builds are serialized; queries run against an
// immutable snapshot of the entries and may run concurrently with each other
// and with a rebuild.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/FocuswithJustin/JuniperSearch/core/books"
	"github.com/FocuswithJustin/JuniperSearch/core/corpus"
	"github.com/FocuswithJustin/JuniperSearch/core/errors"
	"github.com/FocuswithJustin/JuniperSearch/internal/workerpool"
)

// Entry is the index record for one verse.
type Entry struct {
	Book    string      `json:"book"`
	BookID  string      `json:"bookId"`
	Group   books.Group `json:"group"`
	Chapter int         `json:"chapter"`
	Verse   int         `json:"verse"`
	Text    string      `json:"text"`
	Tokens  []string    `json:"tokens"`

	lower string
}

// Stats summarizes the index.
type Stats struct {
	TotalVerses int        `json:"totalVerses"`
	TotalBooks  int        `json:"totalBooks"`
	IndexBuilt  bool       `json:"indexBuilt"`
	Fingerprint string     `json:"fingerprint,omitempty"`
	BuiltAt     *time.Time `json:"builtAt,omitempty"`
}

// Option configures an Index.
type Option func(*Index)

// WithRegistry sets the book registry used for book filters and for the
// group of books the corpus leaves unlabelled. Defaults to books.Default().
func WithRegistry(r *books.Registry) Option {
	return func(idx *Index) {
		if r != nil {
			idx.registry = r
		}
	}
}

// WithHighlight sets the markers wrapped around query matches in snippets.
func WithHighlight(pre, post string) Option {
	return func(idx *Index) {
		idx.highlightPre = pre
		idx.highlightPost = post
	}
}

// WithWorkers sets the number of goroutines used to tokenize books during a
// build. Zero or negative means one per CPU.
func WithWorkers(n int) Option {
	return func(idx *Index) {
		idx.workers = n
	}
}

// Index is an in-memory verse index.
type Index struct {
	loader        corpus.Loader
	registry      *books.Registry
	highlightPre  string
	highlightPost string
	workers       int

	// buildMu serializes Build and Rebuild.
	buildMu sync.Mutex

	mu      sync.RWMutex
	snap    *snapshot
	builtAt time.Time
}

type snapshot struct {
	entries     []Entry
	books       int
	fingerprint string
}

// New creates an unbuilt index over the corpus supplied by loader.
func New(loader corpus.Loader, opts ...Option) *Index {
	idx := &Index{
		loader:        loader,
		registry:      books.Default(),
		highlightPre:  "<mark>",
		highlightPost: "</mark>",
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Built returns true once the index holds a snapshot.
func (idx *Index) Built() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.snap != nil
}

// Build loads and indexes the corpus. It is a no-op if the index is already
// built. A loader failure leaves the index unbuilt.
func (idx *Index) Build(ctx context.Context) error {
	if idx.Built() {
		return nil
	}
	idx.buildMu.Lock()
	defer idx.buildMu.Unlock()
	if idx.Built() {
		return nil
	}
	return idx.load(ctx)
}

// Rebuild unconditionally reloads the corpus and replaces the index.
// Queries keep using the previous snapshot until the new one is ready.
// On failure the index is left cleared.
func (idx *Index) Rebuild(ctx context.Context) error {
	idx.buildMu.Lock()
	defer idx.buildMu.Unlock()
	if err := idx.load(ctx); err != nil {
		idx.Clear()
		return err
	}
	return nil
}

// Clear discards the index. The next query rebuilds it.
func (idx *Index) Clear() {
	idx.mu.Lock()
	idx.snap = nil
	idx.builtAt = time.Time{}
	idx.mu.Unlock()
}

// Stats returns the verse and book counts of the index.
func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.snap == nil {
		return Stats{}
	}
	builtAt := idx.builtAt
	return Stats{
		TotalVerses: len(idx.snap.entries),
		TotalBooks:  idx.snap.books,
		IndexBuilt:  true,
		Fingerprint: idx.snap.fingerprint,
		BuiltAt:     &builtAt,
	}
}

// Entries returns the indexed verses in corpus order. The returned slice
// must not be modified.
func (idx *Index) Entries() []Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if idx.snap == nil {
		return nil
	}
	return idx.snap.entries
}

func (idx *Index) current() *snapshot {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.snap
}

// load must be called with buildMu held.
func (idx *Index) load(ctx context.Context) error {
	if idx.loader == nil {
		return errors.NewCorpus("", errors.ErrCorpusUnavailable)
	}
	c, err := idx.loader.Load(ctx)
	if err != nil {
		var ce *errors.CorpusError
		if errors.As(err, &ce) {
			return err
		}
		return errors.NewCorpus("", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	snap := buildSnapshot(c, idx.registry, idx.workers)

	idx.mu.Lock()
	idx.snap = snap
	idx.builtAt = time.Now()
	idx.mu.Unlock()
	return nil
}

func buildSnapshot(c *corpus.Corpus, registry *books.Registry, workers int) *snapshot {
	snap := &snapshot{fingerprint: corpus.Fingerprint(c)}
	if c == nil || len(c.Books) == 0 {
		snap.entries = []Entry{}
		return snap
	}

	perBook := workerpool.Map(workers, c.Books, func(b *corpus.Book) []Entry {
		return indexBook(b, registry)
	})

	total := 0
	for _, entries := range perBook {
		total += len(entries)
	}
	snap.entries = make([]Entry, 0, total)
	seen := make(map[string]struct{})
	for _, entries := range perBook {
		for _, e := range entries {
			seen[e.BookID] = struct{}{}
		}
		snap.entries = append(snap.entries, entries...)
	}
	snap.books = len(seen)
	return snap
}

func indexBook(b *corpus.Book, registry *books.Registry) []Entry {
	if b == nil {
		return nil
	}
	id := b.ID
	if id == "" {
		id = books.Slug(b.Name)
	}
	group := b.Group
	if group == "" {
		group = registryGroup(registry, b.Name, id)
	}

	var entries []Entry
	for ci, ch := range b.Chapters {
		for _, v := range ch {
			entries = append(entries, Entry{
				Book:    b.Name,
				BookID:  id,
				Group:   group,
				Chapter: ci + 1,
				Verse:   v.V,
				Text:    v.T,
				Tokens:  Tokenize(v.T),
				lower:   strings.ToLower(v.T),
			})
		}
	}
	return entries
}

// registryGroup looks a book up by name, then by id. Books the registry
// does not know are canon.
func registryGroup(registry *books.Registry, name, id string) books.Group {
	if registry != nil {
		if rec, ok := registry.Lookup(name); ok {
			return rec.Group
		}
		if rec, ok := registry.ByID(id); ok {
			return rec.Group
		}
	}
	return books.GroupCanon
}
