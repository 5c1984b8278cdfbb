// Package books provides the static registry of Bible books and the alias
// resolver that maps any accepted spelling of a book to its canonical name.
//
// The registry covers the 66 books of the Protestant canon plus the
// Apocrypha and a selection of Pseudepigrapha. It is built once at package
// initialization and is immutable afterwards, so it is safe for concurrent use.
package books

import (
	"fmt"
	"sort"
	"strings"
)

// Group is the corpus partition a book belongs to.
type Group string

// Book groups.
const (
	GroupCanon          Group = "canon"
	GroupApocrypha      Group = "apocrypha"
	GroupPseudepigrapha Group = "pseudepigrapha"
)

// Groups lists every book group in display order.
var Groups = []Group{GroupCanon, GroupApocrypha, GroupPseudepigrapha}

// Title returns the display form of the group ("Canon", "Apocrypha", ...).
func (g Group) Title() string {
	if g == "" {
		return ""
	}
	return strings.ToUpper(string(g[:1])) + string(g[1:])
}

// IsValid returns true if g is one of the known groups.
func (g Group) IsValid() bool {
	switch g {
	case GroupCanon, GroupApocrypha, GroupPseudepigrapha:
		return true
	}
	return false
}

// ParseGroup parses a group name case-insensitively.
func ParseGroup(s string) (Group, bool) {
	g := Group(strings.ToLower(strings.TrimSpace(s)))
	return g, g.IsValid()
}

// Book is a registry record for a single book.
type Book struct {
	// ID is the lowercase slug (e.g., "genesis", "1-corinthians").
	ID string `json:"id"`

	// Name is the canonical, human-readable book name.
	Name string `json:"name"`

	// Group is the corpus partition the book belongs to.
	Group Group `json:"group"`

	// Testament is "OT" or "NT" for canonical books and empty otherwise.
	Testament string `json:"testament,omitempty"`

	// Order is the canonical display order (1-based).
	Order int `json:"order"`

	// Aliases lists accepted abbreviations and alternate spellings.
	Aliases []string `json:"aliases"`
}

// Registry resolves book names and aliases to registry records.
type Registry struct {
	books []*Book
	byKey map[string]*Book
	byID  map[string]*Book
}

// NewRegistry builds a registry from the given book records.
// Every canonical name and alias must normalize to a distinct key,
// except when both belong to the same book.
func NewRegistry(records []Book) (*Registry, error) {
	r := &Registry{
		books: make([]*Book, 0, len(records)),
		byKey: make(map[string]*Book),
		byID:  make(map[string]*Book, len(records)),
	}

	for i := range records {
		b := records[i]
		b.Aliases = append([]string(nil), b.Aliases...)
		if b.Name == "" {
			return nil, fmt.Errorf("book %d has no canonical name", i)
		}
		if b.ID == "" {
			b.ID = Slug(b.Name)
		}
		if _, dup := r.byID[b.ID]; dup {
			return nil, fmt.Errorf("duplicate book id %q", b.ID)
		}
		book := &b
		r.byID[b.ID] = book
		r.books = append(r.books, book)

		for _, name := range append([]string{b.Name}, b.Aliases...) {
			key := normalizeKey(name)
			if key == "" {
				return nil, fmt.Errorf("book %q has an empty alias", b.Name)
			}
			if err := r.addKey(key, book); err != nil {
				return nil, err
			}
			// "1 Cor" is also accepted as "1Cor".
			if compact := strings.ReplaceAll(key, " ", ""); compact != key && startsWithDigit(compact) {
				if err := r.addKey(compact, book); err != nil {
					return nil, err
				}
			}
		}
	}

	sort.SliceStable(r.books, func(i, j int) bool {
		return r.books[i].Order < r.books[j].Order
	})

	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on error.
func MustNewRegistry(records []Book) *Registry {
	r, err := NewRegistry(records)
	if err != nil {
		panic(fmt.Sprintf("books: %v", err))
	}
	return r
}

func (r *Registry) addKey(key string, book *Book) error {
	if existing, ok := r.byKey[key]; ok && existing != book {
		return fmt.Errorf("alias %q maps to both %q and %q", key, existing.Name, book.Name)
	}
	r.byKey[key] = book
	return nil
}

// Lookup returns the registry record for any accepted spelling of a book.
func (r *Registry) Lookup(input string) (*Book, bool) {
	key := normalizeKey(input)
	if key == "" {
		return nil, false
	}
	b, ok := r.byKey[key]
	return b, ok
}

// Resolve returns the canonical name for any accepted spelling of a book.
// Lookup is case-insensitive and ignores surrounding whitespace.
func (r *Registry) Resolve(input string) (string, bool) {
	b, ok := r.Lookup(input)
	if !ok {
		return "", false
	}
	return b.Name, true
}

// IsValid returns true if input resolves to a book.
func (r *Registry) IsValid(input string) bool {
	_, ok := r.Lookup(input)
	return ok
}

// AliasesFor returns the registered aliases of a canonical book name,
// or an empty slice if the name is unknown.
func (r *Registry) AliasesFor(canonical string) []string {
	b, ok := r.Lookup(canonical)
	if !ok || !strings.EqualFold(b.Name, strings.TrimSpace(canonical)) {
		return []string{}
	}
	return append([]string{}, b.Aliases...)
}

// ByID returns the book with the given slug.
func (r *Registry) ByID(id string) (*Book, bool) {
	b, ok := r.byID[strings.ToLower(strings.TrimSpace(id))]
	return b, ok
}

// All returns every book in canonical order.
func (r *Registry) All() []*Book {
	return append([]*Book(nil), r.books...)
}

// InGroup returns the books of one group in canonical order.
func (r *Registry) InGroup(g Group) []*Book {
	var out []*Book
	for _, b := range r.books {
		if b.Group == g {
			out = append(out, b)
		}
	}
	return out
}

// Len returns the number of books in the registry.
func (r *Registry) Len() int {
	return len(r.books)
}

// Slug converts a book name into its lowercase id form.
func Slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// normalizeKey lowercases, trims, collapses inner whitespace and drops a
// single trailing period ("Gen." -> "gen").
func normalizeKey(s string) string {
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	s = strings.TrimSuffix(s, ".")
	return strings.TrimSpace(s)
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

var defaultRegistry = MustNewRegistry(registryData)

// Default returns the built-in registry.
func Default() *Registry {
	return defaultRegistry
}

// Resolve resolves input against the built-in registry.
func Resolve(input string) (string, bool) {
	return defaultRegistry.Resolve(input)
}

// AliasesFor returns aliases from the built-in registry.
func AliasesFor(canonical string) []string {
	return defaultRegistry.AliasesFor(canonical)
}

// IsValid reports whether input resolves against the built-in registry.
func IsValid(input string) bool {
	return defaultRegistry.IsValid(input)
}

// Lookup returns the built-in registry record for input.
func Lookup(input string) (*Book, bool) {
	return defaultRegistry.Lookup(input)
}
