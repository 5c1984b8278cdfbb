// Package corpus defines the verse corpus consumed by the search index and
// the Loader interface implemented by every corpus source.
//
// A corpus is read-only once loaded. Chapters are stored in order and the
// chapter number of a chapter is its 1-based position in Book.Chapters.
package corpus

import (
	"context"
	"encoding/hex"
	"strconv"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/JuniperSearch/core/books"
)

// Verse is a single verse of a chapter.
type Verse struct {
	// V is the 1-based verse number within its chapter.
	V int `json:"v"`

	// T is the raw verse text.
	T string `json:"t"`
}

// Chapter is the ordered list of verses of one chapter.
type Chapter []Verse

// Book is one book of the corpus.
type Book struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Group      books.Group `json:"group"`
	Chapters   []Chapter   `json:"chapters"`
	Aliases    []string    `json:"aliases,omitempty"`
	OrderIndex int         `json:"orderIndex"`
}

// Corpus is the full collection of books available to search.
type Corpus struct {
	Title string  `json:"title,omitempty"`
	Books []*Book `json:"books"`
}

// Loader supplies a corpus. Implementations may perform I/O and should
// honor ctx cancellation.
type Loader interface {
	Load(ctx context.Context) (*Corpus, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context) (*Corpus, error)

// Load calls f(ctx).
func (f LoaderFunc) Load(ctx context.Context) (*Corpus, error) {
	return f(ctx)
}

// Static returns a Loader that always yields c.
func Static(c *Corpus) Loader {
	return LoaderFunc(func(ctx context.Context) (*Corpus, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return c, nil
	})
}

// VerseCount returns the number of verses in the corpus.
func (c *Corpus) VerseCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, b := range c.Books {
		for _, ch := range b.Chapters {
			n += len(ch)
		}
	}
	return n
}

// Book returns the book with the given id, or nil.
func (c *Corpus) Book(id string) *Book {
	if c == nil {
		return nil
	}
	for _, b := range c.Books {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// Normalize fills missing book metadata (id, canonical name, group,
// aliases, order) from the registry. Books the registry does not know keep
// their own values, with the id derived from the name and the group
// defaulting to canon.
func Normalize(c *Corpus, registry *books.Registry) {
	if c == nil {
		return
	}
	if registry == nil {
		registry = books.Default()
	}

	for _, b := range c.Books {
		rec, ok := registry.Lookup(b.Name)
		if !ok && b.ID != "" {
			rec, ok = registry.ByID(b.ID)
		}
		if ok {
			b.Name = rec.Name
			if b.ID == "" {
				b.ID = rec.ID
			}
			if b.Group == "" {
				b.Group = rec.Group
			}
			if len(b.Aliases) == 0 {
				b.Aliases = append([]string(nil), rec.Aliases...)
			}
			if b.OrderIndex == 0 {
				b.OrderIndex = rec.Order
			}
			continue
		}

		if b.ID == "" {
			b.ID = books.Slug(b.Name)
		}
		if b.Group == "" {
			b.Group = books.GroupCanon
		}
	}
}

// Fingerprint returns a BLAKE3 digest of the corpus content. Two corpora
// with the same books, chapters and verse texts have the same fingerprint.
func Fingerprint(c *Corpus) string {
	h := blake3.New()
	if c != nil {
		for _, b := range c.Books {
			h.Write([]byte(b.ID))
			h.Write([]byte{0})
			for ci, ch := range b.Chapters {
				h.Write([]byte(strconv.Itoa(ci + 1)))
				h.Write([]byte{0})
				for _, v := range ch {
					h.Write([]byte(strconv.Itoa(v.V)))
					h.Write([]byte{0})
					h.Write([]byte(v.T))
					h.Write([]byte{0})
				}
			}
			h.Write([]byte{1})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
