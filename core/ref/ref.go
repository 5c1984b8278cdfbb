// Package ref parses, formats and validates human-written Scripture
// references such as "Jn 3:16-18", "1 Corinthians 13:4" or "Psalms 23".
package ref

import (
	"strconv"
	"strings"

	"github.com/FocuswithJustin/JuniperSearch/core/books"
)

// Reference is a parsed pointer into Scripture.
type Reference struct {
	// Book is the canonical book name (e.g., "John", "1 Corinthians").
	Book string `json:"book"`

	// Chapter is the chapter number (1-based).
	Chapter int `json:"chapter"`

	// Verse is the verse number; nil for chapter-only references.
	Verse *int `json:"verse,omitempty"`

	// EndVerse is the last verse of a range; nil unless the reference is a range.
	EndVerse *int `json:"endVerse,omitempty"`
}

// New returns a chapter-only reference.
func New(book string, chapter int) Reference {
	return Reference{Book: book, Chapter: chapter}
}

// NewVerse returns a single-verse reference.
func NewVerse(book string, chapter, verse int) Reference {
	return Reference{Book: book, Chapter: chapter, Verse: &verse}
}

// NewRange returns a verse-range reference within one chapter.
func NewRange(book string, chapter, verse, endVerse int) Reference {
	return Reference{Book: book, Chapter: chapter, Verse: &verse, EndVerse: &endVerse}
}

// HasVerse returns true if the reference names a verse.
func (r Reference) HasVerse() bool {
	return r.Verse != nil
}

// IsRange returns true if this reference spans a verse range.
func (r Reference) IsRange() bool {
	return r.Verse != nil && r.EndVerse != nil
}

// Equal reports whether two references point at the same passage.
func (r Reference) Equal(other Reference) bool {
	return r.Book == other.Book &&
		r.Chapter == other.Chapter &&
		intPtrEqual(r.Verse, other.Verse) &&
		intPtrEqual(r.EndVerse, other.EndVerse)
}

// Contains returns true if this reference contains the other reference.
// A chapter-only reference contains every verse of that chapter.
func (r Reference) Contains(other Reference) bool {
	if r.Book != other.Book || r.Chapter != other.Chapter {
		return false
	}
	if r.Verse == nil {
		return true
	}
	if other.Verse == nil {
		return false
	}

	start, end := r.bounds()
	otherStart, otherEnd := other.bounds()
	return otherStart >= start && otherEnd <= end
}

func (r Reference) bounds() (int, int) {
	start := *r.Verse
	end := start
	if r.EndVerse != nil {
		end = *r.EndVerse
	}
	return start, end
}

// String returns the canonical rendering of the reference.
func (r Reference) String() string {
	return Format(r)
}

// Format renders a reference as "Book Chapter", "Book Chapter:Verse" or
// "Book Chapter:Verse-EndVerse". It is the left inverse of Parse for
// references written with the canonical book name.
func Format(r Reference) string {
	var sb strings.Builder
	sb.WriteString(r.Book)
	sb.WriteString(" ")
	sb.WriteString(strconv.Itoa(r.Chapter))

	if r.Verse != nil {
		sb.WriteString(":")
		sb.WriteString(strconv.Itoa(*r.Verse))

		if r.EndVerse != nil {
			sb.WriteString("-")
			sb.WriteString(strconv.Itoa(*r.EndVerse))
		}
	}

	return sb.String()
}

// IsValid returns true if the reference names a resolvable book and a
// chapter of at least 1. Verse 0 is accepted; a negative verse or an
// end verse before the start verse is not.
func IsValid(r Reference) bool {
	return DefaultParser.IsValid(r)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Parser parses references against a book registry.
type Parser struct {
	registry *books.Registry
}

// NewParser returns a parser backed by the given registry.
func NewParser(registry *books.Registry) *Parser {
	if registry == nil {
		registry = books.Default()
	}
	return &Parser{registry: registry}
}

// DefaultParser uses the built-in book registry.
var DefaultParser = NewParser(books.Default())

// IsValid applies the validity rules of the package-level IsValid using
// this parser's registry.
func (p *Parser) IsValid(r Reference) bool {
	if r.Book == "" || !p.registry.IsValid(r.Book) {
		return false
	}
	if r.Chapter < 1 {
		return false
	}
	if r.Verse != nil && *r.Verse < 0 {
		return false
	}
	if r.Verse != nil && r.EndVerse != nil && *r.EndVerse < *r.Verse {
		return false
	}
	return true
}
