package ref

import (
	"regexp"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/FocuswithJustin/JuniperSearch/core/errors"
)

// locatorGrammar is the numeric tail of a reference.
// Examples: "3", "3:16", "3:16-18", "3.16"
type locatorGrammar struct {
	Chapter  int  `parser:"@Int"`
	Verse    *int `parser:"( ( \":\" | \".\" ) @Int"`
	EndVerse *int `parser:"  ( \"-\" @Int )? )?"`
}

// locatorLexer tokenizes the chapter/verse part of a reference.
var locatorLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[:.\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// locatorParser is the participle parser for reference tails.
var locatorParser = participle.MustBuild[locatorGrammar](
	participle.Lexer(locatorLexer),
	participle.Elide("Whitespace"),
)

var (
	// bookNumberSeparator matches a stray "," or ";" between a book name and a number.
	bookNumberSeparator = regexp.MustCompile(`([A-Za-z.])\s*[,;]+\s*(\d)`)

	// gluedBookNumber matches a book name glued to its chapter ("Jn3:16", "Gen.1.1").
	// Digits followed by a letter belong to the name itself ("T12P").
	gluedBookNumber = regexp.MustCompile(`([A-Za-z])\.?(\d+)([^A-Za-z0-9]|$)`)

	dashReplacer = strings.NewReplacer("–", "-", "—", "-", "−", "-")
)

// Normalize collapses runs of whitespace, turns a stray "," or ";" between
// the book name and the numbers into a space, and trims the ends.
func Normalize(text string) string {
	s := dashReplacer.Replace(text)
	s = bookNumberSeparator.ReplaceAllString(s, "$1 $2")
	return strings.Join(strings.Fields(s), " ")
}

// Parse parses a reference of the form "<book> <chapter>[:<verse>[-<endVerse>]]"
// using the built-in registry.
func Parse(text string) (*Reference, error) {
	return DefaultParser.Parse(text)
}

// ParseMultiple parses a ";" or "," separated list using the built-in registry.
func ParseMultiple(text string) ([]*Reference, []string) {
	return DefaultParser.ParseMultiple(text)
}

// ExtractBookName returns the canonical name of the book a reference string
// starts with, using the built-in registry.
func ExtractBookName(text string) (string, bool) {
	return DefaultParser.ExtractBookName(text)
}

// Parse parses a single reference. The book is matched by the longest
// prefix of words that resolves in the registry, so "1 Samuel 3" is read
// as the book "1 Samuel" rather than "1" followed by "Samuel".
//
// The returned error is a ValidationError for blank input, a NotFoundError
// when no book prefix resolves, and a ParseError for a malformed chapter or
// verse part.
func (p *Parser) Parse(text string) (*Reference, error) {
	words := p.words(text)
	if len(words) == 0 {
		return nil, errors.NewValidation("reference", "empty reference")
	}

	var lastErr error
	if _, ok := p.registry.Lookup(strings.Join(words, " ")); ok {
		lastErr = errors.NewParse("reference", text, "missing chapter")
	}

	for n := len(words) - 1; n >= 1; n-- {
		book, ok := p.registry.Lookup(strings.Join(words[:n], " "))
		if !ok {
			continue
		}

		loc, err := locatorParser.ParseString("", strings.Join(words[n:], " "))
		if err != nil {
			lastErr = errors.NewParse("reference", text, "malformed chapter or verse: "+err.Error())
			continue
		}

		r := &Reference{
			Book:     book.Name,
			Chapter:  loc.Chapter,
			Verse:    loc.Verse,
			EndVerse: loc.EndVerse,
		}
		if r.Chapter < 1 {
			lastErr = errors.NewParse("reference", text, "chapter must be at least 1")
			continue
		}
		if r.IsRange() && *r.EndVerse < *r.Verse {
			lastErr = errors.NewParse("reference", text, "range ends before it starts")
			continue
		}
		return r, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.NewNotFound("book", words[0])
}

// ParseMultiple splits text on ";" and "," and parses every candidate
// independently. Candidates that fail to parse are not fatal: they are
// returned, trimmed, in rejected. Blank candidates are ignored.
func (p *Parser) ParseMultiple(text string) (refs []*Reference, rejected []string) {
	refs = []*Reference{}
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ';' || r == ','
	})

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		r, err := p.Parse(part)
		if err != nil {
			rejected = append(rejected, part)
			continue
		}
		refs = append(refs, r)
	}

	return refs, rejected
}

// ExtractBookName returns the canonical name of the longest book prefix of
// text, or false if no prefix resolves.
func (p *Parser) ExtractBookName(text string) (string, bool) {
	words := p.words(text)
	for n := len(words); n >= 1; n-- {
		if book, ok := p.registry.Lookup(strings.Join(words[:n], " ")); ok {
			return book.Name, true
		}
	}
	return "", false
}

// words normalizes text and splits it into whitespace-separated words,
// separating a book name glued to its chapter number.
func (p *Parser) words(text string) []string {
	s := Normalize(text)
	s = gluedBookNumber.ReplaceAllString(s, "$1 $2$3")
	return strings.Fields(s)
}
