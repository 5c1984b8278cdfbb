// Package jsoncorpus reads and writes JSON corpora.
//
// Three layouts are accepted on input:
//
//   - native: {"title": ..., "books": [{"id", "name", "chapters": [[{"v", "t"}]]}]}
//     or a bare array of such books
//   - bible: {"meta": {...}, "books": [{"id", "name", "order", "chapters":
//     [{"number", "verses": [{"verse", "text"}]}]}]} or a flat "verses" list
//   - nested: {"Genesis": {"1": {"1": "In the beginning..."}}}
//
// Output is always the native layout.
package jsoncorpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/FocuswithJustin/JuniperSearch/core/books"
	"github.com/FocuswithJustin/JuniperSearch/core/corpus"
	apperrors "github.com/FocuswithJustin/JuniperSearch/core/errors"
)

const formatName = "JSON corpus"

// Meta is the header of the bible layout.
type Meta struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Language    string `json:"language,omitempty"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
}

// BibleVerse is one verse of the bible layout.
type BibleVerse struct {
	Book    string `json:"book,omitempty"`
	Chapter int    `json:"chapter,omitempty"`
	Verse   int    `json:"verse"`
	Text    string `json:"text"`
	ID      string `json:"id,omitempty"`
}

// BibleChapter is one chapter of the bible layout.
type BibleChapter struct {
	Number int          `json:"number"`
	Verses []BibleVerse `json:"verses"`
}

type rawBook struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Group      books.Group       `json:"group"`
	Aliases    []string          `json:"aliases"`
	OrderIndex int               `json:"orderIndex"`
	Order      int               `json:"order"`
	Chapters   []json.RawMessage `json:"chapters"`
}

type document struct {
	Title  string       `json:"title"`
	Meta   *Meta        `json:"meta"`
	Books  []rawBook    `json:"books"`
	Verses []BibleVerse `json:"verses"`
}

// Load decodes a corpus from r. Book metadata is taken as found; callers
// normally run corpus.Normalize afterwards.
func Load(r io.Reader) (*corpus.Corpus, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewIO("read", "", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, apperrors.NewParse(formatName, "", "empty document")
	}

	switch trimmed[0] {
	case '[':
		var raw []rawBook
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, parseErr(err)
		}
		return fromDocument(&document{Books: raw})
	case '{':
	default:
		return nil, apperrors.NewParse(formatName, "", fmt.Sprintf("unexpected %q at start of document", trimmed[0]))
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &keys); err != nil {
		return nil, parseErr(err)
	}
	_, hasBooks := keys["books"]
	_, hasVerses := keys["verses"]
	_, hasMeta := keys["meta"]
	_, hasTitle := keys["title"]
	if !hasBooks && !hasVerses && !hasMeta && !hasTitle && len(keys) > 0 {
		return loadNested(keys)
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, parseErr(err)
	}
	return fromDocument(&doc)
}

func parseErr(err error) error {
	return &apperrors.ParseError{Format: formatName, Message: err.Error(), Err: err}
}

func fromDocument(doc *document) (*corpus.Corpus, error) {
	c := &corpus.Corpus{Title: doc.Title, Books: make([]*corpus.Book, 0, len(doc.Books))}
	if c.Title == "" && doc.Meta != nil {
		c.Title = doc.Meta.Title
	}

	for i, rb := range doc.Books {
		b := &corpus.Book{
			ID:         rb.ID,
			Name:       rb.Name,
			Group:      rb.Group,
			Aliases:    rb.Aliases,
			OrderIndex: rb.OrderIndex,
		}
		if b.OrderIndex == 0 {
			b.OrderIndex = rb.Order
		}
		if b.Name == "" {
			b.Name = rb.ID
		}
		if b.Name == "" {
			return nil, apperrors.NewParse(formatName, "", fmt.Sprintf("book %d has no name or id", i+1))
		}
		for ci, raw := range rb.Chapters {
			if err := addChapter(b, ci, raw); err != nil {
				return nil, err
			}
		}
		c.Books = append(c.Books, b)
	}

	if len(doc.Books) == 0 && len(doc.Verses) > 0 {
		if err := addFlatVerses(c, doc.Verses); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// addChapter decodes the chapter at position ci. Native chapters are
// positional; bible chapters carry their own number.
func addChapter(b *corpus.Book, ci int, raw json.RawMessage) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		b.Chapters = append(b.Chapters, corpus.Chapter{})
		return nil
	}

	if raw[0] == '[' {
		var ch corpus.Chapter
		if err := json.Unmarshal(raw, &ch); err != nil {
			return parseErr(err)
		}
		b.Chapters = append(b.Chapters, numberVerses(ch))
		return nil
	}

	var bc BibleChapter
	if err := json.Unmarshal(raw, &bc); err != nil {
		return parseErr(err)
	}
	if bc.Number == 0 {
		bc.Number = ci + 1
	}
	ch := make(corpus.Chapter, 0, len(bc.Verses))
	for _, v := range bc.Verses {
		ch = append(ch, corpus.Verse{V: v.Verse, T: v.Text})
	}
	return place(b, bc.Number, numberVerses(ch))
}

// place stores ch as chapter number n, padding skipped chapters.
func place(b *corpus.Book, n int, ch corpus.Chapter) error {
	if n < 1 {
		return apperrors.NewParse(formatName, b.Name, fmt.Sprintf("invalid chapter number %d", n))
	}
	for len(b.Chapters) < n {
		b.Chapters = append(b.Chapters, corpus.Chapter{})
	}
	if len(b.Chapters[n-1]) > 0 {
		b.Chapters[n-1] = append(b.Chapters[n-1], ch...)
		return nil
	}
	b.Chapters[n-1] = ch
	return nil
}

// numberVerses assigns positional numbers to verses that lack one.
func numberVerses(ch corpus.Chapter) corpus.Chapter {
	for i := range ch {
		if ch[i].V == 0 {
			ch[i].V = i + 1
		}
	}
	return ch
}

func addFlatVerses(c *corpus.Corpus, verses []BibleVerse) error {
	byName := make(map[string]*corpus.Book)
	for _, v := range verses {
		if v.Book == "" {
			return apperrors.NewParse(formatName, v.ID, "verse has no book")
		}
		b, ok := byName[v.Book]
		if !ok {
			b = &corpus.Book{Name: v.Book, OrderIndex: len(byName) + 1}
			byName[v.Book] = b
			c.Books = append(c.Books, b)
		}
		if err := place(b, v.Chapter, corpus.Chapter{{V: v.Verse, T: v.Text}}); err != nil {
			return err
		}
	}
	return nil
}

// loadNested decodes the book -> chapter -> verse -> text map layout.
// Books are ordered by registry order, unknown books after them by name.
func loadNested(keys map[string]json.RawMessage) (*corpus.Corpus, error) {
	registry := books.Default()
	names := make([]string, 0, len(keys))
	for name := range keys {
		names = append(names, name)
	}
	order := func(name string) int {
		if rec, ok := registry.Lookup(name); ok {
			return rec.Order
		}
		return registry.Len() + 1
	}
	sort.Slice(names, func(i, j int) bool {
		oi, oj := order(names[i]), order(names[j])
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})

	c := &corpus.Corpus{Books: make([]*corpus.Book, 0, len(names))}
	for _, name := range names {
		var chapters map[string]map[string]string
		if err := json.Unmarshal(keys[name], &chapters); err != nil {
			return nil, &apperrors.ParseError{Format: formatName, Input: name, Message: err.Error(), Err: err}
		}
		b := &corpus.Book{Name: name}
		for _, cn := range sortedNumbers(chapters) {
			verses := chapters[strconv.Itoa(cn)]
			ch := make(corpus.Chapter, 0, len(verses))
			for _, vn := range sortedNumbers(verses) {
				ch = append(ch, corpus.Verse{V: vn, T: verses[strconv.Itoa(vn)]})
			}
			if err := place(b, cn, ch); err != nil {
				return nil, err
			}
		}
		c.Books = append(c.Books, b)
	}
	return c, nil
}

// sortedNumbers returns the numeric keys of m in ascending order. Keys
// that are not numbers are skipped.
func sortedNumbers[V any](m map[string]V) []int {
	nums := make([]int, 0, len(m))
	for k := range m {
		if n, err := strconv.Atoi(k); err == nil && n > 0 {
			nums = append(nums, n)
		}
	}
	sort.Ints(nums)
	return nums
}

// Write encodes c in the native layout.
func Write(w io.Writer, c *corpus.Corpus) error {
	if c == nil {
		c = &corpus.Corpus{}
	}
	out := *c
	if out.Books == nil {
		out.Books = []*corpus.Book{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("failed to encode corpus: %w", err)
	}
	return nil
}
