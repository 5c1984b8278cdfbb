package search

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/FocuswithJustin/JuniperSearch/core/books"
	"github.com/FocuswithJustin/JuniperSearch/core/ref"
)

// Scoring weights.
const (
	tokenWeight       = 100.0
	exactPhraseBonus  = 50.0
	cancelCheckStride = 1024
)

// Result is one ranked verse.
type Result struct {
	Ref     string  `json:"ref"`
	Snippet string  `json:"snippet"`
	Book    string  `json:"book"`
	BookID  string  `json:"bookId"`
	Chapter int     `json:"chapter"`
	Verse   int     `json:"verse"`
	Text    string  `json:"text"`
	Score   float64 `json:"score"`
}

// Response is one page of ranked results.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
	Query   string   `json:"query"`
}

type scored struct {
	entry *Entry
	score float64
}

// Search ranks the indexed verses against query and returns one page of
// results. The index is built on first use. Total counts every matching
// verse before pagination.
func (idx *Index) Search(ctx context.Context, query string, opts Options) (*Response, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	if err := idx.Build(ctx); err != nil {
		return nil, err
	}

	resp := &Response{
		Results: []Result{},
		Limit:   opts.Limit,
		Offset:  opts.Offset,
		Query:   query,
	}

	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return resp, nil
	}
	phrase := strings.ToLower(query)

	snap := idx.current()
	if snap == nil {
		// Cleared between Build and here.
		return resp, nil
	}
	match := idx.bookMatcher(opts.Book)

	var hits []scored
	for i := range snap.entries {
		if i%cancelCheckStride == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		e := &snap.entries[i]
		if opts.Scope != ScopeAll && Scope(e.Group) != opts.Scope {
			continue
		}
		if match != nil && !match(e) {
			continue
		}

		n := matchCount(queryTokens, e.Tokens)
		if n == 0 {
			continue
		}
		score := float64(n) / float64(len(queryTokens)) * tokenWeight
		if strings.Contains(e.lower, phrase) {
			score += exactPhraseBonus
		}
		hits = append(hits, scored{entry: e, score: score})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	resp.Total = len(hits)
	if opts.Offset >= len(hits) {
		return resp, nil
	}
	end := len(hits)
	if opts.Limit < end-opts.Offset {
		end = opts.Offset + opts.Limit
	}
	page := hits[opts.Offset:end]

	re := literalPattern(query)
	resp.Results = make([]Result, 0, len(page))
	for _, h := range page {
		e := h.entry
		resp.Results = append(resp.Results, Result{
			Ref:     ref.Format(ref.NewVerse(e.Book, e.Chapter, e.Verse)),
			Snippet: snippet(e.Text, re, idx.highlightPre, idx.highlightPost),
			Book:    e.Book,
			BookID:  e.BookID,
			Chapter: e.Chapter,
			Verse:   e.Verse,
			Text:    e.Text,
			Score:   h.score,
		})
	}
	return resp, nil
}

// matchCount returns how many query tokens have a partial match among the
// entry tokens. A match is either token containing the other.
func matchCount(queryTokens, entryTokens []string) int {
	n := 0
	for _, qt := range queryTokens {
		for _, et := range entryTokens {
			if strings.Contains(et, qt) || strings.Contains(qt, et) {
				n++
				break
			}
		}
	}
	return n
}

// bookMatcher returns a filter for the given book id, name or alias, or nil
// when book is empty.
func (idx *Index) bookMatcher(book string) func(*Entry) bool {
	if book == "" {
		return nil
	}
	lower := strings.ToLower(book)
	var rec *books.Book
	if r, ok := idx.registry.Lookup(book); ok {
		rec = r
	}
	return func(e *Entry) bool {
		if e.BookID == lower || strings.EqualFold(e.Book, book) {
			return true
		}
		return rec != nil && (e.Book == rec.Name || e.BookID == rec.ID)
	}
}

// literalPattern matches the query as typed, surrounding blanks included.
func literalPattern(query string) *regexp.Regexp {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
}
