package search

import (
	"context"

	"github.com/FocuswithJustin/JuniperSearch/core/ref"
)

// Lookup returns the indexed verses a reference points at, in corpus order:
// the whole chapter for a chapter reference, otherwise the verse or range.
// The index is built first if needed. An unknown passage yields no entries.
func (idx *Index) Lookup(ctx context.Context, r ref.Reference) ([]Entry, error) {
	if err := idx.Build(ctx); err != nil {
		return nil, err
	}
	snap := idx.current()
	out := []Entry{}
	match := idx.bookMatcher(r.Book)
	if snap == nil || match == nil {
		return out, nil
	}

	lo, hi := 0, int(^uint(0)>>1)
	if r.Verse != nil {
		lo, hi = *r.Verse, *r.Verse
		if r.EndVerse != nil {
			hi = *r.EndVerse
		}
	}
	for i := range snap.entries {
		e := &snap.entries[i]
		if e.Chapter != r.Chapter || e.Verse < lo || e.Verse > hi || !match(e) {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}
