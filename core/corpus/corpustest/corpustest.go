// Package corpustest provides small corpora for tests.
package corpustest

import (
	"fmt"

	"github.com/FocuswithJustin/JuniperSearch/core/books"
	"github.com/FocuswithJustin/JuniperSearch/core/corpus"
)

// John316 is the text of John 3:16 in the fixtures.
const John316 = "For God so loved the world, that he gave his only begotten Son, that whosoever believeth in him should not perish, but have everlasting life."

// Scenario returns Genesis 1:1-5, John 1:1-2 and John 3:16 (KJV).
// John chapter 2 is present but empty so that chapter 3 keeps its number.
func Scenario() *corpus.Corpus {
	return &corpus.Corpus{
		Title: "KJV sample",
		Books: []*corpus.Book{
			{
				ID:         "genesis",
				Name:       "Genesis",
				Group:      books.GroupCanon,
				OrderIndex: 1,
				Chapters: []corpus.Chapter{
					{
						{V: 1, T: "In the beginning God created the heaven and the earth."},
						{V: 2, T: "And the earth was without form, and void; and darkness was upon the face of the deep. And the Spirit of God moved upon the face of the waters."},
						{V: 3, T: "And God said, Let there be light: and there was light."},
						{V: 4, T: "And God saw the light, that it was good: and God divided the light from the darkness."},
						{V: 5, T: "And God called the light Day, and the darkness he called Night. And the evening and the morning were the first day."},
					},
				},
			},
			{
				ID:         "john",
				Name:       "John",
				Group:      books.GroupCanon,
				OrderIndex: 43,
				Chapters: []corpus.Chapter{
					{
						{V: 1, T: "In the beginning was the Word, and the Word was with God, and the Word was God."},
						{V: 2, T: "The same was in the beginning with God."},
					},
					{},
					{
						{V: 16, T: John316},
					},
				},
			},
		},
	}
}

// Mixed returns Scenario plus one Apocrypha and one Pseudepigrapha book.
func Mixed() *corpus.Corpus {
	c := Scenario()
	c.Books = append(c.Books,
		&corpus.Book{
			ID:         "tobit",
			Name:       "Tobit",
			Group:      books.GroupApocrypha,
			OrderIndex: 67,
			Chapters: []corpus.Chapter{
				{
					{V: 1, T: "The book of the words of Tobit, son of Tobiel, the son of Ananiel, of the tribe of Nephthali;"},
					{V: 3, T: "I Tobit have walked all the days of my life in the ways of truth and justice, and I did many almsdeeds to my brethren."},
				},
			},
		},
		&corpus.Book{
			ID:         "1-enoch",
			Name:       "1 Enoch",
			Group:      books.GroupPseudepigrapha,
			OrderIndex: 85,
			Chapters: []corpus.Chapter{
				{
					{V: 1, T: "The words of the blessing of Enoch, wherewith he blessed the elect and righteous, who will be living in the day of tribulation."},
				},
			},
		},
	)
	return c
}

// Empty returns a corpus with no books.
func Empty() *corpus.Corpus {
	return &corpus.Corpus{}
}

// Diff describes the first difference between got and want, comparing book
// ids, names, groups, chapter layout and verse content. It returns "" when
// they match.
func Diff(got, want *corpus.Corpus) string {
	if len(got.Books) != len(want.Books) {
		return fmt.Sprintf("got %d books, want %d", len(got.Books), len(want.Books))
	}
	for i, w := range want.Books {
		g := got.Books[i]
		if g.ID != w.ID || g.Name != w.Name || g.Group != w.Group {
			return fmt.Sprintf("book %d = %s/%s/%s, want %s/%s/%s", i, g.ID, g.Name, g.Group, w.ID, w.Name, w.Group)
		}
		if len(g.Chapters) != len(w.Chapters) {
			return fmt.Sprintf("%s: got %d chapters, want %d", w.Name, len(g.Chapters), len(w.Chapters))
		}
		for ci, wch := range w.Chapters {
			gch := g.Chapters[ci]
			if len(gch) != len(wch) {
				return fmt.Sprintf("%s %d: got %d verses, want %d", w.Name, ci+1, len(gch), len(wch))
			}
			for vi, wv := range wch {
				if gch[vi] != wv {
					return fmt.Sprintf("%s %d: verse %d = %+v, want %+v", w.Name, ci+1, vi, gch[vi], wv)
				}
			}
		}
	}
	return ""
}
