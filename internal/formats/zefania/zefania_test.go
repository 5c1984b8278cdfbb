package zefania

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/FocuswithJustin/JuniperSearch/core/corpus"
	"github.com/FocuswithJustin/JuniperSearch/core/corpus/corpustest"
	apperrors "github.com/FocuswithJustin/JuniperSearch/core/errors"
)

const sample = `<?xml version="1.0" encoding="utf-8"?>
<XMLBIBLE biblename="KJV" type="x-bible">
  <INFORMATION>
    <title>King James Version</title>
  </INFORMATION>
  <BIBLEBOOK bnumber="1" bname="Genesis" bsname="Gen">
    <CHAPTER cnumber="1">
      <VERS vnumber="1">In the beginning God created the heaven and the earth.</VERS>
      <VERS vnumber="2">And the earth was without form, and void;<NOTE type="x-studynote">Heb. tohu</NOTE>
        and darkness was upon the face of the deep.</VERS>
    </CHAPTER>
  </BIBLEBOOK>
  <BIBLEBOOK bnumber="43">
    <CHAPTER cnumber="3">
      <VERS vnumber="16">For God so loved the world.</VERS>
    </CHAPTER>
  </BIBLEBOOK>
</XMLBIBLE>`

func TestLoad(t *testing.T) {
	c, err := Load(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Title != "King James Version" {
		t.Errorf("Title = %q", c.Title)
	}
	if len(c.Books) != 2 {
		t.Fatalf("got %d books, want 2", len(c.Books))
	}

	gen := c.Books[0]
	if gen.Name != "Genesis" || gen.OrderIndex != 1 {
		t.Errorf("book 0 = %s (%d)", gen.Name, gen.OrderIndex)
	}
	want := "And the earth was without form, and void; and darkness was upon the face of the deep."
	if got := gen.Chapters[0][1].T; got != want {
		t.Errorf("Genesis 1:2 = %q, want %q", got, want)
	}

	john := c.Books[1]
	if john.Name != "John" {
		t.Errorf("bnumber 43 resolved to %q, want John", john.Name)
	}
	if len(john.Chapters) != 3 || len(john.Chapters[1]) != 0 || john.Chapters[2][0].V != 16 {
		t.Errorf("John chapters = %+v", john.Chapters)
	}
}

func TestWriteLoadRoundTrip(t *testing.T) {
	for name, c := range map[string]*corpus.Corpus{
		"scenario": corpustest.Scenario(),
		"mixed":    corpustest.Mixed(),
	} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, c); err != nil {
				t.Fatalf("Write: %v", err)
			}
			got, err := Load(&buf)
			if err != nil {
				t.Fatalf("Load: %v\n%s", err, buf.String())
			}
			// Group and id are not part of the format.
			for i, b := range got.Books {
				b.ID = c.Books[i].ID
				b.Group = c.Books[i].Group
			}
			if d := corpustest.Diff(got, c); d != "" {
				t.Error(d)
			}
			if got.Title != c.Title {
				t.Errorf("Title = %q, want %q", got.Title, c.Title)
			}
		})
	}
}

func TestWriteEscapes(t *testing.T) {
	c := &corpus.Corpus{Books: []*corpus.Book{{
		Name:     "Psalms",
		Chapters: []corpus.Chapter{{{V: 1, T: `Praise <the> LORD & "sing"`}}},
	}}}
	var buf bytes.Buffer
	if err := Write(&buf, c); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Books[0].Chapters[0][0].T != `Praise <the> LORD & "sing"` {
		t.Errorf("text = %q", got.Books[0].Chapters[0][0].T)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", "<XMLBIBLE><BIBLEBOOK></XMLBIBLE>"},
		{"wrong root", "<osis></osis>"},
		{"entity", `<?xml version="1.0"?><!DOCTYPE x [<!ENTITY e SYSTEM "file:///etc/passwd">]><XMLBIBLE>&e;</XMLBIBLE>`},
		{"bad bnumber", `<XMLBIBLE><BIBLEBOOK bnumber="one" bname="Gen"/></XMLBIBLE>`},
		{"nameless book", `<XMLBIBLE><BIBLEBOOK/></XMLBIBLE>`},
		{"bad cnumber", `<XMLBIBLE><BIBLEBOOK bname="Gen"><CHAPTER cnumber="x"/></BIBLEBOOK></XMLBIBLE>`},
		{"bad vnumber", `<XMLBIBLE><BIBLEBOOK bname="Gen"><CHAPTER cnumber="1"><VERS vnumber="-2">x</VERS></CHAPTER></BIBLEBOOK></XMLBIBLE>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
}
