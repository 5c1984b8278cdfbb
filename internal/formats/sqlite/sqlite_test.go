package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/FocuswithJustin/JuniperSearch/core/corpus"
	"github.com/FocuswithJustin/JuniperSearch/core/corpus/corpustest"
	apperrors "github.com/FocuswithJustin/JuniperSearch/core/errors"
	"github.com/FocuswithJustin/JuniperSearch/core/sqlite"
)

func TestWriteLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, c := range map[string]*corpus.Corpus{
		"scenario": corpustest.Scenario(),
		"mixed":    corpustest.Mixed(),
		"empty":    corpustest.Empty(),
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "corpus.db")
			if err := WriteFile(ctx, path, c); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			got, err := LoadFile(ctx, path)
			if err != nil {
				t.Fatalf("LoadFile: %v", err)
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

func TestWriteFileReplaces(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "corpus.db")
	if err := WriteFile(ctx, path, corpustest.Mixed()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := WriteFile(ctx, path, corpustest.Scenario()); err != nil {
		t.Fatalf("second WriteFile: %v", err)
	}
	got, err := LoadFile(ctx, path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(got.Books) != 2 {
		t.Errorf("got %d books after replace, want 2", len(got.Books))
	}
}

func TestTrailingEmptyChapterKept(t *testing.T) {
	ctx := context.Background()
	c := &corpus.Corpus{Books: []*corpus.Book{{
		ID:       "jude",
		Name:     "Jude",
		Chapters: []corpus.Chapter{{{V: 1, T: "Jude, the servant."}}, {}},
	}}}
	path := filepath.Join(t.TempDir(), "jude.db")
	if err := WriteFile(ctx, path, c); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := LoadFile(ctx, path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if n := len(got.Books[0].Chapters); n != 2 {
		t.Errorf("got %d chapters, want 2", n)
	}
}

// Databases written without the grp, aliases and chapter_count columns.
func TestLoadMinimalSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "minimal.db")
	db, err := sqlite.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE meta (id TEXT, title TEXT, language TEXT, description TEXT, version TEXT);
		CREATE TABLE books (id TEXT, name TEXT, book_order INTEGER);
		CREATE TABLE verses (id TEXT, book TEXT, chapter INTEGER, verse INTEGER, text TEXT);
		INSERT INTO meta VALUES ('kjv', 'King James', 'en', '', '1');
		INSERT INTO books VALUES ('John', 'John', 43), ('Gen', 'Genesis', 1);
		INSERT INTO verses VALUES
			('Gen.1.2', 'Gen', 1, 2, 'And the earth was without form.'),
			('Gen.1.1', 'Gen', 1, 1, 'In the beginning.'),
			('John.3.16', 'John', 3, 16, 'For God so loved the world.');
	`)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	got, err := Load(ctx, db)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Title != "King James" {
		t.Errorf("Title = %q", got.Title)
	}
	if len(got.Books) != 2 || got.Books[0].Name != "Genesis" || got.Books[1].Name != "John" {
		t.Fatalf("books = %+v", got.Books)
	}
	if v := got.Books[0].Chapters[0]; len(v) != 2 || v[0].V != 1 {
		t.Errorf("Genesis 1 = %+v", v)
	}
	if john := got.Books[1]; len(john.Chapters) != 3 || john.Chapters[2][0].V != 16 {
		t.Errorf("John = %+v", john.Chapters)
	}
	if got.Books[0].Group != "" {
		t.Errorf("Group = %q, want empty before normalization", got.Books[0].Group)
	}
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(ctx, filepath.Join(t.TempDir(), "nope.db"))
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error = %v, want ErrNotExist", err)
		}
	})

	t.Run("no books table", func(t *testing.T) {
		db, err := sqlite.Open(filepath.Join(t.TempDir(), "x.db"))
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()
		if _, err := db.Exec("CREATE TABLE other (x INTEGER)"); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(ctx, db); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("orphan verse", func(t *testing.T) {
		db, err := sqlite.Open(filepath.Join(t.TempDir(), "x.db"))
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()
		_, err = db.Exec(`
			CREATE TABLE books (id TEXT, name TEXT, book_order INTEGER);
			CREATE TABLE verses (id TEXT, book TEXT, chapter INTEGER, verse INTEGER, text TEXT);
			INSERT INTO verses VALUES ('x', 'Ghost', 1, 1, 'boo');
		`)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := Load(ctx, db); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("error = %v, want ErrInvalidInput", err)
		}
	})
}

func TestLoadCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.db")
	if err := WriteFile(context.Background(), path, corpustest.Scenario()); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := LoadFile(ctx, path); err == nil {
		t.Error("expected error for cancelled context")
	}
}
