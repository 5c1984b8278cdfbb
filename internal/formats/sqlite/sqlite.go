// Package sqlite reads and writes SQLite corpora.
//
// Schema:
//
//	meta   (id TEXT PRIMARY KEY, title, language, description, version)
//	books  (id TEXT PRIMARY KEY, name, book_order, grp, aliases, chapter_count)
//	verses (id TEXT PRIMARY KEY, book, chapter, verse, text)
//
// Databases without the grp, aliases and chapter_count columns are read as
// well; the missing values are filled in by corpus.Normalize.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/FocuswithJustin/JuniperSearch/core/books"
	"github.com/FocuswithJustin/JuniperSearch/core/corpus"
	apperrors "github.com/FocuswithJustin/JuniperSearch/core/errors"
	"github.com/FocuswithJustin/JuniperSearch/core/sqlite"
)

const formatName = "SQLite corpus"

// aliasSep separates aliases in the books.aliases column.
const aliasSep = "|"

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	id TEXT PRIMARY KEY,
	title TEXT,
	language TEXT,
	description TEXT,
	version TEXT
);
CREATE TABLE IF NOT EXISTS books (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	book_order INTEGER,
	grp TEXT,
	aliases TEXT,
	chapter_count INTEGER
);
CREATE TABLE IF NOT EXISTS verses (
	id TEXT PRIMARY KEY,
	book TEXT NOT NULL,
	chapter INTEGER NOT NULL,
	verse INTEGER NOT NULL,
	text TEXT NOT NULL,
	FOREIGN KEY (book) REFERENCES books(id)
);
CREATE INDEX IF NOT EXISTS idx_verses_ref ON verses(book, chapter, verse);
`

// LoadFile opens the database at path read-only and loads its corpus.
func LoadFile(ctx context.Context, path string) (*corpus.Corpus, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.NewIO("open", path, err)
	}
	db, err := sqlite.OpenReadOnly(path)
	if err != nil {
		return nil, apperrors.NewIO("open", path, err)
	}
	defer db.Close()
	return Load(ctx, db)
}

// Load reads a corpus from db.
func Load(ctx context.Context, db *sql.DB) (*corpus.Corpus, error) {
	c := &corpus.Corpus{}

	var title sql.NullString
	err := db.QueryRowContext(ctx, "SELECT title FROM meta LIMIT 1").Scan(&title)
	if err != nil && !errors.Is(err, sql.ErrNoRows) && !isMissingTable(err) {
		return nil, queryErr(err)
	}
	c.Title = title.String

	cols, err := bookColumns(ctx, db)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, apperrors.NewParse(formatName, "", "no books table")
	}

	query := "SELECT id, name, COALESCE(book_order, 0)"
	for _, col := range []string{"grp", "aliases", "chapter_count"} {
		if cols[col] {
			query += ", " + col
		} else {
			query += ", NULL"
		}
	}
	query += " FROM books ORDER BY book_order, rowid"

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, queryErr(err)
	}
	byID := make(map[string]*corpus.Book)
	for rows.Next() {
		var (
			b            corpus.Book
			grp, aliases sql.NullString
			chapters     sql.NullInt64
		)
		if err := rows.Scan(&b.ID, &b.Name, &b.OrderIndex, &grp, &aliases, &chapters); err != nil {
			rows.Close()
			return nil, queryErr(err)
		}
		b.Group = books.Group(grp.String)
		if aliases.String != "" {
			b.Aliases = strings.Split(aliases.String, aliasSep)
		}
		if chapters.Valid && chapters.Int64 > 0 {
			b.Chapters = make([]corpus.Chapter, chapters.Int64)
			for i := range b.Chapters {
				b.Chapters[i] = corpus.Chapter{}
			}
		}
		bp := &b
		byID[b.ID] = bp
		c.Books = append(c.Books, bp)
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}

	rows, err = db.QueryContext(ctx, "SELECT book, chapter, verse, text FROM verses ORDER BY book, chapter, verse")
	if err != nil {
		return nil, queryErr(err)
	}
	for rows.Next() {
		var (
			bookID    string
			ch, verse int
			text      string
		)
		if err := rows.Scan(&bookID, &ch, &verse, &text); err != nil {
			rows.Close()
			return nil, queryErr(err)
		}
		b, ok := byID[bookID]
		if !ok {
			rows.Close()
			return nil, apperrors.NewParse(formatName, bookID, "verse references unknown book")
		}
		if ch < 1 {
			rows.Close()
			return nil, apperrors.NewParse(formatName, fmt.Sprintf("%s %d:%d", bookID, ch, verse), "invalid chapter number")
		}
		for len(b.Chapters) < ch {
			b.Chapters = append(b.Chapters, corpus.Chapter{})
		}
		b.Chapters[ch-1] = append(b.Chapters[ch-1], corpus.Verse{V: verse, T: text})
	}
	if err := closeRows(rows); err != nil {
		return nil, err
	}
	return c, ctx.Err()
}

func bookColumns(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM pragma_table_info('books')")
	if err != nil {
		return nil, queryErr(err)
	}
	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, queryErr(err)
		}
		cols[strings.ToLower(name)] = true
	}
	return cols, closeRows(rows)
}

func closeRows(rows *sql.Rows) error {
	err := rows.Err()
	if cerr := rows.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return queryErr(err)
	}
	return nil
}

func isMissingTable(err error) bool {
	return strings.Contains(err.Error(), "no such table")
}

func queryErr(err error) error {
	return &apperrors.ParseError{Format: formatName, Message: err.Error(), Err: err}
}

// WriteFile creates a new database at path holding c. An existing file is
// replaced.
func WriteFile(ctx context.Context, path string, c *corpus.Corpus) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperrors.NewIO("replace", path, err)
	}
	db, err := sqlite.Open(path)
	if err != nil {
		return apperrors.NewIO("create", path, err)
	}
	if err := Write(ctx, db, c); err != nil {
		db.Close()
		return err
	}
	if err := db.Close(); err != nil {
		return apperrors.NewIO("close", path, err)
	}
	return nil
}

// Write stores c in db inside one transaction, creating the schema first.
func Write(ctx context.Context, db *sql.DB, c *corpus.Corpus) error {
	if c == nil {
		c = &corpus.Corpus{}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO meta (id, title, language, description, version) VALUES (?, ?, '', '', '')",
		books.Slug(c.Title), c.Title); err != nil {
		return fmt.Errorf("failed to write meta: %w", err)
	}

	bookStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO books (id, name, book_order, grp, aliases, chapter_count) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer bookStmt.Close()

	verseStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO verses (id, book, chapter, verse, text) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer verseStmt.Close()

	for i, b := range c.Books {
		id := b.ID
		if id == "" {
			id = books.Slug(b.Name)
		}
		order := b.OrderIndex
		if order == 0 {
			order = i + 1
		}
		if _, err := bookStmt.ExecContext(ctx, id, b.Name, order, string(b.Group),
			strings.Join(b.Aliases, aliasSep), len(b.Chapters)); err != nil {
			return fmt.Errorf("failed to write book %s: %w", b.Name, err)
		}
		for ci, ch := range b.Chapters {
			for _, v := range ch {
				vid := fmt.Sprintf("%s.%d.%d", id, ci+1, v.V)
				if _, err := verseStmt.ExecContext(ctx, vid, id, ci+1, v.V, v.T); err != nil {
					return fmt.Errorf("failed to write verse %s: %w", vid, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
