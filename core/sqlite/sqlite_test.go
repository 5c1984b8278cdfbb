package sqlite

import (
	"path/filepath"
	"testing"
)

func TestCurrent(t *testing.T) {
	d := Current()
	if d.Name == "" || d.Package == "" {
		t.Fatalf("incomplete driver: %+v", d)
	}
	if d.Kind != "purego" && d.Kind != "cgo" {
		t.Errorf("Kind = %q", d.Kind)
	}
	t.Logf("SQLite driver: %s", d)
}

func TestOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE verses (id INTEGER PRIMARY KEY, text TEXT)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO verses (text) VALUES (?)`, "In the beginning"); err != nil {
		t.Fatalf("failed to insert: %v", err)
	}

	var text string
	if err := db.QueryRow(`SELECT text FROM verses WHERE id = 1`).Scan(&text); err != nil {
		t.Fatalf("failed to query: %v", err)
	}
	if text != "In the beginning" {
		t.Errorf("expected 'In the beginning', got %q", text)
	}
}

func TestOpenReadOnly(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ro.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE t (v TEXT)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	db.Close()

	ro, err := OpenReadOnly(dbPath)
	if err != nil {
		t.Fatalf("failed to open read-only: %v", err)
	}
	defer ro.Close()

	var n int
	if err := ro.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if _, err := ro.Exec(`INSERT INTO t (v) VALUES ('x')`); err == nil {
		t.Error("expected write to fail on read-only database")
	}
}

func TestReadOnlyDSN(t *testing.T) {
	tests := map[string]string{
		"kjv.db":                   "file:kjv.db?mode=ro",
		"file:kjv.db":              "file:kjv.db?mode=ro",
		"file:kjv.db?cache=shared": "file:kjv.db?cache=shared&mode=ro",
		"file:kjv.db?mode=rwc":     "file:kjv.db?mode=ro",
	}
	for in, want := range tests {
		if got := readOnlyDSN(in); got != want {
			t.Errorf("readOnlyDSN(%q) = %q, want %q", in, got, want)
		}
	}
}
