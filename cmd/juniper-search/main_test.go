package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/JuniperSearch/core/corpus/corpustest"
	apperrors "github.com/FocuswithJustin/JuniperSearch/core/errors"
	"github.com/FocuswithJustin/JuniperSearch/core/search"
	"github.com/FocuswithJustin/JuniperSearch/core/sqlite"
	"github.com/FocuswithJustin/JuniperSearch/internal/config"
	"github.com/FocuswithJustin/JuniperSearch/internal/formats/jsoncorpus"
	"github.com/FocuswithJustin/JuniperSearch/internal/service"
	"github.com/FocuswithJustin/JuniperSearch/internal/source"
)

// writeFixture writes the mixed test corpus as JSON and returns its path.
func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mixed.json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := jsoncorpus.Write(f, corpustest.Mixed()); err != nil {
		t.Fatal(err)
	}
	return path
}

// run parses args and runs the selected command, returning its stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("juniper-search"),
		kong.Exit(func(int) { t.Fatalf("kong exited on %v", args) }),
	)
	if err != nil {
		t.Fatalf("kong.New: %v", err)
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		t.Fatalf("Parse(%v): %v", args, err)
	}
	var out bytes.Buffer
	cli.ctx = context.Background()
	cli.out = &out
	err = kctx.Run(&cli.Globals)
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "juniper-search version "+version+"\nsqlite driver: "+sqlite.Current().String()+"\n" {
		t.Errorf("version output = %q", out)
	}
}

func TestSearch(t *testing.T) {
	corpusPath := writeFixture(t)

	out, err := run(t, "--corpus", corpusPath, "search", "--json", "-n", "1", "God", "so", "loved")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var resp search.Response
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if resp.Query != "God so loved" || len(resp.Results) != 1 || resp.Results[0].Ref != "John 3:16" {
		t.Errorf("response = %+v", resp)
	}

	out, err = run(t, "--corpus", corpusPath, "search", "--scope", "canon", "beginning")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "Genesis 1:1") || strings.Contains(out, "<mark>") {
		t.Errorf("text output:\n%s", out)
	}
	if !strings.Contains(out, " matches") {
		t.Errorf("missing summary line:\n%s", out)
	}

	out, err = run(t, "--corpus", corpusPath, "search", "zzyzx")
	if err != nil || !strings.Contains(out, "No results found") {
		t.Errorf("no-match output = %q, err = %v", out, err)
	}
}

func TestSearchErrors(t *testing.T) {
	corpusPath := writeFixture(t)

	if _, err := run(t, "--corpus", corpusPath, "search", "--scope", "gnostic", "God"); !errors.Is(err, search.ErrInvalidScope) {
		t.Errorf("bad scope error = %v", err)
	}
	if _, err := run(t, "--corpus", filepath.Join(t.TempDir(), "missing.json"), "search", "God"); !errors.Is(err, apperrors.ErrCorpusUnavailable) {
		t.Errorf("missing corpus error = %v", err)
	}
	if _, err := run(t, "search", "God"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("no corpus error = %v", err)
	}
}

func TestRead(t *testing.T) {
	corpusPath := writeFixture(t)

	out, err := run(t, "--corpus", corpusPath, "read", "gen", "1:1-2")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || lines[0] != "Genesis 1:1-2" || !strings.HasPrefix(lines[1], "1:1 In the beginning") {
		t.Errorf("read output:\n%s", out)
	}

	if _, err := run(t, "--corpus", corpusPath, "read", "Romans", "8"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("missing passage error = %v", err)
	}
}

func TestRefParse(t *testing.T) {
	out, err := run(t, "ref", "parse", "Jn 3:16; Hezekiah 1, Gen 1:2-4")
	if err != nil {
		t.Fatalf("ref parse: %v", err)
	}
	for _, want := range []string{"John 3:16", "Genesis 1:2-4", "2-4", "rejected: Hezekiah 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, "ref", "parse", "--json", "1 cor 13")
	if err != nil {
		t.Fatal(err)
	}
	var parsed service.ParsedReferences
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(parsed.Formatted) != 1 || parsed.Formatted[0] != "1 Corinthians 13" {
		t.Errorf("parsed = %+v", parsed)
	}
}

func TestRefFormat(t *testing.T) {
	out, err := run(t, "ref", "format", "jn 3:16, ps 23")
	if err != nil {
		t.Fatal(err)
	}
	if out != "John 3:16\nPsalms 23\n" {
		t.Errorf("format output = %q", out)
	}

	out, err = run(t, "ref", "format", "jn 3:16; nowhere 1")
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
	if out != "John 3:16\n" {
		t.Errorf("partial output = %q", out)
	}
}

func TestRefBooks(t *testing.T) {
	out, err := run(t, "ref", "books", "--group", "canon", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var list []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 66 {
		t.Errorf("canon books = %d, want 66", len(list))
	}

	out, err = run(t, "ref", "books")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Genesis") || !strings.Contains(out, "ALIASES") {
		t.Errorf("table output:\n%s", out)
	}

	if _, err := run(t, "ref", "books", "--group", "gnostic"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("bad group error = %v", err)
	}
}

func TestStats(t *testing.T) {
	corpusPath := writeFixture(t)

	out, err := run(t, "--corpus", corpusPath, "stats", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var st service.Stats
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !st.IndexBuilt || st.TotalVerses != 11 || st.TotalBooks != 4 || st.Fingerprint == "" {
		t.Errorf("stats = %+v", st)
	}

	out, err = run(t, "--corpus", corpusPath, "stats")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Verses", "11", "Fingerprint", st.Fingerprint} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestImport(t *testing.T) {
	corpusPath := writeFixture(t)
	dir := t.TempDir()

	for _, name := range []string{"out.db", "out.json", "out.json.xz", "out.xml", "out.xml.xz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			out, err := run(t, "--corpus", corpusPath, "import", path)
			if err != nil {
				t.Fatalf("import: %v", err)
			}
			if !strings.Contains(out, "4 books, 11 verses") {
				t.Errorf("output = %q", out)
			}

			src, err := source.New(path)
			if err != nil {
				t.Fatal(err)
			}
			got, err := src.Load(context.Background())
			if err != nil {
				t.Fatalf("reload %s: %v", name, err)
			}
			verses := 0
			for _, b := range got.Books {
				for _, ch := range b.Chapters {
					verses += len(ch)
				}
			}
			if len(got.Books) != 4 || verses != 11 {
				t.Errorf("reloaded %d books, %d verses", len(got.Books), verses)
			}
		})
	}
}

func TestImportErrors(t *testing.T) {
	corpusPath := writeFixture(t)
	dir := t.TempDir()

	existing := filepath.Join(dir, "taken.json")
	if err := os.WriteFile(existing, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "--corpus", corpusPath, "import", existing); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("existing output error = %v", err)
	}
	if _, err := run(t, "--corpus", corpusPath, "import", "--force", existing); err != nil {
		t.Errorf("--force: %v", err)
	}

	for _, name := range []string{"out.txt", "out.db.xz"} {
		if _, err := run(t, "--corpus", corpusPath, "import", filepath.Join(dir, name)); !errors.Is(err, apperrors.ErrUnsupported) {
			t.Errorf("%s: error = %v, want ErrUnsupported", name, err)
		}
	}
}

func TestInitConfig(t *testing.T) {
	out, err := run(t, "--corpus", "kjv.db", "--log-level", "debug", "init-config")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("Parse: %v\n%s", err, out)
	}
	if cfg.Corpus != "kjv.db" || cfg.Log.Level != "debug" {
		t.Errorf("config = %+v", cfg)
	}
}
