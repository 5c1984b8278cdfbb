package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/JuniperSearch/core/books"
	"github.com/FocuswithJustin/JuniperSearch/core/corpus"
	apperrors "github.com/FocuswithJustin/JuniperSearch/core/errors"
	"github.com/FocuswithJustin/JuniperSearch/core/search"
	"github.com/FocuswithJustin/JuniperSearch/core/sqlite"
	"github.com/FocuswithJustin/JuniperSearch/internal/api"
	"github.com/FocuswithJustin/JuniperSearch/internal/formats/jsoncorpus"
	sqlitecorpus "github.com/FocuswithJustin/JuniperSearch/internal/formats/sqlite"
	"github.com/FocuswithJustin/JuniperSearch/internal/formats/zefania"
	"github.com/FocuswithJustin/JuniperSearch/internal/mcpserver"
	"github.com/FocuswithJustin/JuniperSearch/internal/service"
	"github.com/FocuswithJustin/JuniperSearch/internal/tui"
	"github.com/FocuswithJustin/JuniperSearch/internal/validation"
)

var (
	refStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa"))
	matchStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#cba6f7"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c7086"))
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ServeCmd starts the HTTP API server.
type ServeCmd struct {
	Port int  `help:"HTTP server port (overrides config)"`
	Warm bool `help:"Build the index before accepting requests"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := g.setup(false)
	if err != nil {
		return err
	}
	svc, err := g.service(cfg)
	if err != nil {
		return err
	}
	if c.Warm {
		if err := svc.Build(g.ctx); err != nil {
			return err
		}
	}

	apiCfg := api.DefaultConfig()
	apiCfg.Port = cfg.Server.Port
	if c.Port != 0 {
		apiCfg.Port = c.Port
	}
	apiCfg.AllowedOrigins = cfg.Server.AllowedOrigins
	apiCfg.RateLimitRequests = cfg.Server.RateLimit
	apiCfg.RateLimitBurst = cfg.Server.RateLimitBurst
	if cfg.Server.APIKey != "" {
		apiCfg.Auth = api.AuthConfig{Enabled: true, APIKey: cfg.Server.APIKey}
	}

	srv, err := api.New(svc, apiCfg)
	if err != nil {
		return err
	}
	defer srv.Close()
	return srv.ListenAndServe(g.ctx)
}

// SearchCmd runs one query and prints the ranked verses.
type SearchCmd struct {
	Query  []string `arg:"" required:"" help:"Words or phrase to search for"`
	Scope  string   `short:"s" help:"Book group: all, canon, apocrypha, pseudepigrapha" default:"all"`
	Book   string   `short:"b" help:"Restrict to one book (name, id or alias)"`
	Limit  int      `short:"n" help:"Maximum results (default from config)"`
	Offset int      `help:"Results to skip"`
	JSON   bool     `name:"json" help:"Print the raw response as JSON"`
}

func (c *SearchCmd) Run(g *Globals) error {
	cfg, err := g.setup(true)
	if err != nil {
		return err
	}
	svc, err := g.service(cfg)
	if err != nil {
		return err
	}
	scope, err := search.ParseScope(c.Scope)
	if err != nil {
		return err
	}

	query := strings.Join(c.Query, " ")
	resp, err := svc.Search(g.ctx, query, search.Options{
		Scope:  scope,
		Book:   c.Book,
		Limit:  c.Limit,
		Offset: c.Offset,
	})
	if err != nil {
		return err
	}
	if c.JSON {
		return writeJSON(g.out, resp)
	}

	if resp.Total == 0 {
		fmt.Fprintf(g.out, "No results found for %q\n", query)
		return nil
	}
	pre, post := svc.Config().HighlightPre, svc.Config().HighlightPost
	for _, r := range resp.Results {
		fmt.Fprintf(g.out, "%s  %s\n", refStyle.Render(r.Ref), tui.Highlight(r.Snippet, pre, post, lipgloss.NewStyle(), matchStyle))
	}
	if len(resp.Results) > 0 {
		fmt.Fprintln(g.out, dimStyle.Render(fmt.Sprintf("\n%d-%d of %s matches",
			resp.Offset+1, resp.Offset+len(resp.Results), humanize.Comma(int64(resp.Total)))))
	}
	return nil
}

// ReadCmd prints the verses of one reference.
type ReadCmd struct {
	Reference []string `arg:"" required:"" help:"Reference, e.g. John 3:16-18"`
}

func (c *ReadCmd) Run(g *Globals) error {
	cfg, err := g.setup(true)
	if err != nil {
		return err
	}
	svc, err := g.service(cfg)
	if err != nil {
		return err
	}
	p, err := svc.Passage(g.ctx, strings.Join(c.Reference, " "))
	if err != nil {
		return err
	}
	if len(p.Verses) == 0 {
		return apperrors.NewNotFound("passage", p.Formatted)
	}
	fmt.Fprintln(g.out, refStyle.Render(p.Formatted))
	for _, v := range p.Verses {
		fmt.Fprintf(g.out, "%s %s\n", dimStyle.Render(fmt.Sprintf("%d:%d", v.Chapter, v.Verse)), v.Text)
	}
	return nil
}

// RefParseCmd parses a reference list.
type RefParseCmd struct {
	Text []string `arg:"" required:"" help:"References separated by ';' or ','"`
	JSON bool     `name:"json" help:"Print JSON"`
}

func (c *RefParseCmd) Run(g *Globals) error {
	if _, err := g.setup(true); err != nil {
		return err
	}
	svc := parserService()
	parsed := svc.ParseReferences(strings.Join(c.Text, " "))
	if c.JSON {
		return writeJSON(g.out, parsed)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("REFERENCE", "BOOK", "CHAPTER", "VERSES")
	for i, r := range parsed.References {
		verses := "-"
		switch {
		case r.IsRange():
			verses = fmt.Sprintf("%d-%d", *r.Verse, *r.EndVerse)
		case r.HasVerse():
			verses = fmt.Sprint(*r.Verse)
		}
		t.Row(parsed.Formatted[i], r.Book, fmt.Sprint(r.Chapter), verses)
	}
	if len(parsed.References) > 0 {
		fmt.Fprintln(g.out, t.String())
	}
	for _, s := range parsed.Rejected {
		fmt.Fprintf(g.out, "rejected: %s\n", s)
	}
	return nil
}

// RefFormatCmd prints each reference in canonical form.
type RefFormatCmd struct {
	Text []string `arg:"" required:"" help:"References separated by ';' or ','"`
}

func (c *RefFormatCmd) Run(g *Globals) error {
	if _, err := g.setup(true); err != nil {
		return err
	}
	svc := parserService()
	parsed := svc.ParseReferences(strings.Join(c.Text, " "))
	for _, f := range parsed.Formatted {
		fmt.Fprintln(g.out, f)
	}
	if len(parsed.Rejected) > 0 {
		return apperrors.NewValidation("reference", "could not parse: "+strings.Join(parsed.Rejected, ", "))
	}
	return nil
}

// RefBooksCmd lists the book registry.
type RefBooksCmd struct {
	Group string `short:"g" help:"Only books of this group: canon, apocrypha, pseudepigrapha"`
	JSON  bool   `name:"json" help:"Print JSON"`
}

func (c *RefBooksCmd) Run(g *Globals) error {
	if _, err := g.setup(true); err != nil {
		return err
	}
	var group books.Group
	if c.Group != "" {
		var ok bool
		if group, ok = books.ParseGroup(c.Group); !ok {
			return apperrors.NewValidation("group", fmt.Sprintf("unknown group %q", c.Group))
		}
	}
	svc := parserService()
	list := svc.Books(group)
	if c.JSON {
		return writeJSON(g.out, list)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "GROUP", "ALIASES")
	for _, b := range list {
		t.Row(b.ID, b.Name, b.Group.Title(), strings.Join(b.Aliases, ", "))
	}
	fmt.Fprintln(g.out, t.String())
	fmt.Fprintln(g.out, dimStyle.Render(fmt.Sprintf("%d books", len(list))))
	return nil
}

// StatsCmd builds the index and prints its statistics.
type StatsCmd struct {
	JSON bool `name:"json" help:"Print JSON"`
}

func (c *StatsCmd) Run(g *Globals) error {
	cfg, err := g.setup(true)
	if err != nil {
		return err
	}
	svc, err := g.service(cfg)
	if err != nil {
		return err
	}
	start := time.Now()
	if err := svc.Build(g.ctx); err != nil {
		return err
	}
	elapsed := time.Since(start)
	st := svc.Stats()
	if c.JSON {
		return writeJSON(g.out, st)
	}

	built := "-"
	if st.BuiltAt != nil {
		built = humanize.Time(*st.BuiltAt)
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Rows(
			[]string{"Source", st.Source},
			[]string{"Verses", humanize.Comma(int64(st.TotalVerses))},
			[]string{"Books", humanize.Comma(int64(st.TotalBooks))},
			[]string{"Fingerprint", st.Fingerprint},
			[]string{"Built", built},
			[]string{"Build time", elapsed.Round(time.Millisecond).String()},
		)
	fmt.Fprintln(g.out, t.String())
	return nil
}

// ImportCmd loads a corpus source and writes it out in another format.
// The output format follows the file extension; a trailing .xz compresses
// JSON and XML output.
type ImportCmd struct {
	Output string `arg:"" help:"Output file (.db, .sqlite, .json, .xml, optionally .xz)" type:"path"`
	Force  bool   `short:"f" help:"Overwrite an existing output file"`
}

func (c *ImportCmd) Run(g *Globals) error {
	cfg, err := g.setup(true)
	if err != nil {
		return err
	}
	if err := validation.ValidatePath(c.Output); err != nil {
		return apperrors.NewValidation("output", err.Error())
	}
	if _, err := os.Stat(c.Output); err == nil && !c.Force {
		return apperrors.NewValidation("output", c.Output+" exists (use --force)")
	}

	compress := validation.FileTypeFromExtension(c.Output) == validation.FileTypeXZ
	kind := validation.FileTypeFromExtension(validation.InnerExtension(c.Output))
	if kind == validation.FileTypeUnknown || kind == validation.FileTypeXZ ||
		(compress && kind == validation.FileTypeSQLite) {
		return apperrors.NewUnsupported("output format", c.Output)
	}

	src, err := newSource(cfg)
	if err != nil {
		return err
	}
	loaded, err := src.Load(g.ctx)
	if err != nil {
		return err
	}

	if kind == validation.FileTypeSQLite {
		err = sqlitecorpus.WriteFile(g.ctx, c.Output, loaded)
	} else {
		err = writeCorpusFile(c.Output, kind, compress, loaded)
	}
	if err != nil {
		return err
	}

	verses := 0
	for _, b := range loaded.Books {
		for _, ch := range b.Chapters {
			verses += len(ch)
		}
	}
	fmt.Fprintf(g.out, "Wrote %s: %d books, %s verses\n", c.Output, len(loaded.Books), humanize.Comma(int64(verses)))
	return nil
}

func writeCorpusFile(path string, kind validation.FileType, compress bool, c *corpus.Corpus) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.NewIO("create", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = apperrors.NewIO("close", path, cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	var w io.Writer = f
	var xw *xz.Writer
	if compress {
		if xw, err = xz.NewWriter(f); err != nil {
			return apperrors.NewIO("compress", path, err)
		}
		w = xw
	}

	switch kind {
	case validation.FileTypeJSON:
		err = jsoncorpus.Write(w, c)
	case validation.FileTypeXML:
		err = zefania.Write(w, c)
	default:
		err = apperrors.NewUnsupported("output format", string(kind))
	}
	if err != nil {
		return err
	}
	if xw != nil {
		if err := xw.Close(); err != nil {
			return apperrors.NewIO("compress", path, err)
		}
	}
	return nil
}

// InitConfigCmd prints the effective configuration.
type InitConfigCmd struct{}

func (c *InitConfigCmd) Run(g *Globals) error {
	cfg, err := g.config()
	if err != nil {
		return err
	}
	return cfg.Write(g.out)
}

// TUICmd starts the interactive terminal UI.
type TUICmd struct {
	PageSize int `help:"Results per page" default:"10"`
}

func (c *TUICmd) Run(g *Globals) error {
	cfg, err := g.setup(true)
	if err != nil {
		return err
	}
	svc, err := g.service(cfg)
	if err != nil {
		return err
	}
	return tui.Run(g.ctx, svc, tui.Options{
		PageSize:      c.PageSize,
		HighlightPre:  cfg.Search.HighlightPre,
		HighlightPost: cfg.Search.HighlightPost,
	})
}

// MCPCmd serves MCP tools on stdin/stdout.
type MCPCmd struct{}

func (c *MCPCmd) Run(g *Globals) error {
	cfg, err := g.setup(false)
	if err != nil {
		return err
	}
	svc, err := g.service(cfg)
	if err != nil {
		return err
	}
	return mcpserver.New(svc, version).ServeStdio()
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	fmt.Fprintf(g.out, "juniper-search version %s\n", version)
	fmt.Fprintf(g.out, "sqlite driver: %s\n", sqlite.Current())
	return nil
}

// parserService returns a service without a corpus, for commands that only
// use the book registry and the reference parser.
func parserService() *service.Service {
	return service.New(nil, service.DefaultConfig())
}
