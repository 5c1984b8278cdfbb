// Command juniper-search serves and queries an in-memory Bible search index.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/JuniperSearch/internal/config"
	"github.com/FocuswithJustin/JuniperSearch/internal/logging"
	"github.com/FocuswithJustin/JuniperSearch/internal/service"
	"github.com/FocuswithJustin/JuniperSearch/internal/source"
)

const version = "0.1.0"

// Globals are the flags shared by every command.
type Globals struct {
	ConfigFile string `name:"config" short:"c" help:"Config file (default: juniper-search.yaml)" type:"path"`
	Corpus     string `name:"corpus" help:"Corpus source: file path or ftp:// URL (overrides config)"`
	LogLevel   string `name:"log-level" help:"Log level (overrides config)" enum:",debug,info,warn,error" default:""`

	ctx context.Context `kong:"-"`
	out io.Writer       `kong:"-"`
	cfg *config.Config  `kong:"-"`
}

// CLI defines the command-line interface.
type CLI struct {
	Globals

	Serve      ServeCmd      `cmd:"" help:"Start the HTTP API server"`
	Search     SearchCmd     `cmd:"" help:"Search the corpus"`
	Read       ReadCmd       `cmd:"" help:"Print the verses of a reference"`
	Ref        RefGroup      `cmd:"" help:"Reference parsing and book aliases"`
	Stats      StatsCmd      `cmd:"" help:"Build the index and print statistics"`
	Import     ImportCmd     `cmd:"" help:"Convert a corpus source to SQLite, JSON or Zefania XML"`
	InitConfig InitConfigCmd `cmd:"" name:"init-config" help:"Print the effective configuration as YAML"`
	TUI        TUICmd        `cmd:"" name:"tui" help:"Interactive terminal search"`
	MCP        MCPCmd        `cmd:"" name:"mcp" help:"Serve MCP tools over stdio"`
	Version    VersionCmd    `cmd:"" help:"Print version information"`
}

// RefGroup contains reference commands.
type RefGroup struct {
	Parse  RefParseCmd  `cmd:"" help:"Parse references separated by ';' or ','"`
	Format RefFormatCmd `cmd:"" help:"Print references in canonical form"`
	Books  RefBooksCmd  `cmd:"" help:"List books and their aliases"`
}

// config loads the config file once and applies flag overrides.
func (g *Globals) config() (*config.Config, error) {
	if g.cfg != nil {
		return g.cfg, nil
	}
	cfg, err := config.Load(g.ConfigFile)
	if err != nil {
		return nil, err
	}
	if g.Corpus != "" {
		cfg.Corpus = g.Corpus
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	g.cfg = cfg
	return cfg, nil
}

// setup loads configuration and initializes logging on stderr. Unless a
// level was asked for, one-shot commands only log warnings.
func (g *Globals) setup(quiet bool) (*config.Config, error) {
	cfg, err := g.config()
	if err != nil {
		return nil, err
	}
	if quiet && g.LogLevel == "" {
		cfg.Log.Level = "warn"
	}
	logging.SetOutput(os.Stderr)
	cfg.InitLogging()
	return cfg, nil
}

// service builds the corpus source and the service over it.
func (g *Globals) service(cfg *config.Config) (*service.Service, error) {
	src, err := newSource(cfg)
	if err != nil {
		return nil, err
	}
	return service.New(src, service.Config{
		Source:         src.URI(),
		DefaultLimit:   cfg.Search.DefaultLimit,
		MaxLimit:       cfg.Search.MaxLimit,
		MaxQueryLength: cfg.Search.MaxQueryLength,
		CacheTTL:       cfg.Search.CacheTTL,
		CacheSize:      cfg.Search.CacheSize,
		HighlightPre:   cfg.Search.HighlightPre,
		HighlightPost:  cfg.Search.HighlightPost,
		Workers:        cfg.Search.Workers,
	}), nil
}

func newSource(cfg *config.Config) (*source.Source, error) {
	return source.New(cfg.Corpus, source.WithFTP(source.FTPOptions{
		Timeout:  cfg.FTP.Timeout,
		CacheDir: cfg.FTP.CacheDir,
		User:     cfg.FTP.User,
		Password: cfg.FTP.Password,
	}))
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("juniper-search"),
		kong.Description("Full-text search and reference lookup over Bible corpora"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cli.ctx = ctx
	cli.out = os.Stdout

	err := kctx.Run(&cli.Globals)
	kctx.FatalIfErrorf(err)
}
