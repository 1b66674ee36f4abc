package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/passage"
	passagefs "github.com/fwojciec/passage/fs"
	"github.com/fwojciec/passage/goquery"
	"github.com/fwojciec/passage/htmltomarkdown"
	passagehttp "github.com/fwojciec/passage/http"
	"github.com/fwojciec/passage/retrieve"
	pslog "github.com/fwojciec/passage/slog"
	"github.com/fwojciec/passage/sqlite"
	"github.com/fwojciec/passage/trafilatura"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// ConfigPaths are read, in order, for flag defaults. Flags and environment
// variables take precedence over them.
var ConfigPaths = []string{"passage.yaml", "~/.config/passage/config.yaml"}

// Main represents the program.
type Main struct {
	// SQLite database used by SQLite service implementations. Opened only
	// by commands that need stored pages.
	DB *sqlite.DB

	// Corpus cache behind the search service, set for serve, query and mcp.
	Cache *retrieve.Cache

	// Services for end-to-end testing.
	PageStore     passage.PageStore
	SearchService passage.SearchService
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("passage"),
		kong.Description("Serve diverse, relevant passages from a scraped documentation feed."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Vars{"default_db": defaultDBPath()},
		kong.Configuration(YAML, ConfigPaths...),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'passage --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	deps.Logger = NewLogger(stderr, cli.LogLevel, cli.LogFormat)
	defer m.Close()

	switch cmd := strings.Fields(kongCtx.Command())[0]; cmd {
	case "list", "delete", "export":
		if err := m.openDB(cli.DB, stderr); err != nil {
			return err
		}
		deps.Pages = m.PageStore

	case "import":
		if cli.FeedURL == "" && cli.FeedFile == "" {
			return passage.Errorf(passage.EINVALID, "import needs --feed-url or --feed-file")
		}
		if err := m.openDB(cli.DB, stderr); err != nil {
			return err
		}
		deps.Pages = m.PageStore
		deps.Source = m.pageSource(cli, deps.Logger)

	case "serve", "query", "mcp":
		if cli.FeedURL == "" && cli.FeedFile == "" {
			if err := m.openDB(cli.DB, stderr); err != nil {
				return err
			}
		}
		if err := m.wireSearch(cli, deps); err != nil {
			return err
		}
	}

	return kongCtx.Run(deps)
}

func (m *Main) openDB(path string, stderr io.Writer) error {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	m.DB = sqlite.NewDB(path)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set PASSAGE_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", path, err)
	}
	if m.PageStore == nil {
		m.PageStore = sqlite.NewPageService(m.DB)
	}
	return nil
}

// pageSource picks the corpus source: a feed URL, then a feed file, then
// the stored collection.
func (m *Main) pageSource(cli *CLI, logger *slog.Logger) passage.PageSource {
	onSkip := func(err *passage.ParseError) {
		logger.Warn("skipped feed record", "line", err.Line, "reason", err.Reason)
	}

	var source passage.PageSource
	switch {
	case cli.FeedURL != "":
		source = passagehttp.NewFeedSource(cli.FeedURL,
			passagehttp.WithTimeout(cli.FetchTimeout),
			passagehttp.WithSkipFunc(onSkip),
			passagehttp.WithLogger(logger),
		)
	case cli.FeedFile != "":
		source = passagefs.NewFeedSource(cli.FeedFile, onSkip)
	default:
		source = sqlite.NewPageSource(m.PageStore, cli.Collection)
	}
	return pslog.NewLoggingPageSource(source, logger)
}

func (m *Main) wireSearch(cli *CLI, deps *Dependencies) error {
	if m.SearchService == nil {
		builder, err := NewBuilder(cli, deps.Logger)
		if err != nil {
			return err
		}

		m.Cache = retrieve.NewCache(m.pageSource(cli, deps.Logger), builder,
			retrieve.WithTTL(cli.TTL),
			retrieve.WithFetchTimeout(cli.FetchTimeout),
			retrieve.WithRetryInterval(cli.RetryInterval),
			retrieve.WithServeStale(cli.ServeStale),
			retrieve.WithLogger(deps.Logger),
		)
		m.SearchService = &retrieve.Searcher{
			Cache:  m.Cache,
			Window: cli.Window,
			Logger: deps.Logger,
		}
		deps.Status = m.Cache
		deps.Warm = func(ctx context.Context) error {
			_, err := m.Cache.EnsureFresh(ctx)
			return err
		}
	}
	deps.Search = pslog.NewLoggingSearchService(m.SearchService, deps.Logger)
	return nil
}

// NewBuilder wires the HTML normalisation pipeline and chunking limits.
func NewBuilder(cli *CLI, logger *slog.Logger) (*retrieve.Builder, error) {
	metadata, err := goquery.NewMetadataExtractor(cli.TitleSuffix...)
	if err != nil {
		return nil, err
	}

	noise := make(map[string]bool, len(cli.NoiseLine))
	for _, line := range cli.NoiseLine {
		noise[strings.TrimSpace(line)] = true
	}

	return &retrieve.Builder{
		Metadata:  metadata,
		Extractor: goquery.NewSanitizer(trafilatura.NewExtractor(), cli.ChromeSelector...),
		Converter: htmltomarkdown.NewConverter(),
		ChunkOptions: passage.ChunkOptions{
			FallbackSize: cli.FallbackSize,
		},
		NoiseLines:  noise,
		Concurrency: cli.Concurrency,
		Logger:      logger,
	}, nil
}

// NewLogger returns a logger writing to w. Unknown levels fall back to info.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "passage.db"
	}
	return filepath.Join(home, ".passage", "passage.db")
}
