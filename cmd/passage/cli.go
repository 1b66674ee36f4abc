package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/passage"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Source passage.PageSource
	Pages  passage.PageStore
	Search passage.SearchService
	Status passage.StatusService

	// Warm loads the corpus ahead of the first query. May be nil.
	Warm func(ctx context.Context) error
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config kong.ConfigFlag `help:"Load flag defaults from a YAML file." env:"PASSAGE_CONFIG"`

	LogLevel  string `default:"info" enum:"debug,info,warn,error" env:"PASSAGE_LOG_LEVEL" help:"Log level (${enum})."`
	LogFormat string `default:"text" enum:"text,json" env:"PASSAGE_LOG_FORMAT" help:"Log format (${enum})."`

	SourceFlags `embed:"" group:"Corpus source"`
	CorpusFlags `embed:"" group:"Corpus tuning"`

	Serve  ServeCmd  `cmd:"" help:"Serve the search endpoint over HTTP"`
	Query  QueryCmd  `cmd:"" help:"Run one query against the corpus"`
	MCP    MCPCmd    `cmd:"" name:"mcp" help:"Serve the search tool over MCP stdio"`
	Import ImportCmd `cmd:"" help:"Store a feed as a collection in the database"`
	Export ExportCmd `cmd:"" help:"Write a stored collection as markdown files"`
	List   ListCmd   `cmd:"" help:"List stored collections"`
	Delete DeleteCmd `cmd:"" help:"Delete a stored collection"`
}

// SourceFlags select where pages come from. A feed URL wins over a feed
// file, which wins over the stored collection.
type SourceFlags struct {
	FeedURL    string `name:"feed-url" env:"PASSAGE_FEED_URL" help:"URL of the newline-delimited JSON feed."`
	FeedFile   string `name:"feed-file" type:"path" env:"PASSAGE_FEED_FILE" help:"Path of a newline-delimited JSON feed."`
	DB         string `name:"db" default:"${default_db}" env:"PASSAGE_DB" help:"SQLite database path."`
	Collection string `default:"default" env:"PASSAGE_COLLECTION" help:"Stored collection to serve, import into, or export."`
}

// CorpusFlags tune refresh and indexing.
type CorpusFlags struct {
	TTL            time.Duration `name:"ttl" default:"10m" env:"PASSAGE_TTL" help:"Corpus time to live."`
	FetchTimeout   time.Duration `default:"10s" env:"PASSAGE_FETCH_TIMEOUT" help:"Timeout of one corpus load."`
	RetryInterval  time.Duration `default:"30s" env:"PASSAGE_RETRY_INTERVAL" help:"Minimum wait between failed refresh attempts."`
	ServeStale     bool          `default:"true" negatable:"" env:"PASSAGE_SERVE_STALE" help:"Answer from the expired corpus while a refresh runs."`
	Window         int           `default:"200" env:"PASSAGE_WINDOW" help:"MMR candidate window."`
	FallbackSize   int           `default:"1200" env:"PASSAGE_FALLBACK_SIZE" help:"Characters kept when a page has no usable passages."`
	Concurrency    int           `default:"8" env:"PASSAGE_CONCURRENCY" help:"Pages chunked in parallel."`
	NoiseLine      []string      `name:"noise-line" env:"PASSAGE_NOISE_LINES" help:"Line dropped from converted HTML bodies (repeatable)."`
	TitleSuffix    []string      `name:"title-suffix" env:"PASSAGE_TITLE_SUFFIXES" help:"Regular expression removed from the end of HTML titles (repeatable)."`
	ChromeSelector []string      `name:"chrome-selector" env:"PASSAGE_CHROME_SELECTORS" help:"CSS selector of page chrome removed before extraction (repeatable)."`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr  string `default:":8080" env:"PASSAGE_ADDR" help:"Listen address."`
	Token string `env:"PASSAGE_TOKEN" help:"Access token required by /search and /mcp. Empty disables the check."`
	NoMCP bool   `name:"no-mcp" help:"Do not mount the MCP handler at /mcp."`
	Warm  bool   `default:"true" negatable:"" help:"Load the corpus before accepting queries."`
}

// QueryCmd is the "query" subcommand.
type QueryCmd struct {
	Query  string  `arg:"" help:"Question to find passages for."`
	TopK   int     `short:"k" default:"12" help:"Maximum number of passages."`
	Lambda float64 `short:"l" default:"0.5" help:"Relevance weight, 0 (diverse) to 1 (relevant only)."`
	JSON   bool    `help:"Print results as JSON."`
}

// MCPCmd is the "mcp" subcommand.
type MCPCmd struct{}

// ImportCmd is the "import" subcommand.
type ImportCmd struct{}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Dir string `arg:"" type:"path" help:"Directory the collection directory is created in."`
}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	Name  string `arg:"" help:"Collection name"`
	Force bool   `help:"Confirm deletion"`
}

// Describe names the selected corpus source.
func (f SourceFlags) Describe() string {
	switch {
	case f.FeedURL != "":
		return f.FeedURL
	case f.FeedFile != "":
		return f.FeedFile
	default:
		return "sqlite:" + f.Collection
	}
}
