package passage

import "context"

// Format identifies the markup of a page body.
type Format string

// Body formats, named after the feed field the body was resolved from.
const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatText     Format = "text"
)

// Page represents one scraped documentation page from the feed.
// Pages are immutable for the lifetime of a corpus snapshot.
type Page struct {
	Title  string `json:"title"`
	URL    string `json:"url"` // Canonical; the only address returned to callers
	Body   string `json:"body"`
	Format Format `json:"format"`
}

// Validate returns an error if the page cannot be indexed.
func (p *Page) Validate() error {
	if p.URL == "" {
		return Errorf(EINVALID, "page url required")
	}
	if p.Body == "" {
		return Errorf(EINVALID, "page body required")
	}
	return nil
}

// PageSource loads the full set of pages that make up the corpus.
// Implementations hide whether pages come from an HTTP feed, a local
// file, or a database.
type PageSource interface {
	// LoadPages returns every usable page. Unusable records are skipped,
	// not returned as errors. Returns EUNAVAILABLE if the source cannot
	// be reached.
	LoadPages(ctx context.Context) ([]*Page, error)
}

// SkipFunc is called for every feed record that was skipped.
type SkipFunc func(err *ParseError)
