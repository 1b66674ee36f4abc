// Package trafilatura extracts the main content of help-center pages,
// dropping navigation, footers, and comment threads.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/passage"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements passage.Extractor at compile time.
var _ passage.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct {
	opts trafilatura.Options
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTables controls whether tables are kept in the extracted content.
// Tables are kept by default; settings pages often document options in them.
func WithTables(keep bool) Option {
	return func(e *Extractor) {
		e.opts.ExcludeTables = !keep
	}
}

// WithLinks controls whether anchors survive extraction.
func WithLinks(keep bool) Option {
	return func(e *Extractor) {
		e.opts.IncludeLinks = keep
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		opts: trafilatura.Options{
			EnableFallback:  true,
			ExcludeComments: true,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract processes raw HTML and returns the main content. ContentHTML is
// empty when no content block could be identified.
func (e *Extractor) Extract(rawHTML string) (*passage.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, passage.Errorf(passage.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, passage.Errorf(passage.EINTERNAL, "extract content: %v", err)
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, passage.Errorf(passage.EINTERNAL, "render content: %v", err)
		}
	}

	return &passage.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
