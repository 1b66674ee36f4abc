// Package htmltomarkdown renders extracted page HTML as Markdown so
// headings survive as chunk boundaries.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/passage"
)

// Ensure Converter implements passage.Converter at compile time.
var _ passage.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv   *converter.Converter
	domain string
}

// Option configures a Converter.
type Option func(*Converter)

// WithDomain resolves relative links and images against domain,
// e.g. "https://help.example.com".
func WithDomain(domain string) Option {
	return func(c *Converter) {
		c.domain = domain
	}
}

// NewConverter creates a new Converter.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
				strikethrough.NewStrikethroughPlugin(),
			),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", passage.Errorf(passage.EINVALID, "empty HTML input")
	}

	var convOpts []converter.ConvertOptionFunc
	if c.domain != "" {
		convOpts = append(convOpts, converter.WithDomain(c.domain))
	}

	md, err := c.conv.ConvertString(html, convOpts...)
	if err != nil {
		return "", passage.Errorf(passage.EINTERNAL, "convert HTML: %v", err)
	}
	return md, nil
}
