package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/passage"
)

// Ensure Sanitizer implements passage.Extractor at compile time.
var _ passage.Extractor = (*Sanitizer)(nil)

// DefaultChromeSelectors match page chrome that content extractors tend to
// keep: global headers and navigation, scripts, and styles.
var DefaultChromeSelectors = []string{"header", "nav", "script", "style", "noscript"}

// Sanitizer removes elements matching a set of selectors before handing
// the document to the next Extractor. With no next Extractor the cleaned
// document body is returned as the content.
type Sanitizer struct {
	next      passage.Extractor
	selectors []string
}

// NewSanitizer creates a Sanitizer. With no selectors DefaultChromeSelectors
// are removed.
func NewSanitizer(next passage.Extractor, selectors ...string) *Sanitizer {
	if len(selectors) == 0 {
		selectors = DefaultChromeSelectors
	}
	return &Sanitizer{next: next, selectors: selectors}
}

// Extract strips chrome from html and extracts its main content.
func (s *Sanitizer) Extract(html string) (*passage.ExtractResult, error) {
	if strings.TrimSpace(html) == "" {
		return nil, passage.Errorf(passage.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, passage.Errorf(passage.EINVALID, "failed to parse HTML: %v", err)
	}
	for _, selector := range s.selectors {
		doc.Find(selector).Remove()
	}

	if s.next != nil {
		cleaned, err := goquery.OuterHtml(doc.Selection)
		if err != nil {
			return nil, passage.Errorf(passage.EINTERNAL, "render HTML: %v", err)
		}
		return s.next.Extract(cleaned)
	}

	body, err := doc.Find("body").Html()
	if err != nil {
		return nil, passage.Errorf(passage.EINTERNAL, "render HTML: %v", err)
	}
	return &passage.ExtractResult{
		Title:       strings.TrimSpace(doc.Find("title").First().Text()),
		ContentHTML: strings.TrimSpace(body),
	}, nil
}
