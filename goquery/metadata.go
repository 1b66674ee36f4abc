// Package goquery reads page metadata and strips site chrome from HTML
// using CSS selectors.
package goquery

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/passage"
)

// Ensure MetadataExtractor implements passage.MetadataExtractor at compile time.
var _ passage.MetadataExtractor = (*MetadataExtractor)(nil)

// titleSelectors lists where a page title is read from, in priority order.
var titleSelectors = []struct {
	selector string
	attr     string // Empty means the element's text
}{
	{selector: `meta[property="og:title"]`, attr: "content"},
	{selector: `meta[name="twitter:title"]`, attr: "content"},
	{selector: "h1"},
	{selector: "title"},
}

// MetadataExtractor reads titles and canonical links from HTML.
type MetadataExtractor struct {
	suffixes []*regexp.Regexp
}

// NewMetadataExtractor creates a MetadataExtractor. Each suffix pattern is a
// regular expression matched case-insensitively against the end of a title
// and removed, e.g. `\s*\|\s*Help Center` for site-name suffixes.
func NewMetadataExtractor(suffixPatterns ...string) (*MetadataExtractor, error) {
	e := &MetadataExtractor{}
	for _, p := range suffixPatterns {
		re, err := regexp.Compile(`(?i)(?:` + p + `)\s*$`)
		if err != nil {
			return nil, passage.Errorf(passage.EINVALID, "invalid title suffix pattern %q: %v", p, err)
		}
		e.suffixes = append(e.suffixes, re)
	}
	return e, nil
}

// ExtractMetadata returns the page title and canonical URL. Either field is
// empty when the markup does not provide it.
func (e *MetadataExtractor) ExtractMetadata(html string, pageURL string) (*passage.Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, passage.Errorf(passage.EINVALID, "failed to parse HTML: %v", err)
	}

	return &passage.Metadata{
		Title:        e.title(doc),
		CanonicalURL: canonicalURL(doc, pageURL),
	}, nil
}

func (e *MetadataExtractor) title(doc *goquery.Document) string {
	for _, ts := range titleSelectors {
		sel := doc.Find(ts.selector).First()
		if sel.Length() == 0 {
			continue
		}
		var raw string
		if ts.attr == "" {
			raw = sel.Text()
		} else {
			raw, _ = sel.Attr(ts.attr)
		}
		if t := e.CleanTitle(raw); t != "" {
			return t
		}
	}
	return ""
}

// CleanTitle collapses whitespace runs and removes configured site suffixes.
func (e *MetadataExtractor) CleanTitle(title string) string {
	title = strings.Join(strings.Fields(title), " ")
	for _, re := range e.suffixes {
		title = re.ReplaceAllString(title, "")
	}
	return strings.TrimSpace(title)
}

// canonicalURL resolves the first link whose rel list names "canonical".
func canonicalURL(doc *goquery.Document, pageURL string) string {
	var href string
	doc.Find("link[rel][href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		rel, _ := sel.Attr("rel")
		for _, r := range strings.Fields(strings.ToLower(rel)) {
			if r == "canonical" {
				href, _ = sel.Attr("href")
				href = strings.TrimSpace(href)
				return false
			}
		}
		return true
	})
	if href == "" {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil || !base.IsAbs() {
		if ref.IsAbs() {
			return ref.String()
		}
		return ""
	}
	return base.ResolveReference(ref).String()
}
