package passage

import "strings"

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
type Extractor interface {
	// Extract processes raw HTML and returns the main content.
	Extract(html string) (*ExtractResult, error)
}

// Metadata holds page-level facts read from HTML markup.
type Metadata struct {
	// Title chosen by priority: og:title, twitter:title, h1, <title>.
	Title string

	// CanonicalURL from <link rel="canonical">, resolved against the page URL.
	// Empty when the page declares none.
	CanonicalURL string
}

// MetadataExtractor reads page metadata from HTML.
type MetadataExtractor interface {
	ExtractMetadata(html string, pageURL string) (*Metadata, error)
}

// StripNoiseLines removes blank lines and lines whose trimmed text is in
// noise. Site chrome such as "Skip to main content" survives conversion
// as standalone lines.
func StripNoiseLines(text string, noise map[string]bool) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" || noise[t] {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " \t\r"))
	}
	return strings.Join(kept, "\n")
}
