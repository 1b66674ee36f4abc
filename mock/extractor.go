package mock

import "github.com/fwojciec/passage"

// Compile-time interface verification.
var (
	_ passage.Extractor         = (*Extractor)(nil)
	_ passage.MetadataExtractor = (*MetadataExtractor)(nil)
	_ passage.Converter         = (*Converter)(nil)
)

// Extractor is a mock implementation of passage.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*passage.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*passage.ExtractResult, error) {
	return e.ExtractFn(html)
}

// MetadataExtractor is a mock implementation of passage.MetadataExtractor.
type MetadataExtractor struct {
	ExtractMetadataFn func(html string, pageURL string) (*passage.Metadata, error)
}

func (e *MetadataExtractor) ExtractMetadata(html string, pageURL string) (*passage.Metadata, error) {
	return e.ExtractMetadataFn(html, pageURL)
}

// Converter is a mock implementation of passage.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
