package retrieve

import (
	"context"
	"log/slog"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/passage"
	"github.com/fwojciec/passage/tfidf"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of pages normalised and chunked in
// parallel.
const DefaultConcurrency = 8

// Builder turns loaded pages into a searchable Snapshot. HTML pages are
// normalised to markdown first when the HTML collaborators are set; any
// of them may be nil.
type Builder struct {
	Metadata  passage.MetadataExtractor
	Extractor passage.Extractor
	Converter passage.Converter

	ChunkOptions passage.ChunkOptions
	ModelOptions tfidf.Options

	// NoiseLines are exact lines dropped from converted HTML bodies.
	NoiseLines map[string]bool

	Concurrency int
	Logger      *slog.Logger
}

// Build normalises and chunks pages and fits the lexical model over the
// chunks. Pages are never modified; normalised copies are stored in the
// snapshot. Returns ENOTFOUND along with an empty snapshot when no chunk
// could be produced.
func (b *Builder) Build(ctx context.Context, pages []*passage.Page) (*Snapshot, error) {
	normalized := make([]*passage.Page, len(pages))
	perPage := make([][]*passage.Chunk, len(pages))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency())
	for i, page := range pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := b.Normalize(page)
			normalized[i] = p
			perPage[i] = passage.ChunkPage(i, p, b.ChunkOptions)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var chunks []*passage.Chunk
	for _, cs := range perPage {
		chunks = append(chunks, cs...)
	}
	if len(chunks) == 0 {
		return &Snapshot{Pages: normalized}, passage.Errorf(passage.ENOTFOUND, "corpus has no usable chunks")
	}

	docs := make([]string, len(chunks))
	for i, c := range chunks {
		docs[i] = c.IndexText()
	}
	model, matrix := tfidf.FitTransform(docs, b.ModelOptions)

	return &Snapshot{
		Pages:  normalized,
		Chunks: chunks,
		Model:  model,
		Matrix: matrix,
	}, nil
}

// Normalize returns page with an HTML body reduced to markdown main
// content. Metadata may replace the url with the page's canonical url and
// fill in a missing title. A failing step leaves the body as it was.
func (b *Builder) Normalize(page *passage.Page) *passage.Page {
	if page.Format != passage.FormatHTML {
		return page
	}
	out := *page

	if b.Metadata != nil {
		meta, err := b.Metadata.ExtractMetadata(page.Body, page.URL)
		if err != nil {
			b.logger().Debug("metadata extraction failed", "url", page.URL, "err", err)
		} else {
			if meta.CanonicalURL != "" {
				out.URL = meta.CanonicalURL
			}
			if meta.Title != "" && (page.Title == "" || page.Title == page.URL) {
				out.Title = meta.Title
			}
		}
	}

	content := page.Body
	if b.Extractor != nil {
		res, err := b.Extractor.Extract(content)
		switch {
		case err != nil:
			b.logger().Debug("content extraction failed", "url", page.URL, "err", err)
		case strings.TrimSpace(res.ContentHTML) != "":
			content = res.ContentHTML
		}
	}

	if b.Converter != nil {
		md, err := b.Converter.Convert(content)
		if err != nil {
			b.logger().Debug("markdown conversion failed", "url", page.URL, "err", err)
			return &out
		}
		if md = passage.StripNoiseLines(md, b.NoiseLines); strings.TrimSpace(md) != "" {
			out.Body = md
			out.Format = passage.FormatMarkdown
		}
	}

	return &out
}

func (b *Builder) concurrency() int {
	if b.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return b.Concurrency
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Logger
}

// Fingerprint hashes the url, title and body of every page, in order.
// Equal fingerprints mean a rebuild would produce the same snapshot.
func Fingerprint(pages []*passage.Page) uint64 {
	h := xxhash.New()
	for _, p := range pages {
		for _, s := range []string{p.URL, p.Title, p.Body, string(p.Format)} {
			_, _ = h.WriteString(s)
			_, _ = h.Write([]byte{0})
		}
	}
	return h.Sum64()
}
