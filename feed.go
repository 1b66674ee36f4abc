package passage

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"
)

// MaxFeedLineSize bounds a single feed record.
const MaxFeedLineSize = 64 << 20

// Field aliases, in resolution order. The first alias holding a non-blank
// string wins.
var (
	TitleAliases = []string{"title", "display_title", "page_title", "page", "url"}
	URLAliases   = []string{"display_url", "url"}
	BodyAliases  = []BodyAlias{
		{Field: "content_md", Format: FormatMarkdown},
		{Field: "html", Format: FormatHTML},
		{Field: "content", Format: FormatText},
	}
)

// BodyAlias maps a feed field holding page content to its format.
type BodyAlias struct {
	Field  string
	Format Format
}

// ParseError reports a feed record that was skipped.
type ParseError struct {
	Line   int
	Reason string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("feed line %d: %s", e.Line, e.Reason)
}

// DecodeFeed reads a newline-delimited JSON feed and returns one Page per
// usable record. Malformed records, records without a url and body, and
// records longer than MaxFeedLineSize are reported to onSkip and never
// abort the batch. The only error returned is a failure to read from r.
func DecodeFeed(r io.Reader, onSkip SkipFunc) ([]*Page, error) {
	return (&FeedDecoder{OnSkip: onSkip}).Decode(r)
}

// FeedDecoder decodes newline-delimited JSON feeds.
type FeedDecoder struct {
	// MaxLineSize bounds a single record; 0 means MaxFeedLineSize.
	MaxLineSize int

	// OnSkip is called for every record that was skipped.
	OnSkip SkipFunc
}

// Decode reads r to the end and returns one Page per usable record.
func (d *FeedDecoder) Decode(r io.Reader) ([]*Page, error) {
	limit := d.MaxLineSize
	if limit <= 0 {
		limit = MaxFeedLineSize
	}
	br := bufio.NewReaderSize(r, min(limit+2, 64*1024))

	var (
		pages   []*Page
		buf     []byte
		tooLong bool
		line    int
	)
	for {
		chunk, err := br.ReadSlice('\n')
		if !tooLong {
			// Room for a trailing "\r\n" past the limit.
			if len(buf)+len(chunk) > limit+2 {
				tooLong, buf = true, buf[:0]
			} else {
				buf = append(buf, chunk...)
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err != nil && err != io.EOF {
			return nil, Errorf(EUNAVAILABLE, "read feed: %v", err)
		}

		if len(chunk) > 0 || len(buf) > 0 || tooLong {
			line++
			raw := bytes.TrimRight(buf, "\r\n")
			switch {
			case tooLong || len(raw) > limit:
				d.skip(&ParseError{Line: line, Reason: "record too large"})
			case len(bytes.TrimSpace(raw)) == 0:
			default:
				if page, reason := ParseRecord(raw); page != nil {
					pages = append(pages, page)
				} else {
					d.skip(&ParseError{Line: line, Reason: reason})
				}
			}
		}
		buf, tooLong = buf[:0], false

		if err == io.EOF {
			return pages, nil
		}
	}
}

func (d *FeedDecoder) skip(err *ParseError) {
	if d.OnSkip != nil {
		d.OnSkip(err)
	}
}

// ParseRecord resolves one feed record into a Page. When the record cannot
// be used it returns nil and the reason.
func ParseRecord(raw []byte) (*Page, string) {
	if !gjson.ValidBytes(raw) {
		return nil, "malformed JSON"
	}
	record := gjson.ParseBytes(raw)
	if !record.IsObject() {
		return nil, "record is not an object"
	}

	url := firstString(record, URLAliases)
	if url == "" {
		return nil, "missing url"
	}

	body, format := resolveBody(record)
	if strings.TrimSpace(body) == "" {
		return nil, "missing body"
	}

	return &Page{
		Title:  firstString(record, TitleAliases),
		URL:    url,
		Body:   body,
		Format: format,
	}, ""
}

func resolveBody(record gjson.Result) (string, Format) {
	for _, alias := range BodyAliases {
		if v := stringField(record, alias.Field); v != "" {
			return v, alias.Format
		}
	}
	return renderSections(record.Get("sections")), FormatMarkdown
}

// renderSections flattens the producer's sectioned schema into markdown,
// one "## heading" block per section.
func renderSections(sections gjson.Result) string {
	if !sections.IsArray() {
		return ""
	}
	var blocks []string
	sections.ForEach(func(_, section gjson.Result) bool {
		content := strings.TrimSpace(stringField(section, "content"))
		if content == "" {
			return true
		}
		heading := strings.TrimSpace(stringField(section, "heading"))
		if heading != "" {
			content = "## " + heading + "\n" + content
		}
		blocks = append(blocks, content)
		return true
	})
	return strings.Join(blocks, "\n\n")
}

func firstString(record gjson.Result, aliases []string) string {
	for _, alias := range aliases {
		if v := strings.TrimSpace(stringField(record, alias)); v != "" {
			return v
		}
	}
	return ""
}

// stringField returns the field only when it holds a non-blank string.
// Alias names are plain identifiers, so they are valid gjson paths as is.
func stringField(record gjson.Result, name string) string {
	v := record.Get(name)
	if v.Type != gjson.String || strings.TrimSpace(v.Str) == "" {
		return ""
	}
	return v.Str
}
