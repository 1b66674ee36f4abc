package passage

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Default chunking limits. Lengths are counted in characters (runes).
const (
	DefaultMaxChunks      = 30
	DefaultMaxSubheadLen  = 60
	DefaultSplitThreshold = 2000
	DefaultTargetSize     = 800
	DefaultFallbackSize   = 1200
)

// Chunk is a bounded passage of a page, the unit of indexing and retrieval.
// Chunks are produced fresh on every refresh and never mutated.
type Chunk struct {
	PageIndex int    `json:"pageIndex"` // Position in the snapshot's page list
	PageURL   string `json:"pageUrl"`
	PageTitle string `json:"pageTitle"`
	Subhead   string `json:"subhead,omitempty"`
	Text      string `json:"text"`
}

// IndexText returns the composite string the lexical model is fitted on:
// page title and subheading first, then the passage text.
func (c *Chunk) IndexText() string {
	return c.PageTitle + " " + c.Subhead + "\n" + c.Text
}

// Passage is one (subheading, text) pair produced by SplitPassages.
type Passage struct {
	Subhead string
	Text    string
}

// ChunkOptions configures SplitPassages. Zero fields use the defaults.
type ChunkOptions struct {
	MaxChunks      int
	MaxSubheadLen  int
	SplitThreshold int
	TargetSize     int
	FallbackSize   int
}

// DefaultChunkOptions returns the default chunking limits.
func DefaultChunkOptions() ChunkOptions {
	return ChunkOptions{
		MaxChunks:      DefaultMaxChunks,
		MaxSubheadLen:  DefaultMaxSubheadLen,
		SplitThreshold: DefaultSplitThreshold,
		TargetSize:     DefaultTargetSize,
		FallbackSize:   DefaultFallbackSize,
	}
}

func (o ChunkOptions) withDefaults() ChunkOptions {
	d := DefaultChunkOptions()
	if o.MaxChunks <= 0 {
		o.MaxChunks = d.MaxChunks
	}
	if o.MaxSubheadLen <= 0 {
		o.MaxSubheadLen = d.MaxSubheadLen
	}
	if o.SplitThreshold <= 0 {
		o.SplitThreshold = d.SplitThreshold
	}
	if o.TargetSize <= 0 {
		o.TargetSize = d.TargetSize
	}
	if o.FallbackSize <= 0 {
		o.FallbackSize = d.FallbackSize
	}
	return o
}

// markerRe matches lines that open a new block: markdown headings,
// numbered items, bullets, and bracketed labels. A bracket followed by "("
// is a markdown link, not a label.
var markerRe = regexp.MustCompile(`^[ \t]*(?:#{1,6}(?:[ \t]|$)|\d{1,3}[.)][ \t]|[-*+][ \t]|[•・]|\[[^\]\n]+\](?:[^(]|$)|【[^】\n]+】)`)

// markerPrefixRe matches the marker characters stripped from a subheading.
var markerPrefixRe = regexp.MustCompile(`^(?:#{1,6}|\d{1,3}[.)]|[-*+•・])[ \t]*`)

// ChunkPage splits a page into chunks tagged with the page's index.
func ChunkPage(index int, page *Page, opts ChunkOptions) []*Chunk {
	passages := SplitPassages(page.Body, opts)
	chunks := make([]*Chunk, 0, len(passages))
	for _, p := range passages {
		chunks = append(chunks, &Chunk{
			PageIndex: index,
			PageURL:   page.URL,
			PageTitle: page.Title,
			Subhead:   p.Subhead,
			Text:      p.Text,
		})
	}
	return chunks
}

// SplitPassages partitions body at heading-like markers into passages.
// Blocks longer than SplitThreshold are re-split at sentence boundaries
// into passages of about TargetSize. When nothing usable is found a single
// passage holding the first FallbackSize characters of body is returned.
// At most MaxChunks passages are returned.
func SplitPassages(body string, opts ChunkOptions) []Passage {
	opts = opts.withDefaults()

	var passages []Passage
	for _, block := range splitBlocks(body) {
		text := strings.TrimSpace(block)
		if text == "" {
			continue
		}
		subhead := blockSubhead(text, opts.MaxSubheadLen)

		if utf8.RuneCountInString(text) <= opts.SplitThreshold {
			passages = append(passages, Passage{Subhead: subhead, Text: text})
			continue
		}
		for i, fragment := range packSentences(text, opts.TargetSize) {
			p := Passage{Text: fragment}
			if i == 0 {
				p.Subhead = subhead
			}
			passages = append(passages, p)
		}
	}

	if len(passages) == 0 {
		return []Passage{{Text: Truncate(body, opts.FallbackSize)}}
	}
	if len(passages) > opts.MaxChunks {
		passages = passages[:opts.MaxChunks]
	}
	return passages
}

// splitBlocks cuts body into blocks, each starting at a marker line.
// Text before the first marker forms its own block.
func splitBlocks(body string) []string {
	body = strings.ReplaceAll(body, "\r\n", "\n")

	var blocks []string
	var current []string
	for _, line := range strings.Split(body, "\n") {
		if markerRe.MatchString(line) && len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = nil
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, strings.Join(current, "\n"))
	}
	return blocks
}

// blockSubhead returns the cleaned first line of text when it is short
// enough to read as a heading.
func blockSubhead(text string, maxLen int) string {
	first, _, _ := strings.Cut(text, "\n")
	first = strings.TrimSpace(first)
	if first == "" || utf8.RuneCountInString(first) > maxLen {
		return ""
	}
	return cleanHeading(first)
}

func cleanHeading(line string) string {
	line = markerPrefixRe.ReplaceAllString(line, "")
	line = strings.TrimRight(line, "# \t")
	for _, pair := range [][2]string{{"[", "]"}, {"【", "】"}} {
		if rest, ok := strings.CutPrefix(line, pair[0]); ok {
			label, after, found := strings.Cut(rest, pair[1])
			if found {
				line = strings.TrimSpace(strings.TrimSpace(label) + " " + strings.TrimSpace(after))
			}
		}
	}
	return strings.TrimSpace(line)
}

// packSentences accumulates sentences into fragments. A fragment is flushed
// whenever the next sentence would push it past target; a single sentence
// longer than target becomes its own oversized fragment.
func packSentences(text string, target int) []string {
	var fragments []string
	var buf strings.Builder
	bufLen := 0

	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			fragments = append(fragments, s)
		}
		buf.Reset()
		bufLen = 0
	}

	for _, sentence := range splitSentences(text) {
		n := utf8.RuneCountInString(sentence)
		if bufLen > 0 && bufLen+n > target {
			flush()
		}
		buf.WriteString(sentence)
		bufLen += n
	}
	flush()

	return fragments
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？', '\n':
		return true
	}
	return false
}

// splitSentences cuts text after sentence-ending punctuation, keeping the
// punctuation and trailing whitespace with the sentence.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isSentenceEnd(runes[i]) {
			continue
		}
		j := i + 1
		for j < len(runes) && (isSentenceEnd(runes[j]) || unicode.IsSpace(runes[j])) {
			j++
		}
		sentences = append(sentences, string(runes[start:j]))
		start = j
		i = j - 1
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

// Truncate returns the first n characters of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
