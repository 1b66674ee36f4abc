// Package tfidf implements a character n-gram TF-IDF vectorizer with
// sparse, L2-normalised vectors. Character n-grams need no word
// segmentation, so the model works for languages without spaces.
package tfidf

import (
	"math"
	"slices"
	"strings"
	"unicode"
)

// Defaults for Options.
const (
	DefaultMinN        = 2
	DefaultMaxN        = 5
	DefaultMaxFeatures = 150_000
)

// Options configures the vectorizer. Zero fields use the defaults.
type Options struct {
	MinN        int // Shortest n-gram, in characters
	MaxN        int // Longest n-gram, in characters
	MaxFeatures int // Vocabulary cap; the most frequent terms are kept
}

func (o Options) withDefaults() Options {
	if o.MinN <= 0 {
		o.MinN = DefaultMinN
	}
	if o.MaxN < o.MinN {
		o.MaxN = max(DefaultMaxN, o.MinN)
	}
	if o.MaxFeatures <= 0 {
		o.MaxFeatures = DefaultMaxFeatures
	}
	return o
}

// Vectorizer maps text into a fitted vocabulary space. A fitted
// Vectorizer is immutable and safe for concurrent use.
type Vectorizer struct {
	opts       Options
	vocabulary map[string]int32
	idf        []float64
}

// Fit builds the vocabulary and IDF weights from docs.
func Fit(docs []string, opts Options) *Vectorizer {
	v, _ := fit(docs, opts)
	return v
}

// FitTransform fits a Vectorizer on docs and returns it together with one
// vector per doc, aligned by index.
func FitTransform(docs []string, opts Options) (*Vectorizer, []Vector) {
	v, counts := fit(docs, opts)
	rows := make([]Vector, len(docs))
	for i, c := range counts {
		rows[i] = v.weigh(c)
	}
	return v, rows
}

func fit(docs []string, opts Options) (*Vectorizer, []map[string]int) {
	opts = opts.withDefaults()

	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	total := make(map[string]int)
	for i, doc := range docs {
		c := countNgrams(doc, opts.MinN, opts.MaxN)
		counts[i] = c
		for term, n := range c {
			df[term]++
			total[term] += n
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	if len(terms) > opts.MaxFeatures {
		// Keep the most frequent terms; ties resolve lexically so the
		// vocabulary is deterministic.
		slices.SortFunc(terms, func(a, b string) int {
			if total[a] != total[b] {
				return total[b] - total[a]
			}
			return strings.Compare(a, b)
		})
		terms = terms[:opts.MaxFeatures]
	}
	slices.Sort(terms)

	n := float64(len(docs))
	v := &Vectorizer{
		opts:       opts,
		vocabulary: make(map[string]int32, len(terms)),
		idf:        make([]float64, len(terms)),
	}
	for i, term := range terms {
		v.vocabulary[term] = int32(i)
		// Smoothed IDF: as if one extra document contained every term.
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	return v, counts
}

// Transform projects text into the fitted space. Terms outside the
// vocabulary are ignored; the model is never updated.
func (v *Vectorizer) Transform(text string) Vector {
	return v.weigh(countNgrams(text, v.opts.MinN, v.opts.MaxN))
}

// Size returns the number of terms in the vocabulary.
func (v *Vectorizer) Size() int {
	return len(v.idf)
}

// Contains reports whether term is in the vocabulary.
func (v *Vectorizer) Contains(term string) bool {
	_, ok := v.vocabulary[term]
	return ok
}

func (v *Vectorizer) weigh(counts map[string]int) Vector {
	type entry struct {
		idx    int32
		weight float64
	}
	entries := make([]entry, 0, len(counts))
	var norm float64
	for term, n := range counts {
		idx, ok := v.vocabulary[term]
		if !ok {
			continue
		}
		w := float64(n) * v.idf[idx]
		entries = append(entries, entry{idx: idx, weight: w})
		norm += w * w
	}
	slices.SortFunc(entries, func(a, b entry) int { return int(a.idx - b.idx) })

	norm = math.Sqrt(norm)
	vec := Vector{
		Indices: make([]int32, len(entries)),
		Values:  make([]float32, len(entries)),
	}
	for i, e := range entries {
		vec.Indices[i] = e.idx
		vec.Values[i] = float32(e.weight / norm)
	}
	return vec
}

// Analyze returns the normalised form n-grams are cut from: lowercased,
// with every whitespace run collapsed to a single space.
func Analyze(text string) []rune {
	out := make([]rune, 0, len(text))
	space := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !space {
				out = append(out, ' ')
			}
			space = true
			continue
		}
		space = false
		out = append(out, unicode.ToLower(r))
	}
	return out
}

func countNgrams(text string, minN, maxN int) map[string]int {
	runes := Analyze(text)
	counts := make(map[string]int)
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(runes); i++ {
			counts[string(runes[i:i+n])]++
		}
	}
	return counts
}
