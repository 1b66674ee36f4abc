package passage

import "context"

// Query defaults and bounds.
const (
	DefaultTopK   = 12
	MinTopK       = 1
	MaxTopK       = 20
	DefaultLambda = 0.5
)

// SearchService selects diverse, relevant passages for a query.
type SearchService interface {
	// Search returns at most opts.TopK results ordered by selection.
	// An empty corpus yields an empty result set, not an error.
	// Returns EINVALID if the query is blank.
	Search(ctx context.Context, query string, opts SearchOptions) ([]*Result, error)
}

// SearchOptions configures search behavior.
type SearchOptions struct {
	// Maximum number of results, clamped to [MinTopK, MaxTopK].
	TopK int `json:"topK,omitempty"`

	// Lambda weighs relevance against redundancy, clamped to [0, 1].
	// 1 ranks by relevance only; 0 maximises diversity.
	Lambda float64 `json:"lambda"`
}

// DefaultSearchOptions returns options with the default result count and
// diversity weight.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{TopK: DefaultTopK, Lambda: DefaultLambda}
}

// Normalize returns a copy of the options with TopK and Lambda clamped.
func (o SearchOptions) Normalize() SearchOptions {
	o.TopK = ClampTopK(o.TopK)
	o.Lambda = ClampLambda(o.Lambda)
	return o
}

// ClampTopK clamps k to [MinTopK, MaxTopK].
func ClampTopK(k int) int {
	return min(max(k, MinTopK), MaxTopK)
}

// ClampLambda clamps lambda to [0, 1].
func ClampLambda(lambda float64) float64 {
	if lambda != lambda { // NaN
		return DefaultLambda
	}
	return min(max(lambda, 0), 1)
}

// Result is one externally visible passage.
type Result struct {
	URL     string `json:"url"` // Page URL, never fragment-qualified
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}
