package retrieve

import (
	"context"
	"log/slog"
	"strings"

	"github.com/fwojciec/passage"
)

// DefaultSelectionFactor is how many MMR picks are made per requested
// result. Greedy MMR is prefix-stable, so the extra picks only give the
// assembler replacements for chunks the diversity rule suppresses.
const DefaultSelectionFactor = 2

// Ensure Searcher implements passage.SearchService at compile time.
var _ passage.SearchService = (*Searcher)(nil)

// Searcher answers queries against the cache's live snapshot.
type Searcher struct {
	Cache *Cache

	// Window is the MMR candidate window; 0 means DefaultWindow.
	Window int

	// SelectionFactor scales topK into the number of MMR picks; 0 means
	// DefaultSelectionFactor.
	SelectionFactor int

	Logger *slog.Logger
}

// NewSearcher returns a Searcher over cache with default tuning.
func NewSearcher(cache *Cache) *Searcher {
	return &Searcher{Cache: cache}
}

// Search refreshes the corpus if it is stale and returns diverse passages
// for query. A failed refresh is logged and the previous snapshot is
// searched; with no snapshot at all the result is empty.
func (s *Searcher) Search(ctx context.Context, query string, opts passage.SearchOptions) ([]*passage.Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, passage.Errorf(passage.EINVALID, "query required")
	}
	opts = opts.Normalize()

	snap, err := s.Cache.EnsureFresh(ctx)
	if err != nil {
		s.logger().Warn("serving previous corpus", "err", err, "chunks", snap.Len())
	}
	if snap.Empty() {
		return []*passage.Result{}, nil
	}

	factor := s.SelectionFactor
	if factor <= 0 {
		factor = DefaultSelectionFactor
	}
	indices := snap.Select(query, SelectOptions{
		K:      opts.TopK * factor,
		Lambda: opts.Lambda,
		Window: s.Window,
	})
	return Assemble(snap, indices, opts.TopK), nil
}

func (s *Searcher) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}
