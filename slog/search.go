package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/passage"
)

// Ensure LoggingSearchService implements passage.SearchService.
var _ passage.SearchService = (*LoggingSearchService)(nil)

// LoggingSearchService wraps a SearchService with debug logging.
type LoggingSearchService struct {
	next   passage.SearchService
	logger *slog.Logger
}

// NewLoggingSearchService creates a new LoggingSearchService.
func NewLoggingSearchService(next passage.SearchService, logger *slog.Logger) *LoggingSearchService {
	return &LoggingSearchService{next: next, logger: logger}
}

// Search delegates to the wrapped service and logs the query.
func (s *LoggingSearchService) Search(ctx context.Context, query string, opts passage.SearchOptions) (results []*passage.Result, err error) {
	defer func(begin time.Time) {
		s.logger.DebugContext(ctx, "search",
			"query", query,
			"top_k", opts.TopK,
			"lambda", opts.Lambda,
			"count", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, query, opts)
}
