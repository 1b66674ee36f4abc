package mock

import (
	"context"

	"github.com/fwojciec/passage"
)

// Compile-time interface verification.
var (
	_ passage.SearchService = (*SearchService)(nil)
	_ passage.StatusService = (*StatusService)(nil)
)

// SearchService is a mock implementation of passage.SearchService.
type SearchService struct {
	SearchFn func(ctx context.Context, query string, opts passage.SearchOptions) ([]*passage.Result, error)
}

func (s *SearchService) Search(ctx context.Context, query string, opts passage.SearchOptions) ([]*passage.Result, error) {
	return s.SearchFn(ctx, query, opts)
}

// StatusService is a mock implementation of passage.StatusService.
type StatusService struct {
	StatusFn func() passage.Status
}

func (s *StatusService) Status() passage.Status {
	return s.StatusFn()
}
