package mock

import (
	"context"

	"github.com/fwojciec/passage"
)

// Compile-time interface verification.
var (
	_ passage.PageSource = (*PageSource)(nil)
	_ passage.PageStore  = (*PageStore)(nil)
)

// PageSource is a mock implementation of passage.PageSource.
type PageSource struct {
	LoadPagesFn func(ctx context.Context) ([]*passage.Page, error)
}

func (s *PageSource) LoadPages(ctx context.Context) ([]*passage.Page, error) {
	return s.LoadPagesFn(ctx)
}

// PageStore is a mock implementation of passage.PageStore.
type PageStore struct {
	ReplacePagesFn     func(ctx context.Context, coll *passage.Collection, pages []*passage.Page) error
	FindPagesFn        func(ctx context.Context, filter passage.PageFilter) ([]*passage.Page, error)
	FindCollectionsFn  func(ctx context.Context) ([]*passage.Collection, error)
	DeleteCollectionFn func(ctx context.Context, name string) error
}

func (s *PageStore) ReplacePages(ctx context.Context, coll *passage.Collection, pages []*passage.Page) error {
	return s.ReplacePagesFn(ctx, coll, pages)
}

func (s *PageStore) FindPages(ctx context.Context, filter passage.PageFilter) ([]*passage.Page, error) {
	return s.FindPagesFn(ctx, filter)
}

func (s *PageStore) FindCollections(ctx context.Context) ([]*passage.Collection, error) {
	return s.FindCollectionsFn(ctx)
}

func (s *PageStore) DeleteCollection(ctx context.Context, name string) error {
	return s.DeleteCollectionFn(ctx, name)
}
