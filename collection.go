package passage

import (
	"context"
	"time"
)

// Collection is a named set of stored pages, typically one imported feed.
type Collection struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SourceURL string    `json:"sourceUrl"` // Where the pages were imported from
	Pages     int       `json:"pages"`
	Changed   int       `json:"changed"` // Pages new or modified by the last import
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate returns an error if the collection contains invalid fields.
func (c *Collection) Validate() error {
	if c.Name == "" {
		return Errorf(EINVALID, "collection name required")
	}
	return nil
}

// PageStore persists imported pages so a corpus can be served without
// re-reading the feed. Only pages are stored; the index is always rebuilt
// in memory.
type PageStore interface {
	// ReplacePages atomically replaces every page of the named collection,
	// creating the collection if needed. Pages keep their order. coll.Pages
	// and coll.Changed are set from the result.
	ReplacePages(ctx context.Context, coll *Collection, pages []*Page) error

	// FindPages returns stored pages matching the filter, in import order.
	FindPages(ctx context.Context, filter PageFilter) ([]*Page, error)

	// FindCollections returns every collection with its page count.
	FindCollections(ctx context.Context) ([]*Collection, error)

	// DeleteCollection removes a collection and its pages.
	// Returns ENOTFOUND if the collection does not exist.
	DeleteCollection(ctx context.Context, name string) error
}

// PageFilter represents a filter for FindPages.
type PageFilter struct {
	Collection *string `json:"collection"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}
