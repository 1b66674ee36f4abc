package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/passage"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var (
	_ passage.PageStore  = (*PageService)(nil)
	_ passage.PageSource = (*PageSource)(nil)
)

// PageService implements passage.PageStore using SQLite.
type PageService struct {
	db  *DB
	now func() time.Time
}

// NewPageService creates a new PageService.
func NewPageService(db *DB) *PageService {
	return &PageService{db: db, now: time.Now}
}

// ReplacePages swaps the collection's pages for pages in one transaction.
// coll.ID and timestamps are filled in from the stored collection. A page
// whose url and content hash match the previous import keeps its original
// import time and is not counted in coll.Changed.
func (s *PageService) ReplacePages(ctx context.Context, coll *passage.Collection, pages []*passage.Page) error {
	if err := coll.Validate(); err != nil {
		return err
	}
	for _, p := range pages {
		if err := p.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now().UTC()
	if err := upsertCollection(ctx, tx, coll, now); err != nil {
		return err
	}

	previous, err := storedHashes(ctx, tx, coll.ID)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM pages WHERE collection_id = ?", coll.ID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pages (id, collection_id, url, title, body, format, content_hash, position, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	changed := 0
	for i, p := range pages {
		hash := hashContent(p.Body)
		importedAt := formatTime(now)
		if prev, ok := previous[p.URL]; ok && prev.hash == hash {
			importedAt = prev.importedAt
		} else {
			changed++
		}
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), coll.ID, p.URL, p.Title, p.Body,
			string(p.Format), hash, i, importedAt); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	coll.Pages = len(pages)
	coll.Changed = changed
	return nil
}

type storedPage struct {
	hash       string
	importedAt string
}

// storedHashes returns the content hash and import time of every page in
// the collection, keyed by url.
func storedHashes(ctx context.Context, tx *sql.Tx, collectionID string) (map[string]storedPage, error) {
	rows, err := tx.QueryContext(ctx, "SELECT url, content_hash, imported_at FROM pages WHERE collection_id = ?", collectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stored := make(map[string]storedPage)
	for rows.Next() {
		var url string
		var p storedPage
		if err := rows.Scan(&url, &p.hash, &p.importedAt); err != nil {
			return nil, err
		}
		stored[url] = p
	}
	return stored, rows.Err()
}

// upsertCollection creates the named collection or refreshes its source
// and update time.
func upsertCollection(ctx context.Context, tx *sql.Tx, coll *passage.Collection, now time.Time) error {
	var id, createdAt string
	err := tx.QueryRowContext(ctx, "SELECT id, created_at FROM collections WHERE name = ?", coll.Name).Scan(&id, &createdAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		coll.ID = uuid.NewString()
		coll.CreatedAt = now
		coll.UpdatedAt = now
		_, err = tx.ExecContext(ctx, `
			INSERT INTO collections (id, name, source_url, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`, coll.ID, coll.Name, coll.SourceURL, formatTime(now), formatTime(now))
		return err
	case err != nil:
		return err
	}

	coll.ID = id
	if coll.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return err
	}
	coll.UpdatedAt = now
	_, err = tx.ExecContext(ctx, "UPDATE collections SET source_url = ?, updated_at = ? WHERE id = ?",
		coll.SourceURL, formatTime(now), id)
	return err
}

// FindPages retrieves pages matching the filter in import order.
func (s *PageService) FindPages(ctx context.Context, filter passage.PageFilter) ([]*passage.Page, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT p.url, p.title, p.body, p.format FROM pages p
		JOIN collections c ON c.id = p.collection_id WHERE 1=1`)

	if filter.Collection != nil {
		query.WriteString(" AND c.name = ?")
		args = append(args, *filter.Collection)
	}

	query.WriteString(" ORDER BY c.name ASC, p.position ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []*passage.Page
	for rows.Next() {
		var p passage.Page
		var format string
		if err := rows.Scan(&p.URL, &p.Title, &p.Body, &format); err != nil {
			return nil, err
		}
		p.Format = passage.Format(format)
		pages = append(pages, &p)
	}

	return pages, rows.Err()
}

// FindCollections returns every collection with its page count, newest
// first.
func (s *PageService) FindCollections(ctx context.Context) ([]*passage.Collection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.source_url, c.created_at, c.updated_at, COUNT(p.id)
		FROM collections c
		LEFT JOIN pages p ON p.collection_id = c.id
		GROUP BY c.id
		ORDER BY c.updated_at DESC, c.name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var colls []*passage.Collection
	for rows.Next() {
		var c passage.Collection
		var createdAt, updatedAt string
		if err := rows.Scan(&c.ID, &c.Name, &c.SourceURL, &createdAt, &updatedAt, &c.Pages); err != nil {
			return nil, err
		}
		if c.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if c.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
			return nil, err
		}
		colls = append(colls, &c)
	}

	return colls, rows.Err()
}

// DeleteCollection permanently removes a collection and its pages.
func (s *PageService) DeleteCollection(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", name)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return passage.Errorf(passage.ENOTFOUND, "collection %q not found", name)
	}

	return nil
}

// PageSource serves stored pages as a corpus, optionally limited to one
// collection.
type PageSource struct {
	store      passage.PageStore
	collection string
}

// NewPageSource creates a PageSource over store. An empty collection
// serves every stored page.
func NewPageSource(store passage.PageStore, collection string) *PageSource {
	return &PageSource{store: store, collection: collection}
}

// LoadPages returns the stored pages. Returns EUNAVAILABLE if the store
// cannot be read.
func (s *PageSource) LoadPages(ctx context.Context) ([]*passage.Page, error) {
	var filter passage.PageFilter
	if s.collection != "" {
		filter.Collection = &s.collection
	}
	pages, err := s.store.FindPages(ctx, filter)
	if err != nil {
		if code := passage.ErrorCode(err); code != passage.EINTERNAL {
			return nil, err
		}
		return nil, passage.Errorf(passage.EUNAVAILABLE, "load stored pages: %v", err)
	}
	return pages, nil
}
