package sqlite

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/passage"
)

// Timestamps in the collections and pages tables are RFC3339 text in UTC.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime parses a stored timestamp column. A malformed value means the
// database was written by something else and is reported as EINTERNAL.
func parseTime(value, column string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, passage.Errorf(passage.EINTERNAL, "parse %s: %v", column, err)
	}
	return t, nil
}

// appendPagination appends LIMIT and OFFSET clauses for a PageFilter.
// SQLite only accepts OFFSET after LIMIT, so an offset alone is paired
// with LIMIT -1.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit <= 0 && offset <= 0 {
		return
	}
	if limit <= 0 {
		limit = -1
	}
	query.WriteString(" LIMIT ?")
	*args = append(*args, limit)
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}

// hashContent returns the hex xxHash of a page body, stored as
// pages.content_hash.
func hashContent(content string) string {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, xxhash.Sum64String(content))
	return hex.EncodeToString(b)
}
