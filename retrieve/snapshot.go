// Package retrieve implements the in-memory retrieval engine: snapshot
// building, the TTL cache, MMR selection and result assembly.
package retrieve

import (
	"time"

	"github.com/fwojciec/passage"
	"github.com/fwojciec/passage/tfidf"
)

// Snapshot is one immutable, fully built corpus. Matrix rows are aligned
// with Chunks by index. Snapshots are only ever replaced as a whole.
type Snapshot struct {
	Pages       []*passage.Page
	Chunks      []*passage.Chunk
	Model       *tfidf.Vectorizer
	Matrix      []tfidf.Vector
	RefreshedAt time.Time
	Fingerprint uint64
}

// Len returns the number of chunks in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Chunks)
}

// Empty reports whether the snapshot has nothing to search.
func (s *Snapshot) Empty() bool {
	return s.Len() == 0 || s.Model == nil
}

// Age returns how long ago the snapshot was refreshed.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.RefreshedAt)
}

// restamp returns a copy of s refreshed at t. The underlying slices and
// model are shared.
func (s *Snapshot) restamp(t time.Time) *Snapshot {
	cp := *s
	cp.RefreshedAt = t
	return &cp
}
