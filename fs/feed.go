// Package fs provides file-based page sources and exports.
package fs

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/fwojciec/passage"
)

// Ensure FeedSource implements passage.PageSource at compile time.
var _ passage.PageSource = (*FeedSource)(nil)

// FeedSource loads pages from a newline-delimited JSON feed on disk.
type FeedSource struct {
	path   string
	onSkip passage.SkipFunc
}

// NewFeedSource creates a FeedSource reading the feed at path. onSkip may
// be nil.
func NewFeedSource(path string, onSkip passage.SkipFunc) *FeedSource {
	return &FeedSource{path: path, onSkip: onSkip}
}

// LoadPages reads and decodes the feed file. Returns EUNAVAILABLE if the
// file cannot be opened.
func (s *FeedSource) LoadPages(ctx context.Context) ([]*passage.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, passage.Errorf(passage.EUNAVAILABLE, "feed file %s not found", s.path)
	} else if err != nil {
		return nil, passage.Errorf(passage.EUNAVAILABLE, "open feed: %v", err)
	}
	defer f.Close()

	return passage.DecodeFeed(f, s.onSkip)
}
