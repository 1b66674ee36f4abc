// Package http provides the HTTP side of passage: a feed-backed page
// source, the credential gate, and the query server.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/passage"
)

// DefaultFetchTimeout is the default timeout for a single feed request.
const DefaultFetchTimeout = 10 * time.Second

// DefaultRetryDelays returns the waits between feed attempts: 250ms, 500ms, 1s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{250 * time.Millisecond, 500 * time.Millisecond, time.Second}
}

// Ensure FeedSource implements passage.PageSource at compile time.
var _ passage.PageSource = (*FeedSource)(nil)

// FeedSource loads pages from a newline-delimited JSON feed served over
// HTTP. Transport failures, 5xx and 429 responses are retried; every other
// non-2xx response fails immediately.
type FeedSource struct {
	url     string
	client  *http.Client
	timeout time.Duration
	delays  []time.Duration
	onSkip  passage.SkipFunc
	logger  *slog.Logger
}

// Option configures a FeedSource.
type Option func(*FeedSource)

// WithTimeout sets the timeout for each feed request.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(s *FeedSource) {
		s.timeout = d
	}
}

// WithRetryDelays sets the waits between attempts. An empty slice disables
// retries.
func WithRetryDelays(delays []time.Duration) Option {
	return func(s *FeedSource) {
		s.delays = delays
	}
}

// WithSkipFunc sets the callback for skipped feed records.
func WithSkipFunc(fn passage.SkipFunc) Option {
	return func(s *FeedSource) {
		s.onSkip = fn
	}
}

// WithLogger sets the logger for retry attempts.
func WithLogger(l *slog.Logger) Option {
	return func(s *FeedSource) {
		s.logger = l
	}
}

// NewFeedSource creates a FeedSource for the feed at url.
func NewFeedSource(url string, opts ...Option) *FeedSource {
	s := &FeedSource{
		url:     url,
		timeout: DefaultFetchTimeout,
		delays:  DefaultRetryDelays(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.client = &http.Client{
		Timeout: s.timeout,
	}

	return s
}

// LoadPages fetches and decodes the feed. Returns EUNAVAILABLE when the
// feed cannot be fetched.
func (s *FeedSource) LoadPages(ctx context.Context) ([]*passage.Page, error) {
	maxAttempts := len(s.delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		pages, err := s.load(ctx)
		if err == nil {
			return pages, nil
		}
		lastErr = err

		var re *retryableError
		if !errors.As(err, &re) || attempt >= maxAttempts-1 {
			break
		}

		// Never sleep past the caller's deadline.
		delay := s.delays[attempt]
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= delay {
			break
		}

		s.logger.Debug("retrying feed", "url", s.url, "attempt", attempt+2, "err", err)

		select {
		case <-ctx.Done():
			return nil, passage.Errorf(passage.EUNAVAILABLE, "fetch feed: %v", ctx.Err())
		case <-time.After(delay):
		}
	}

	var re *retryableError
	if errors.As(lastErr, &re) {
		lastErr = re.err
	}
	if passage.ErrorCode(lastErr) == passage.EUNAVAILABLE {
		return nil, lastErr
	}
	return nil, passage.Errorf(passage.EUNAVAILABLE, "fetch feed: %v", lastErr)
}

func (s *FeedSource) load(ctx context.Context) ([]*passage.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, passage.Errorf(passage.EUNAVAILABLE, "invalid feed url: %v", err)
	}
	req.Header.Set("Accept", "application/x-ndjson, application/json, text/plain")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, &retryableError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := passage.Errorf(passage.EUNAVAILABLE, "feed returned HTTP %d", resp.StatusCode)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, &retryableError{err: err}
		}
		return nil, err
	}

	return passage.DecodeFeed(resp.Body, s.onSkip)
}

// retryableError marks failures worth another attempt.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.err)
}

func (e *retryableError) Unwrap() error {
	return e.err
}
