package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/passage"
	passagehttp "github.com/fwojciec/passage/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFeed = `{"title":"Intro","url":"https://example.com/intro","content_md":"# Intro\nHello."}
{broken
{"title":"Setup","url":"https://example.com/setup","content":"Plain setup text."}
`

var noDelays = []time.Duration{time.Millisecond, time.Millisecond}

func TestFeedSource_LoadPages(t *testing.T) {
	t.Parallel()

	t.Run("decodes pages and reports skipped lines", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/x-ndjson")
			_, _ = w.Write([]byte(testFeed))
		}))
		defer server.Close()

		var skipped []*passage.ParseError
		source := passagehttp.NewFeedSource(server.URL, passagehttp.WithSkipFunc(func(err *passage.ParseError) {
			skipped = append(skipped, err)
		}))

		pages, err := source.LoadPages(context.Background())

		require.NoError(t, err)
		require.Len(t, pages, 2)
		assert.Equal(t, "https://example.com/intro", pages[0].URL)
		assert.Equal(t, "https://example.com/setup", pages[1].URL)
		require.Len(t, skipped, 1)
		assert.Equal(t, 2, skipped[0].Line)
	})

	t.Run("returns unavailable for client errors without retrying", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		source := passagehttp.NewFeedSource(server.URL, passagehttp.WithRetryDelays(noDelays))

		_, err := source.LoadPages(context.Background())

		require.Error(t, err)
		assert.Equal(t, passage.EUNAVAILABLE, passage.ErrorCode(err))
		assert.Contains(t, passage.ErrorMessage(err), "404")
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("retries server errors", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(testFeed))
		}))
		defer server.Close()

		source := passagehttp.NewFeedSource(server.URL, passagehttp.WithRetryDelays(noDelays))

		pages, err := source.LoadPages(context.Background())

		require.NoError(t, err)
		assert.Len(t, pages, 2)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("gives up after the last retry", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		source := passagehttp.NewFeedSource(server.URL, passagehttp.WithRetryDelays(noDelays))

		_, err := source.LoadPages(context.Background())

		assert.Equal(t, passage.EUNAVAILABLE, passage.ErrorCode(err))
		assert.Contains(t, passage.ErrorMessage(err), "429")
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("does not wait past the context deadline", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		source := passagehttp.NewFeedSource(server.URL, passagehttp.WithRetryDelays([]time.Duration{time.Minute}))
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		begin := time.Now()
		_, err := source.LoadPages(ctx)

		assert.Equal(t, passage.EUNAVAILABLE, passage.ErrorCode(err))
		assert.Less(t, time.Since(begin), 900*time.Millisecond)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("respects custom timeout option", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte(testFeed))
		}))
		defer server.Close()

		source := passagehttp.NewFeedSource(server.URL,
			passagehttp.WithTimeout(10*time.Millisecond),
			passagehttp.WithRetryDelays(nil),
		)

		_, err := source.LoadPages(context.Background())

		assert.Equal(t, passage.EUNAVAILABLE, passage.ErrorCode(err))
	})

	t.Run("returns unavailable for non-existent host", func(t *testing.T) {
		t.Parallel()

		source := passagehttp.NewFeedSource("http://non-existent-host.invalid/feed.jsonl",
			passagehttp.WithTimeout(100*time.Millisecond),
			passagehttp.WithRetryDelays(nil),
		)

		_, err := source.LoadPages(context.Background())

		assert.Equal(t, passage.EUNAVAILABLE, passage.ErrorCode(err))
	})
}
