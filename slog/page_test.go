package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/passage"
	"github.com/fwojciec/passage/mock"
	pslog "github.com/fwojciec/passage/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingPageSource_LoadPages(t *testing.T) {
	t.Parallel()

	t.Run("logs load with count and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.PageSource{
			LoadPagesFn: func(ctx context.Context) ([]*passage.Page, error) {
				return []*passage.Page{
					{URL: "https://example.com/a", Body: "a"},
					{URL: "https://example.com/b", Body: "b"},
				}, nil
			},
		}

		pages, err := pslog.NewLoggingPageSource(inner, logger).LoadPages(context.Background())

		require.NoError(t, err)
		assert.Len(t, pages, 2)
		output := buf.String()
		assert.Contains(t, output, "level=INFO")
		assert.Contains(t, output, "load pages")
		assert.Contains(t, output, "count=2")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error as warning on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.PageSource{
			LoadPagesFn: func(ctx context.Context) ([]*passage.Page, error) {
				return nil, errors.New("connection refused")
			},
		}

		_, err := pslog.NewLoggingPageSource(inner, logger).LoadPages(context.Background())

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "level=WARN")
		assert.Contains(t, output, "count=0")
		assert.Contains(t, output, "connection refused")
	})
}
