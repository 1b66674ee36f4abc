// Package slog decorates passage services with structured logging.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/passage"
)

// Ensure LoggingPageSource implements passage.PageSource.
var _ passage.PageSource = (*LoggingPageSource)(nil)

// LoggingPageSource wraps a PageSource with logging of every corpus load.
type LoggingPageSource struct {
	next   passage.PageSource
	logger *slog.Logger
}

// NewLoggingPageSource creates a new LoggingPageSource.
func NewLoggingPageSource(next passage.PageSource, logger *slog.Logger) *LoggingPageSource {
	return &LoggingPageSource{next: next, logger: logger}
}

// LoadPages delegates to the wrapped source and logs the operation.
func (s *LoggingPageSource) LoadPages(ctx context.Context) (pages []*passage.Page, err error) {
	defer func(begin time.Time) {
		level := slog.LevelInfo
		if err != nil {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "load pages",
			"count", len(pages),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.LoadPages(ctx)
}
