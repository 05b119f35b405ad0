// Package slog provides logging decorators for the lexcrawl service
// interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/lexcrawl/lexcrawl"
)

// Ensure LoggingFetcher implements lexcrawl.Fetcher.
var _ lexcrawl.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with per-request logging.
type LoggingFetcher struct {
	next   lexcrawl.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next lexcrawl.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the request outcome and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string, opts *lexcrawl.FetchOptions) (result *lexcrawl.FetchResult, err error) {
	defer func(begin time.Time) {
		bytes := 0
		if result != nil {
			bytes = len(result.Body)
		}
		f.logger.Info("fetch",
			"url", url,
			"bytes", bytes,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url, opts)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
