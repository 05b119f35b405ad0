package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/lexcrawl/lexcrawl"
)

// Ensure LoggingSitemapService implements lexcrawl.SitemapService.
var _ lexcrawl.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService wraps a SitemapService with discovery logging.
type LoggingSitemapService struct {
	next   lexcrawl.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next lexcrawl.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverURLs delegates to the wrapped service and logs candidate counts
// and filtering, so slow or empty legal portals are visible in the output.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *lexcrawl.URLFilter) (urls []string, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"url", baseURL,
			"candidates", len(urls),
			"filtered", filter != nil,
			"duration", time.Since(begin),
		}
		if err != nil {
			s.logger.Error("sitemap discovery failed", append(attrs, "err", err)...)
			return
		}
		if len(urls) == 0 {
			s.logger.Warn("sitemap discovery found nothing", attrs...)
			return
		}
		s.logger.Info("sitemap discovery", attrs...)
	}(time.Now())
	return s.next.DiscoverURLs(ctx, baseURL, filter)
}
