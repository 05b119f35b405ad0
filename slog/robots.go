package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/lexcrawl/lexcrawl"
)

// Ensure LoggingRobotsService implements lexcrawl.RobotsService.
var _ lexcrawl.RobotsService = (*LoggingRobotsService)(nil)

// LoggingRobotsService wraps a RobotsService with policy-decision logging.
type LoggingRobotsService struct {
	next   lexcrawl.RobotsService
	logger *slog.Logger
}

// NewLoggingRobotsService creates a new LoggingRobotsService.
func NewLoggingRobotsService(next lexcrawl.RobotsService, logger *slog.Logger) *LoggingRobotsService {
	return &LoggingRobotsService{next: next, logger: logger}
}

// Rules delegates to the wrapped service.
func (s *LoggingRobotsService) Rules(ctx context.Context, domain string) (*lexcrawl.RobotsRules, error) {
	return s.next.Rules(ctx, domain)
}

// Allowed delegates to the wrapped service and logs denials.
func (s *LoggingRobotsService) Allowed(ctx context.Context, rawURL string) (allowed bool, err error) {
	defer func(begin time.Time) {
		if err == nil && allowed {
			return
		}
		s.logger.Info("robots policy",
			"url", rawURL,
			"allowed", allowed,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Allowed(ctx, rawURL)
}
