package mock

import (
	"context"
	"time"

	"github.com/lexcrawl/lexcrawl"
)

var _ lexcrawl.RobotsService = (*RobotsService)(nil)

// RobotsService is a mock implementation of lexcrawl.RobotsService.
type RobotsService struct {
	RulesFn   func(ctx context.Context, domain string) (*lexcrawl.RobotsRules, error)
	AllowedFn func(ctx context.Context, rawURL string) (bool, error)
}

func (s *RobotsService) Rules(ctx context.Context, domain string) (*lexcrawl.RobotsRules, error) {
	return s.RulesFn(ctx, domain)
}

func (s *RobotsService) Allowed(ctx context.Context, rawURL string) (bool, error) {
	return s.AllowedFn(ctx, rawURL)
}

var _ lexcrawl.RobotsCache = (*RobotsCache)(nil)

// RobotsCache is a mock implementation of lexcrawl.RobotsCache.
type RobotsCache struct {
	GetRobotsFn func(domain string) (*lexcrawl.RobotsRules, bool, error)
	PutRobotsFn func(rules *lexcrawl.RobotsRules) error
}

func (c *RobotsCache) GetRobots(domain string) (*lexcrawl.RobotsRules, bool, error) {
	return c.GetRobotsFn(domain)
}

func (c *RobotsCache) PutRobots(rules *lexcrawl.RobotsRules) error {
	return c.PutRobotsFn(rules)
}

var _ lexcrawl.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of lexcrawl.DomainLimiter.
type DomainLimiter struct {
	WaitFn     func(ctx context.Context, domain string) error
	SetDelayFn func(domain string, delay time.Duration)
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	if l.WaitFn == nil {
		return nil
	}
	return l.WaitFn(ctx, domain)
}

func (l *DomainLimiter) SetDelay(domain string, delay time.Duration) {
	if l.SetDelayFn != nil {
		l.SetDelayFn(domain, delay)
	}
}
