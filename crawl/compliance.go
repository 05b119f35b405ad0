// Package crawl orchestrates compliant fetching and batch scraping: robots
// policy, per-domain pacing, browser escalation, and the pipeline that
// drives extraction across a batch of sources.
package crawl

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/lexcrawl/lexcrawl"
)

var _ lexcrawl.Fetcher = (*ComplianceFetcher)(nil)

// ComplianceFetcher wraps a static fetcher with robots.txt policy,
// per-domain pacing, and headless-browser escalation. The fetch path is:
// robots check, crawl-delay wait, static fetch, then a browser re-fetch
// when the static result is blocked (403/406) or looks like a JavaScript
// shell.
type ComplianceFetcher struct {
	static   lexcrawl.Fetcher
	browser  lexcrawl.Fetcher
	detector lexcrawl.Detector
	robots   lexcrawl.RobotsService
	limiter  lexcrawl.DomainLimiter
	logger   *slog.Logger
}

// ComplianceOption configures a ComplianceFetcher.
type ComplianceOption func(*ComplianceFetcher)

// WithBrowser provides the headless-browser fetcher used for escalation.
// Without one, blocked pages fail with their original error.
func WithBrowser(browser lexcrawl.Fetcher) ComplianceOption {
	return func(c *ComplianceFetcher) { c.browser = browser }
}

// WithDetector provides the JavaScript-shell heuristic. Without one, only
// blocked statuses escalate.
func WithDetector(detector lexcrawl.Detector) ComplianceOption {
	return func(c *ComplianceFetcher) { c.detector = detector }
}

// WithComplianceLogger sets the logger for escalation and policy events.
func WithComplianceLogger(logger *slog.Logger) ComplianceOption {
	return func(c *ComplianceFetcher) { c.logger = logger }
}

// NewComplianceFetcher combines the static fetcher with robots policy and
// the per-domain limiter.
func NewComplianceFetcher(static lexcrawl.Fetcher, robots lexcrawl.RobotsService, limiter lexcrawl.DomainLimiter, opts ...ComplianceOption) *ComplianceFetcher {
	c := &ComplianceFetcher{
		static:  static,
		robots:  robots,
		limiter: limiter,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves the URL under the domain's policy. A robots.txt disallow
// fails with EROBOTS and is never retried or escalated.
func (c *ComplianceFetcher) Fetch(ctx context.Context, rawURL string, opts *lexcrawl.FetchOptions) (*lexcrawl.FetchResult, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, lexcrawl.Errorf(lexcrawl.EINVALID, "invalid url %q", rawURL)
	}
	domain := u.Host

	allowed, err := c.robots.Allowed(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, lexcrawl.Errorf(lexcrawl.EROBOTS, "disallowed by robots.txt: %s", rawURL)
	}

	// Install the domain's crawl delay before pacing this request.
	if rules, err := c.robots.Rules(ctx, domain); err == nil {
		c.limiter.SetDelay(domain, lexcrawl.CrawlInterval(rules))
	}
	if err := c.limiter.Wait(ctx, domain); err != nil {
		return nil, err
	}

	result, err := c.static.Fetch(ctx, rawURL, opts)
	switch {
	case err != nil && lexcrawl.ErrorCode(err) == lexcrawl.EBLOCKED:
		return c.escalate(ctx, rawURL, opts, err)
	case err != nil:
		return nil, err
	}

	if c.detector != nil && result.Kind() == lexcrawl.KindHTML && c.detector.NeedsBrowser(result.Markup()) {
		return c.escalate(ctx, rawURL, opts, nil)
	}
	return result, nil
}

// escalate re-fetches through the browser. When no browser is configured
// the static outcome stands.
func (c *ComplianceFetcher) escalate(ctx context.Context, rawURL string, opts *lexcrawl.FetchOptions, cause error) (*lexcrawl.FetchResult, error) {
	if c.browser == nil {
		if cause != nil {
			return nil, cause
		}
		return nil, lexcrawl.Errorf(lexcrawl.EBLOCKED, "page requires JavaScript rendering: %s", rawURL)
	}
	c.logger.Info("escalating to browser fetch",
		slog.String("url", rawURL),
		slog.Bool("blocked", cause != nil),
	)
	return c.browser.Fetch(ctx, rawURL, opts)
}

// Close releases both underlying fetchers.
func (c *ComplianceFetcher) Close() error {
	err := c.static.Close()
	if c.browser != nil {
		if berr := c.browser.Close(); err == nil {
			err = berr
		}
	}
	return err
}
