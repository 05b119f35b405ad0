package lexcrawl

import (
	"bytes"
	"context"
	"strings"
	"time"
)

// ContentKind classifies fetched content.
type ContentKind string

// Content kinds detected after a fetch.
const (
	KindHTML  ContentKind = "html"
	KindPDF   ContentKind = "pdf"
	KindOther ContentKind = "other"
)

// FetchOptions carries per-request options shared by all fetcher
// implementations.
type FetchOptions struct {
	// Headers are merged over the fetcher's defaults.
	Headers map[string]string

	// Timeout overrides the fetcher's default request timeout when > 0.
	Timeout time.Duration
}

// FetchResult is the raw outcome of one fetch.
type FetchResult struct {
	URL         string
	Status      int
	ContentType string
	Body        []byte
}

// Markup returns the body as a string.
func (r *FetchResult) Markup() string {
	return string(r.Body)
}

// Kind classifies the content from the Content-Type header, falling back to
// magic-byte sniffing for PDFs served with a generic type.
func (r *FetchResult) Kind() ContentKind {
	ct := strings.ToLower(r.ContentType)
	switch {
	case strings.Contains(ct, "text/html"), strings.Contains(ct, "application/xhtml"):
		return KindHTML
	case strings.Contains(ct, "application/pdf"), bytes.HasPrefix(r.Body, []byte("%PDF-")):
		return KindPDF
	default:
		return KindOther
	}
}

// Fetcher retrieves raw markup for a URL. Implementations may use a plain
// HTTP client or browser automation for JavaScript-rendered content. Both
// honor the same contract: return the raw markup or a coded error
// (ENETWORK, ERATELIMIT, EBLOCKED, ENOTFOUND).
type Fetcher interface {
	// Fetch retrieves the URL. The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string, opts *FetchOptions) (*FetchResult, error)

	// Close releases client resources.
	Close() error
}

// Detector decides whether markup needs a headless-browser re-fetch to
// render its real content.
type Detector interface {
	NeedsBrowser(html string) bool
}

// DomainLimiter enforces per-domain crawl delays.
type DomainLimiter interface {
	// Wait blocks until the domain's delay allows another request.
	// Returns an error if the context is canceled first.
	Wait(ctx context.Context, domain string) error

	// SetDelay installs the minimum interval between requests to a domain,
	// typically derived from its robots.txt crawl-delay.
	SetDelay(domain string, delay time.Duration)
}

// RobotsRules holds a domain's cached robots.txt text plus the values
// derived from it for the configured user agent. This is the on-disk cache
// document format.
type RobotsRules struct {
	Domain      string        `json:"domain"`
	Raw         string        `json:"raw"`
	CrawlDelay  time.Duration `json:"crawl_delay"`
	RequestRate float64       `json:"request_rate"`
	FetchedAt   time.Time     `json:"fetched_at"`
}

// CrawlInterval derives the minimum interval between requests to a domain
// from its robots rules: an explicit crawl-delay wins, then the request
// rate, then zero (no domain-specific pacing).
func CrawlInterval(r *RobotsRules) time.Duration {
	if r == nil {
		return 0
	}
	if r.CrawlDelay > 0 {
		return r.CrawlDelay
	}
	if r.RequestRate > 0 {
		return time.Duration(float64(time.Second) / r.RequestRate)
	}
	return 0
}

// RobotsService supplies per-domain robots.txt policy, caching parsed rules
// on disk keyed by domain.
type RobotsService interface {
	// Rules returns the domain's rules, fetching and caching robots.txt on
	// a cache miss. A missing or unreachable robots.txt yields permissive
	// rules, not an error.
	Rules(ctx context.Context, domain string) (*RobotsRules, error)

	// Allowed reports whether the URL's path may be fetched.
	Allowed(ctx context.Context, rawURL string) (bool, error)
}

// RobotsCache persists parsed robots rules keyed by domain. Concurrent
// writes for the same domain are acceptable: content is idempotent and the
// last writer wins.
type RobotsCache interface {
	GetRobots(domain string) (*RobotsRules, bool, error)
	PutRobots(rules *RobotsRules) error
}
