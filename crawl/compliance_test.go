package crawl_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcrawl/lexcrawl"
	"github.com/lexcrawl/lexcrawl/crawl"
	"github.com/lexcrawl/lexcrawl/mock"
)

func allowAll() *mock.RobotsService {
	return &mock.RobotsService{
		RulesFn: func(ctx context.Context, domain string) (*lexcrawl.RobotsRules, error) {
			return &lexcrawl.RobotsRules{Domain: domain}, nil
		},
		AllowedFn: func(ctx context.Context, rawURL string) (bool, error) {
			return true, nil
		},
	}
}

func htmlResult(url, body string) *lexcrawl.FetchResult {
	return &lexcrawl.FetchResult{
		URL:         url,
		Status:      200,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(body),
	}
}

func TestComplianceFetcher(t *testing.T) {
	t.Parallel()

	t.Run("fetches allowed URLs through the static client", func(t *testing.T) {
		t.Parallel()

		static := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string, opts *lexcrawl.FetchOptions) (*lexcrawl.FetchResult, error) {
				return htmlResult(url, "<html><body>ok</body></html>"), nil
			},
		}
		fetcher := crawl.NewComplianceFetcher(static, allowAll(), &mock.DomainLimiter{})

		result, err := fetcher.Fetch(context.Background(), "https://laws.example/act/1", nil)
		require.NoError(t, err)
		assert.Equal(t, "https://laws.example/act/1", result.URL)
	})

	t.Run("disallowed URLs fail with EROBOTS before any fetch", func(t *testing.T) {
		t.Parallel()

		static := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string, opts *lexcrawl.FetchOptions) (*lexcrawl.FetchResult, error) {
				t.Fatal("static fetch must not run")
				return nil, nil
			},
		}
		robots := allowAll()
		robots.AllowedFn = func(ctx context.Context, rawURL string) (bool, error) {
			return false, nil
		}
		fetcher := crawl.NewComplianceFetcher(static, robots, &mock.DomainLimiter{})

		_, err := fetcher.Fetch(context.Background(), "https://laws.example/private", nil)
		assert.Equal(t, lexcrawl.EROBOTS, lexcrawl.ErrorCode(err))
	})

	t.Run("installs the crawl delay and waits before fetching", func(t *testing.T) {
		t.Parallel()

		robots := allowAll()
		robots.RulesFn = func(ctx context.Context, domain string) (*lexcrawl.RobotsRules, error) {
			return &lexcrawl.RobotsRules{Domain: domain, CrawlDelay: 2 * time.Second}, nil
		}

		var installed time.Duration
		var waited string
		limiter := &mock.DomainLimiter{
			SetDelayFn: func(domain string, delay time.Duration) { installed = delay },
			WaitFn: func(ctx context.Context, domain string) error {
				waited = domain
				return nil
			},
		}
		static := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string, opts *lexcrawl.FetchOptions) (*lexcrawl.FetchResult, error) {
				return htmlResult(url, "ok"), nil
			},
		}

		_, err := crawl.NewComplianceFetcher(static, robots, limiter).
			Fetch(context.Background(), "https://laws.example/act/1", nil)
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, installed)
		assert.Equal(t, "laws.example", waited)
	})

	t.Run("blocked responses escalate to the browser", func(t *testing.T) {
		t.Parallel()

		static := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string, opts *lexcrawl.FetchOptions) (*lexcrawl.FetchResult, error) {
				return nil, lexcrawl.Errorf(lexcrawl.EBLOCKED, "blocked: status 403")
			},
		}
		browser := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string, opts *lexcrawl.FetchOptions) (*lexcrawl.FetchResult, error) {
				return htmlResult(url, "<html><body>rendered</body></html>"), nil
			},
		}
		fetcher := crawl.NewComplianceFetcher(static, allowAll(), &mock.DomainLimiter{},
			crawl.WithBrowser(browser))

		result, err := fetcher.Fetch(context.Background(), "https://laws.example/act/1", nil)
		require.NoError(t, err)
		assert.Contains(t, result.Markup(), "rendered")
	})

	t.Run("javascript shells escalate to the browser", func(t *testing.T) {
		t.Parallel()

		static := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string, opts *lexcrawl.FetchOptions) (*lexcrawl.FetchResult, error) {
				return htmlResult(url, `<html><body><div id="root"></div></body></html>`), nil
			},
		}
		browser := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string, opts *lexcrawl.FetchOptions) (*lexcrawl.FetchResult, error) {
				return htmlResult(url, "<html><body>rendered</body></html>"), nil
			},
		}
		detector := &mock.Detector{NeedsBrowserFn: func(html string) bool { return true }}
		fetcher := crawl.NewComplianceFetcher(static, allowAll(), &mock.DomainLimiter{},
			crawl.WithBrowser(browser), crawl.WithDetector(detector))

		result, err := fetcher.Fetch(context.Background(), "https://laws.example/act/1", nil)
		require.NoError(t, err)
		assert.Contains(t, result.Markup(), "rendered")
	})

	t.Run("blocked responses without a browser keep their error", func(t *testing.T) {
		t.Parallel()

		static := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string, opts *lexcrawl.FetchOptions) (*lexcrawl.FetchResult, error) {
				return nil, lexcrawl.Errorf(lexcrawl.EBLOCKED, "blocked: status 403")
			},
		}
		fetcher := crawl.NewComplianceFetcher(static, allowAll(), &mock.DomainLimiter{})

		_, err := fetcher.Fetch(context.Background(), "https://laws.example/act/1", nil)
		assert.Equal(t, lexcrawl.EBLOCKED, lexcrawl.ErrorCode(err))
	})

	t.Run("rejects unparseable URLs", func(t *testing.T) {
		t.Parallel()

		static := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string, opts *lexcrawl.FetchOptions) (*lexcrawl.FetchResult, error) {
				return nil, nil
			},
		}
		fetcher := crawl.NewComplianceFetcher(static, allowAll(), &mock.DomainLimiter{})

		_, err := fetcher.Fetch(context.Background(), "not-a-url", nil)
		assert.Equal(t, lexcrawl.EINVALID, lexcrawl.ErrorCode(err))
	})
}
