package robots_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcrawl/lexcrawl"
	"github.com/lexcrawl/lexcrawl/robots"
)

// Ensure Service implements lexcrawl.RobotsService at compile time.
var _ lexcrawl.RobotsService = (*robots.Service)(nil)

// memCache is an in-memory RobotsCache for tests.
type memCache struct {
	mu    sync.Mutex
	rules map[string]*lexcrawl.RobotsRules
	puts  int
}

func newMemCache() *memCache {
	return &memCache{rules: make(map[string]*lexcrawl.RobotsRules)}
}

func (c *memCache) GetRobots(domain string) (*lexcrawl.RobotsRules, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rules[domain]
	return r, ok, nil
}

func (c *memCache) PutRobots(rules *lexcrawl.RobotsRules) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules[rules.Domain] = rules
	c.puts++
	return nil
}

func serve(t *testing.T, robotsTxt string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
		w.Write([]byte(robotsTxt))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestService_Rules(t *testing.T) {
	t.Parallel()

	t.Run("parses crawl delay and request rate", func(t *testing.T) {
		t.Parallel()

		srv := serve(t, "User-agent: *\nCrawl-delay: 2\nRequest-rate: 1/5\nDisallow: /private/\n", http.StatusOK)

		svc := robots.NewService(newMemCache(), robots.WithClient(srv.Client()))
		rules, err := svc.Rules(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, rules.CrawlDelay)
		assert.InDelta(t, 0.2, rules.RequestRate, 0.0001)
		assert.NotEmpty(t, rules.Raw)
	})

	t.Run("missing robots.txt yields permissive rules, not an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		t.Cleanup(srv.Close)

		svc := robots.NewService(newMemCache(), robots.WithClient(srv.Client()))
		rules, err := svc.Rules(context.Background(), srv.URL)

		require.NoError(t, err)
		assert.Empty(t, rules.Raw)
		assert.Zero(t, rules.CrawlDelay)
	})

	t.Run("serves from cache within the TTL", func(t *testing.T) {
		t.Parallel()

		requests := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.Write([]byte("User-agent: *\nDisallow:\n"))
		}))
		t.Cleanup(srv.Close)

		cache := newMemCache()
		svc := robots.NewService(cache, robots.WithClient(srv.Client()))

		_, err := svc.Rules(context.Background(), srv.URL)
		require.NoError(t, err)
		_, err = svc.Rules(context.Background(), srv.URL)
		require.NoError(t, err)

		assert.Equal(t, 1, requests)
		assert.Equal(t, 1, cache.puts)
	})

	t.Run("expired cache entries are refetched", func(t *testing.T) {
		t.Parallel()

		requests := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.Write([]byte("User-agent: *\nDisallow:\n"))
		}))
		t.Cleanup(srv.Close)

		svc := robots.NewService(newMemCache(), robots.WithClient(srv.Client()), robots.WithTTL(time.Nanosecond))

		_, err := svc.Rules(context.Background(), srv.URL)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
		_, err = svc.Rules(context.Background(), srv.URL)
		require.NoError(t, err)

		assert.Equal(t, 2, requests)
	})
}

func TestService_Allowed(t *testing.T) {
	t.Parallel()

	t.Run("honors disallow rules for the configured agent", func(t *testing.T) {
		t.Parallel()

		srv := serve(t, "User-agent: *\nDisallow: /private/\n", http.StatusOK)

		svc := robots.NewService(newMemCache(), robots.WithClient(srv.Client()))

		allowed, err := svc.Allowed(context.Background(), srv.URL+"/documents/act-1.html")
		require.NoError(t, err)
		assert.True(t, allowed)

		blocked, err := svc.Allowed(context.Background(), srv.URL+"/private/draft.html")
		require.NoError(t, err)
		assert.False(t, blocked)
	})

	t.Run("permissive when robots.txt is absent", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.NotFoundHandler())
		t.Cleanup(srv.Close)

		svc := robots.NewService(newMemCache(), robots.WithClient(srv.Client()))

		allowed, err := svc.Allowed(context.Background(), srv.URL+"/anything")
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("rejects malformed URLs", func(t *testing.T) {
		t.Parallel()

		svc := robots.NewService(newMemCache())
		_, err := svc.Allowed(context.Background(), "not-a-url")
		require.Error(t, err)
		assert.Equal(t, lexcrawl.EINVALID, lexcrawl.ErrorCode(err))
	})
}
