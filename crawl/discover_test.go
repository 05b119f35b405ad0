package crawl_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcrawl/lexcrawl"
	"github.com/lexcrawl/lexcrawl/crawl"
	"github.com/lexcrawl/lexcrawl/mock"
)

// recordingSources collects created sources for assertions.
type recordingSources struct {
	mu      sync.Mutex
	created []*lexcrawl.Source
}

func (r *recordingSources) service() *mock.SourceService {
	return &mock.SourceService{
		CreateSourceFn: func(ctx context.Context, source *lexcrawl.Source) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.created = append(r.created, source)
			return nil
		},
	}
}

func (r *recordingSources) urls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var urls []string
	for _, s := range r.created {
		urls = append(urls, s.URL)
	}
	return urls
}

func TestDiscoverer(t *testing.T) {
	t.Parallel()

	t.Run("registers deduplicated sitemap URLs", func(t *testing.T) {
		t.Parallel()

		sitemaps := &mock.SitemapService{
			DiscoverURLsFn: func(ctx context.Context, baseURL string, filter *lexcrawl.URLFilter) ([]string, error) {
				return []string{
					"https://laws.example/act/1",
					"https://laws.example/act/2",
					"https://laws.example/act/1#section-3",
				}, nil
			},
		}
		recorder := &recordingSources{}

		n, err := crawl.NewDiscoverer(sitemaps, recorder.service()).
			Discover(context.Background(), "https://laws.example", crawl.DiscoverOptions{Priority: 4})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, []string{
			"https://laws.example/act/1",
			"https://laws.example/act/2",
		}, recorder.urls())
		for _, source := range recorder.created {
			assert.Equal(t, 4, source.Priority)
			assert.Equal(t, lexcrawl.StatusNew, source.Status)
		}
	})

	t.Run("skips URLs that fail validation", func(t *testing.T) {
		t.Parallel()

		sitemaps := &mock.SitemapService{
			DiscoverURLsFn: func(ctx context.Context, baseURL string, filter *lexcrawl.URLFilter) ([]string, error) {
				return []string{"ftp://laws.example/act/1", "https://laws.example/act/2"}, nil
			},
		}
		recorder := &recordingSources{}

		n, err := crawl.NewDiscoverer(sitemaps, recorder.service()).
			Discover(context.Background(), "https://laws.example", crawl.DiscoverOptions{})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, []string{"https://laws.example/act/2"}, recorder.urls())
	})

	t.Run("propagates sitemap discovery errors", func(t *testing.T) {
		t.Parallel()

		sitemaps := &mock.SitemapService{
			DiscoverURLsFn: func(ctx context.Context, baseURL string, filter *lexcrawl.URLFilter) ([]string, error) {
				return nil, lexcrawl.Errorf(lexcrawl.ENETWORK, "sitemap fetch failed")
			},
		}
		recorder := &recordingSources{}

		_, err := crawl.NewDiscoverer(sitemaps, recorder.service()).
			Discover(context.Background(), "https://laws.example", crawl.DiscoverOptions{})
		assert.Equal(t, lexcrawl.ENETWORK, lexcrawl.ErrorCode(err))
		assert.Empty(t, recorder.urls())
	})
}
