package crawl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcrawl/lexcrawl"
	"github.com/lexcrawl/lexcrawl/crawl"
)

func TestFrontier(t *testing.T) {
	t.Parallel()

	t.Run("pops by priority then insertion order", func(t *testing.T) {
		t.Parallel()

		frontier := crawl.NewFrontier(100, 0.01)
		frontier.Push(&lexcrawl.Source{URL: "https://a.example/low", Priority: 1})
		frontier.Push(&lexcrawl.Source{URL: "https://a.example/high", Priority: 5})
		frontier.Push(&lexcrawl.Source{URL: "https://a.example/mid-1", Priority: 3})
		frontier.Push(&lexcrawl.Source{URL: "https://a.example/mid-2", Priority: 3})

		var urls []string
		for {
			source, ok := frontier.Pop()
			if !ok {
				break
			}
			urls = append(urls, source.URL)
		}
		assert.Equal(t, []string{
			"https://a.example/high",
			"https://a.example/mid-1",
			"https://a.example/mid-2",
			"https://a.example/low",
		}, urls)
	})

	t.Run("drops duplicates including fragment variants", func(t *testing.T) {
		t.Parallel()

		frontier := crawl.NewFrontier(100, 0.01)
		assert.True(t, frontier.Push(&lexcrawl.Source{URL: "https://a.example/page", Priority: 3}))
		assert.False(t, frontier.Push(&lexcrawl.Source{URL: "https://a.example/page", Priority: 3}))
		assert.False(t, frontier.Push(&lexcrawl.Source{URL: "https://a.example/page#section-2", Priority: 3}))
		assert.Equal(t, 1, frontier.Len())
	})

	t.Run("strips fragments from queued URLs", func(t *testing.T) {
		t.Parallel()

		frontier := crawl.NewFrontier(100, 0.01)
		frontier.Push(&lexcrawl.Source{URL: "https://a.example/page#top", Priority: 3})

		source, ok := frontier.Pop()
		require.True(t, ok)
		assert.Equal(t, "https://a.example/page", source.URL)
	})

	t.Run("pop on empty frontier reports false", func(t *testing.T) {
		t.Parallel()

		_, ok := crawl.NewFrontier(10, 0.01).Pop()
		assert.False(t, ok)
	})
}
