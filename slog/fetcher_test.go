package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcrawl/lexcrawl"
	lexslog "github.com/lexcrawl/lexcrawl/slog"
	"github.com/lexcrawl/lexcrawl/mock"
)

func TestLoggingFetcher(t *testing.T) {
	t.Parallel()

	t.Run("logs url, size, and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string, opts *lexcrawl.FetchOptions) (*lexcrawl.FetchResult, error) {
				return &lexcrawl.FetchResult{URL: url, Status: 200, Body: []byte("12345")}, nil
			},
		}

		result, err := lexslog.NewLoggingFetcher(inner, logger).
			Fetch(context.Background(), "https://laws.example/act/1", nil)
		require.NoError(t, err)
		assert.Equal(t, "https://laws.example/act/1", result.URL)

		output := buf.String()
		assert.Contains(t, output, "fetch")
		assert.Contains(t, output, "url=https://laws.example/act/1")
		assert.Contains(t, output, "bytes=5")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs errors", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string, opts *lexcrawl.FetchOptions) (*lexcrawl.FetchResult, error) {
				return nil, lexcrawl.Errorf(lexcrawl.ENETWORK, "connection refused")
			},
		}

		_, err := lexslog.NewLoggingFetcher(inner, logger).
			Fetch(context.Background(), "https://laws.example/act/1", nil)
		require.Error(t, err)
		assert.Contains(t, buf.String(), "connection refused")
	})
}

func TestLoggingRobotsService(t *testing.T) {
	t.Parallel()

	t.Run("logs denials only", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.RobotsService{
			AllowedFn: func(ctx context.Context, rawURL string) (bool, error) {
				return rawURL != "https://laws.example/private", nil
			},
		}
		svc := lexslog.NewLoggingRobotsService(inner, logger)

		allowed, err := svc.Allowed(context.Background(), "https://laws.example/act/1")
		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Empty(t, buf.String())

		allowed, err = svc.Allowed(context.Background(), "https://laws.example/private")
		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Contains(t, buf.String(), "allowed=false")
	})
}

func TestLoggingSitemapService(t *testing.T) {
	t.Parallel()

	t.Run("logs discovery count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.SitemapService{
			DiscoverURLsFn: func(ctx context.Context, baseURL string, filter *lexcrawl.URLFilter) ([]string, error) {
				return []string{"https://laws.example/act/1", "https://laws.example/act/2"}, nil
			},
		}

		urls, err := lexslog.NewLoggingSitemapService(inner, logger).
			DiscoverURLs(context.Background(), "https://laws.example", nil)
		require.NoError(t, err)
		assert.Len(t, urls, 2)

		output := buf.String()
		assert.Contains(t, output, "sitemap discovery")
		assert.Contains(t, output, "candidates=2")
	})
}
