// Package mock provides function-field test doubles for the lexcrawl
// interfaces.
package mock

import (
	"context"

	"github.com/lexcrawl/lexcrawl"
)

var _ lexcrawl.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of lexcrawl.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string, opts *lexcrawl.FetchOptions) (*lexcrawl.FetchResult, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string, opts *lexcrawl.FetchOptions) (*lexcrawl.FetchResult, error) {
	return f.FetchFn(ctx, url, opts)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}

var _ lexcrawl.Detector = (*Detector)(nil)

// Detector is a mock implementation of lexcrawl.Detector.
type Detector struct {
	NeedsBrowserFn func(html string) bool
}

func (d *Detector) NeedsBrowser(html string) bool {
	return d.NeedsBrowserFn(html)
}
