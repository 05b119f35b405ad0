// Package rod fetches JavaScript-rendered pages through headless Chrome.
package rod

import (
	"context"

	"github.com/go-rod/rod/lib/proto"

	"github.com/lexcrawl/lexcrawl"
)

var _ lexcrawl.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using browser automation. The underlying
// browser is recycled periodically to bound Chrome's memory growth. Safe for
// concurrent use.
type Fetcher struct {
	manager *BrowserManager
}

// NewFetcher launches a headless browser. Close must be called when the
// Fetcher is no longer needed.
func NewFetcher(opts ...ManagerOption) (*Fetcher, error) {
	manager, err := NewBrowserManager(opts...)
	if err != nil {
		return nil, err
	}
	return &Fetcher{manager: manager}, nil
}

// Fetch navigates to the URL, waits for the load event, and returns the
// rendered HTML. Rendered output is always reported as HTML content.
func (f *Fetcher) Fetch(ctx context.Context, url string, opts *lexcrawl.FetchOptions) (*lexcrawl.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts != nil && opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	page, err := f.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, lexcrawl.Errorf(lexcrawl.ENETWORK, "opening browser page: %s", err)
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return nil, lexcrawl.Errorf(lexcrawl.ENETWORK, "navigating to %s: %s", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, lexcrawl.Errorf(lexcrawl.ENETWORK, "waiting for %s to load: %s", url, err)
	}
	html, err := page.HTML()
	if err != nil {
		return nil, lexcrawl.Errorf(lexcrawl.EINTERNAL, "reading rendered HTML of %s: %s", url, err)
	}
	f.manager.PageDone()

	return &lexcrawl.FetchResult{
		URL:         url,
		Status:      200,
		ContentType: "text/html",
		Body:        []byte(html),
	}, nil
}

// LauncherPID exposes the browser launcher's process ID for cleanup checks.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}

// Close shuts down the browser.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}
