package crawl

import (
	"context"
	"log/slog"

	"github.com/lexcrawl/lexcrawl"
)

// DiscoverOptions controls a discovery run.
type DiscoverOptions struct {
	// Filter restricts discovered URLs when non-nil.
	Filter *lexcrawl.URLFilter

	// Priority is assigned to every registered source, 1 to 5. Defaults
	// to 3.
	Priority int

	// ExpectedURLs sizes the deduplication filter. Defaults to 100000.
	ExpectedURLs uint
}

// Discoverer walks a site's sitemaps and registers the URLs it finds as
// candidate sources. Duplicate URLs within a run are dropped by the
// frontier; duplicates across runs are a no-op at the source service.
type Discoverer struct {
	Sitemaps lexcrawl.SitemapService
	Sources  lexcrawl.SourceService
	Logger   *slog.Logger
}

// NewDiscoverer creates a Discoverer over the given services.
func NewDiscoverer(sitemaps lexcrawl.SitemapService, sources lexcrawl.SourceService) *Discoverer {
	return &Discoverer{
		Sitemaps: sitemaps,
		Sources:  sources,
		Logger:   slog.Default(),
	}
}

// Discover finds URLs under baseURL via sitemaps and registers each as a
// source. Returns the number of sources registered.
func (d *Discoverer) Discover(ctx context.Context, baseURL string, opts DiscoverOptions) (int, error) {
	if opts.Priority == 0 {
		opts.Priority = 3
	}
	if opts.ExpectedURLs == 0 {
		opts.ExpectedURLs = 100000
	}

	urls, err := d.Sitemaps.DiscoverURLs(ctx, baseURL, opts.Filter)
	if err != nil {
		return 0, err
	}
	d.Logger.Info("sitemap discovery finished",
		slog.String("base_url", baseURL),
		slog.Int("urls", len(urls)),
	)

	frontier := NewFrontier(opts.ExpectedURLs, 0.01)
	for _, u := range urls {
		frontier.Push(&lexcrawl.Source{
			URL:      u,
			Priority: opts.Priority,
			Status:   lexcrawl.StatusNew,
		})
	}

	registered := 0
	for {
		source, ok := frontier.Pop()
		if !ok {
			break
		}
		if err := source.Validate(); err != nil {
			d.Logger.Warn("skipping invalid source",
				slog.String("url", source.URL),
				slog.String("error", err.Error()),
			)
			continue
		}
		if err := d.Sources.CreateSource(ctx, source); err != nil {
			return registered, err
		}
		registered++
	}
	return registered, nil
}
