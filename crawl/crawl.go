package crawl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/lexcrawl/lexcrawl"
	"github.com/lexcrawl/lexcrawl/pipeline"
	"github.com/lexcrawl/lexcrawl/retry"
)

// ContentHash fingerprints document content for change detection.
func ContentHash(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// Result summarizes one batch run.
type Result struct {
	// Fetched counts sources whose fetch succeeded, possibly after retries.
	Fetched int

	// Saved counts documents persisted, including failure records.
	Saved int

	// Failed counts sources that ended in an error status.
	Failed int
}

// Crawler drains due sources through a fetch, process, store pipeline.
// Fetching runs a worker pool over the compliance fetcher with classified
// retry; processing extracts main content, converts it to Markdown, and
// replays learned metadata rules under the shared CPU executor; storing
// persists documents and settles source statuses on a single worker.
type Crawler struct {
	sources   lexcrawl.SourceService
	documents lexcrawl.DocumentService
	fetcher   lexcrawl.Fetcher

	scraper   lexcrawl.Scraper
	extractor lexcrawl.Extractor
	converter lexcrawl.Converter

	errors *retry.Log
	logger *slog.Logger

	fetchWorkers int
	maxRetries   int
	retryBase    time.Duration
}

// CrawlerOption configures a Crawler.
type CrawlerOption func(*Crawler)

// WithScraper sets the rule scraper used to capture per-page metadata.
func WithScraper(scraper lexcrawl.Scraper) CrawlerOption {
	return func(c *Crawler) { c.scraper = scraper }
}

// WithExtractor sets the main-content extractor.
func WithExtractor(extractor lexcrawl.Extractor) CrawlerOption {
	return func(c *Crawler) { c.extractor = extractor }
}

// WithConverter sets the HTML to Markdown converter.
func WithConverter(converter lexcrawl.Converter) CrawlerOption {
	return func(c *Crawler) { c.converter = converter }
}

// WithErrorLog sets the session error log fed by fetch retries.
func WithErrorLog(log *retry.Log) CrawlerOption {
	return func(c *Crawler) { c.errors = log }
}

// WithCrawlerLogger sets the logger for batch progress and faults.
func WithCrawlerLogger(logger *slog.Logger) CrawlerOption {
	return func(c *Crawler) { c.logger = logger }
}

// WithFetchWorkers sets the fetch stage pool size. Defaults to 4.
func WithFetchWorkers(n int) CrawlerOption {
	return func(c *Crawler) {
		if n > 0 {
			c.fetchWorkers = n
		}
	}
}

// WithMaxRetries bounds fetch retries per source. Defaults to 3.
func WithMaxRetries(n int) CrawlerOption {
	return func(c *Crawler) { c.maxRetries = n }
}

// WithRetryBase sets the fetch backoff unit. Defaults to one second.
func WithRetryBase(d time.Duration) CrawlerOption {
	return func(c *Crawler) { c.retryBase = d }
}

// NewCrawler wires the batch crawler over its services.
func NewCrawler(sources lexcrawl.SourceService, documents lexcrawl.DocumentService, fetcher lexcrawl.Fetcher, opts ...CrawlerOption) *Crawler {
	c := &Crawler{
		sources:      sources,
		documents:    documents,
		fetcher:      fetcher,
		errors:       retry.NewLog(),
		logger:       slog.Default(),
		fetchWorkers: 4,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Errors returns the session error log accumulated across runs.
func (c *Crawler) Errors() *retry.Log {
	return c.errors
}

// Run drains up to batchSize due sources through the pipeline and blocks
// until the batch settles. Per-source failures become error-status sources
// and failure documents; Run itself fails only on service errors or context
// cancellation.
func (c *Crawler) Run(ctx context.Context, batchSize int) (*Result, error) {
	due, err := c.sources.FindDue(ctx, batchSize)
	if err != nil {
		return nil, err
	}
	if len(due) == 0 {
		return &Result{}, nil
	}

	items := make([]any, 0, len(due))
	for _, source := range due {
		if err := c.sources.UpdateStatus(ctx, source.ID, lexcrawl.StatusProcessing); err != nil {
			return nil, err
		}
		items = append(items, source)
	}
	c.logger.Info("starting batch", slog.Int("sources", len(due)))

	var fetched, saved, failed atomic.Int64
	stages := []pipeline.Stage{
		{
			Name:    "fetch",
			Workers: c.fetchWorkers,
			Handler: func(ctx context.Context, item any) (any, error) {
				return c.fetch(ctx, item.(*lexcrawl.Source), &fetched), nil
			},
			Downstream: []string{"process"},
		},
		{
			Name:     "process",
			Workers:  c.fetchWorkers,
			CPUBound: true,
			Handler: func(ctx context.Context, item any) (any, error) {
				return c.process(item.(*lexcrawl.ScrapingResult)), nil
			},
			Downstream: []string{"store"},
		},
		{
			Name:    "store",
			Workers: 1,
			Handler: func(ctx context.Context, item any) (any, error) {
				return nil, c.store(ctx, item.(*lexcrawl.Document), &saved, &failed)
			},
		},
	}

	p, err := pipeline.New(stages, pipeline.WithLogger(c.logger))
	if err != nil {
		return nil, err
	}
	if err := p.Run(ctx, items); err != nil {
		return nil, err
	}

	result := &Result{
		Fetched: int(fetched.Load()),
		Saved:   int(saved.Load()),
		Failed:  int(failed.Load()),
	}
	c.logger.Info("batch finished",
		slog.Int("fetched", result.Fetched),
		slog.Int("saved", result.Saved),
		slog.Int("failed", result.Failed),
	)
	return result, nil
}

// fetch retrieves one source with classified retry. Failures never drop the
// item; they flow downstream as failed results so the store stage can settle
// the source.
func (c *Crawler) fetch(ctx context.Context, source *lexcrawl.Source, fetched *atomic.Int64) *lexcrawl.ScrapingResult {
	raw, _, err := retry.Do(ctx, func(ctx context.Context) (*lexcrawl.FetchResult, error) {
		return c.fetcher.Fetch(ctx, source.URL, nil)
	}, retry.Options{
		MaxRetries: c.maxRetries,
		BaseDelay:  c.retryBase,
		JobID:      source.ID,
		Context:    map[string]any{"url": source.URL},
		Log:        c.errors,
		Logger:     c.logger,
	})
	if err != nil {
		return &lexcrawl.ScrapingResult{
			JobID:     source.ID,
			URL:       source.URL,
			Timestamp: time.Now().UTC(),
			Err:       err.Error(),
		}
	}

	fetched.Add(1)
	return &lexcrawl.ScrapingResult{
		JobID:     source.ID,
		URL:       raw.URL,
		Content:   raw.Body,
		Kind:      raw.Kind(),
		Timestamp: time.Now().UTC(),
		Success:   true,
	}
}

// process turns a fetch outcome into a document: extracted title, Markdown
// content, captured metadata, and a content hash. Failed fetches pass
// through as failure documents.
func (c *Crawler) process(result *lexcrawl.ScrapingResult) *lexcrawl.Document {
	doc := &lexcrawl.Document{
		SourceID:  result.JobID,
		URL:       result.URL,
		Kind:      result.Kind,
		FetchedAt: result.Timestamp,
		Success:   result.Success,
		Err:       result.Err,
	}
	if !result.Success {
		return doc
	}
	doc.ContentHash = ContentHash(result.Content)
	if result.Kind != lexcrawl.KindHTML {
		return doc
	}

	markup := string(result.Content)
	if c.extractor != nil {
		extracted, err := c.extractor.Extract(markup)
		if err != nil {
			return c.fail(doc, "extract main content", err)
		}
		doc.Title = extracted.Title
		markup = extracted.ContentHTML
	}
	if c.converter != nil {
		markdown, err := c.converter.Convert(markup)
		if err != nil {
			return c.fail(doc, "convert to markdown", err)
		}
		doc.Content = markdown
		doc.ContentHash = ContentHash([]byte(markdown))
	} else {
		doc.Content = markup
	}

	if c.scraper != nil && c.scraper.Rules().Len() > 0 {
		grouped, err := c.scraper.ResultGroupedSimilar(string(result.Content), &lexcrawl.ReplayOptions{
			BaseURL:      result.URL,
			GroupByAlias: true,
		})
		if err != nil {
			return c.fail(doc, "replay metadata rules", err)
		}
		metadata, err := json.Marshal(grouped)
		if err != nil {
			return c.fail(doc, "encode metadata", err)
		}
		doc.Metadata = string(metadata)
	}
	return doc
}

func (c *Crawler) fail(doc *lexcrawl.Document, op string, err error) *lexcrawl.Document {
	c.logger.Error("processing failed",
		slog.String("url", doc.URL),
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	doc.Success = false
	doc.Err = fmt.Sprintf("%s: %s", op, err)
	return doc
}

// store persists the document and settles its source status.
func (c *Crawler) store(ctx context.Context, doc *lexcrawl.Document, saved, failed *atomic.Int64) error {
	if err := c.documents.CreateDocument(ctx, doc); err != nil {
		c.logger.Error("saving document failed",
			slog.String("url", doc.URL),
			slog.String("error", err.Error()),
		)
		failed.Add(1)
		return c.sources.UpdateStatus(ctx, doc.SourceID, lexcrawl.StatusError)
	}
	saved.Add(1)

	status := lexcrawl.StatusComplete
	if !doc.Success {
		status = lexcrawl.StatusError
		failed.Add(1)
	}
	return c.sources.UpdateStatus(ctx, doc.SourceID, status)
}
