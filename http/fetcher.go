// Package http provides the plain-HTTP implementation of lexcrawl.Fetcher,
// suitable for static pages that render without JavaScript, plus sitemap
// discovery over the same transport.
package http

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/lexcrawl/lexcrawl"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
// Kept consistent with rod.DefaultFetchTimeout (10s).
const DefaultFetchTimeout = 10 * time.Second

// defaultHeaders make requests look like a desktop browser. Some legal
// portals serve 403/406 to clients without them.
var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
}

// Ensure Fetcher implements lexcrawl.Fetcher at compile time.
var _ lexcrawl.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves content over plain HTTP. It does not execute JavaScript;
// pages that need rendering are escalated to the rod fetcher by the
// compliance layer.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	headers map[string]string
	proxies *ProxyPool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithHeaders replaces the default request headers.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithProxyPool routes requests through proxies claimed from the pool.
func WithProxyPool(pool *ProxyPool) Option {
	return func(f *Fetcher) {
		f.proxies = pool
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
		headers: defaultHeaders,
	}
	for _, opt := range opts {
		opt(f)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if f.proxies != nil {
		transport.Proxy = func(*http.Request) (*url.URL, error) {
			return f.proxies.Claim(), nil
		}
	}
	f.client = &http.Client{
		Timeout:   f.timeout,
		Transport: transport,
	}

	return f
}

// Fetch retrieves the URL and maps the response status to an application
// error code: 403/406 to EBLOCKED, 404/410 to ENOTFOUND, 429 to ERATELIMIT,
// any other non-2xx to ENETWORK.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, opts *lexcrawl.FetchOptions) (*lexcrawl.FetchResult, error) {
	if opts != nil && opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, lexcrawl.Errorf(lexcrawl.EINVALID, "invalid url %q: %v", rawURL, err)
	}
	for key, val := range f.headers {
		req.Header.Set(key, val)
	}
	if opts != nil {
		for key, val := range opts.Headers {
			req.Header.Set(key, val)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, lexcrawl.Errorf(lexcrawl.ENETWORK, "fetch %s: %v", rawURL, err)
	}
	defer resp.Body.Close()

	if err := statusError(resp.StatusCode, rawURL); err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	body, err := readBody(resp.Body, contentType)
	if err != nil {
		return nil, lexcrawl.Errorf(lexcrawl.ENETWORK, "read body of %s: %v", rawURL, err)
	}

	return &lexcrawl.FetchResult{
		URL:         rawURL,
		Status:      resp.StatusCode,
		ContentType: contentType,
		Body:        body,
	}, nil
}

// readBody reads the response body, transcoding textual content to UTF-8.
// Older legal portals still serve ISO-8859 and Windows-125x pages. Binary
// content is passed through untouched.
func readBody(r io.Reader, contentType string) ([]byte, error) {
	if !textual(contentType) {
		return io.ReadAll(r)
	}
	br := bufio.NewReader(r)
	enc := unicode.UTF8
	if peek, err := br.Peek(1024); err == nil || err == io.EOF {
		enc, _, _ = charset.DetermineEncoding(peek, contentType)
	}
	return io.ReadAll(transform.NewReader(br, enc.NewDecoder()))
}

func textual(contentType string) bool {
	return strings.Contains(contentType, "text/") ||
		strings.Contains(contentType, "xml") ||
		strings.Contains(contentType, "json")
}

// Close releases resources. For the HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}

// statusError maps a non-2xx status to the application error taxonomy.
func statusError(status int, url string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusForbidden || status == http.StatusNotAcceptable:
		return lexcrawl.Errorf(lexcrawl.EBLOCKED, "HTTP %d for %s", status, url)
	case status == http.StatusNotFound || status == http.StatusGone:
		return lexcrawl.Errorf(lexcrawl.ENOTFOUND, "HTTP %d for %s", status, url)
	case status == http.StatusTooManyRequests:
		return lexcrawl.Errorf(lexcrawl.ERATELIMIT, "HTTP %d for %s", status, url)
	default:
		return lexcrawl.Errorf(lexcrawl.ENETWORK, "HTTP %d for %s", status, url)
	}
}
