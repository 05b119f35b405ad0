package http

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"

	"github.com/lexcrawl/lexcrawl"
)

// Ensure SitemapService implements lexcrawl.SitemapService.
var _ lexcrawl.SitemapService = (*SitemapService)(nil)

// maxSitemapDepth bounds sitemap-index recursion so a cyclic or hostile
// index cannot run forever.
const maxSitemapDepth = 5

// SitemapService discovers candidate document URLs from site sitemaps.
type SitemapService struct {
	client *http.Client
}

// NewSitemapService creates a SitemapService. A nil client falls back to
// http.DefaultClient.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client}
}

// DiscoverURLs collects URLs from the site's sitemaps, deduplicated in
// discovery order. When baseURL carries a non-root path, only URLs under
// that path are returned. No sitemap at all yields an empty slice, not an
// error, and sitemaps that fail to fetch or parse are skipped rather than
// failing the run.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *lexcrawl.URLFilter) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, lexcrawl.Errorf(lexcrawl.EINVALID, "invalid base URL %q: %v", baseURL, err)
	}

	pathPrefix := strings.TrimSuffix(base.Path, "/")
	root := *base
	root.Path = ""

	sitemaps := s.sitemapURLs(ctx, &root)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seenSitemaps := make(map[string]bool)
	seenURLs := make(map[string]bool)
	out := []string{}
	for _, sm := range sitemaps {
		urls, err := s.walk(ctx, sm, seenSitemaps, 0)
		if err != nil {
			// A stale robots.txt directive or one broken sitemap must not
			// sink what the others yield.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		for _, u := range urls {
			if seenURLs[u] || !underPath(u, pathPrefix) || !filter.Match(u) {
				continue
			}
			seenURLs[u] = true
			out = append(out, u)
		}
	}
	return out, nil
}

// sitemapURLs locates the site's sitemaps: robots.txt Sitemap directives
// first, then the /sitemap.xml convention.
func (s *SitemapService) sitemapURLs(ctx context.Context, root *url.URL) []string {
	robotsURL := root.ResolveReference(&url.URL{Path: "/robots.txt"}).String()
	if body, err := s.get(ctx, robotsURL); err == nil {
		var sitemaps []string
		scanner := bufio.NewScanner(strings.NewReader(body))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
				if sm := strings.TrimSpace(line[len("sitemap:"):]); sm != "" {
					sitemaps = append(sitemaps, sm)
				}
			}
		}
		if len(sitemaps) > 0 {
			return sitemaps
		}
	}

	fallback := root.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()
	if s.exists(ctx, fallback) {
		return []string{fallback}
	}
	return nil
}

// walk parses one sitemap document, recursing into sitemap indexes.
func (s *SitemapService) walk(ctx context.Context, sitemapURL string, seen map[string]bool, depth int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if seen[sitemapURL] || depth > maxSitemapDepth {
		return nil, nil
	}
	seen[sitemapURL] = true

	body, err := s.get(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(body); err != nil {
		return nil, lexcrawl.Errorf(lexcrawl.EINVALID, "parse sitemap %s: %v", sitemapURL, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, lexcrawl.Errorf(lexcrawl.EINVALID, "empty sitemap %s", sitemapURL)
	}

	if root.Tag == "sitemapindex" {
		var all []string
		for _, loc := range locs(root, "sitemap") {
			urls, err := s.walk(ctx, loc, seen, depth+1)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				continue
			}
			all = append(all, urls...)
		}
		return all, nil
	}
	return locs(root, "url"), nil
}

// locs extracts non-empty <loc> values from the named child elements.
func locs(root *etree.Element, child string) []string {
	var out []string
	for _, el := range root.SelectElements(child) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			out = append(out, u)
		}
	}
	return out
}

// underPath reports whether the URL's path falls under the prefix at a path
// boundary. An empty prefix passes everything.
func underPath(rawURL, prefix string) bool {
	if prefix == "" {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.HasPrefix(u.Path, prefix+"/") || u.Path == prefix
}

func (s *SitemapService) get(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", lexcrawl.Errorf(lexcrawl.EINVALID, "invalid url %q: %v", target, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", lexcrawl.Errorf(lexcrawl.ENETWORK, "fetch %s: %v", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp.StatusCode, target)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", lexcrawl.Errorf(lexcrawl.ENETWORK, "read %s: %v", target, err)
	}
	return string(body), nil
}

func (s *SitemapService) exists(ctx context.Context, target string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
