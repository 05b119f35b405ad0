package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcrawl/lexcrawl"
	lexhttp "github.com/lexcrawl/lexcrawl/http"
)

// newTestServer serves the given path-to-body map, substituting {{BASE}} in
// bodies with the server's own URL. Unknown paths get a 404.
func newTestServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(strings.ReplaceAll(body, "{{BASE}}", srv.URL)))
	}))
	return srv
}

func urlset(locs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, loc := range locs {
		b.WriteString("  <url><loc>" + loc + "</loc></url>\n")
	}
	b.WriteString("</urlset>")
	return b.String()
}

func TestSitemapService_DiscoverURLs(t *testing.T) {
	t.Parallel()

	t.Run("follows robots.txt sitemap directives", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/robots.txt": "User-agent: *\nDisallow: /private/\nSitemap: {{BASE}}/laws-sitemap.xml\n",
			"/laws-sitemap.xml": urlset(
				"{{BASE}}/act/1",
				"{{BASE}}/act/2",
			),
		})
		defer srv.Close()

		svc := lexhttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/act/1", srv.URL + "/act/2"}, urls)
	})

	t.Run("falls back to /sitemap.xml when robots.txt has no directive", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/robots.txt":  "User-agent: *\nDisallow: /private/\n",
			"/sitemap.xml": urlset("{{BASE}}/act/1"),
		})
		defer srv.Close()

		svc := lexhttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/act/1"}, urls)
	})

	t.Run("no sitemap yields empty result, not an error", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{})
		defer srv.Close()

		svc := lexhttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)
		require.NoError(t, err)
		assert.Empty(t, urls)
	})

	t.Run("recurses into sitemap indexes", func(t *testing.T) {
		t.Parallel()

		index := `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>{{BASE}}/acts.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/regulations.xml</loc></sitemap>
</sitemapindex>`

		srv := newTestServer(t, map[string]string{
			"/robots.txt":      "Sitemap: {{BASE}}/sitemap-index.xml\n",
			"/sitemap-index.xml": index,
			"/acts.xml":        urlset("{{BASE}}/act/1"),
			"/regulations.xml": urlset("{{BASE}}/reg/44"),
		})
		defer srv.Close()

		svc := lexhttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/act/1", srv.URL + "/reg/44"}, urls)
	})

	t.Run("cyclic sitemap indexes terminate", func(t *testing.T) {
		t.Parallel()

		cycle := `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>{{BASE}}/cycle.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/acts.xml</loc></sitemap>
</sitemapindex>`

		srv := newTestServer(t, map[string]string{
			"/robots.txt": "Sitemap: {{BASE}}/cycle.xml\n",
			"/cycle.xml":  cycle,
			"/acts.xml":   urlset("{{BASE}}/act/1"),
		})
		defer srv.Close()

		svc := lexhttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/act/1"}, urls)
	})

	t.Run("deduplicates URLs across sitemaps", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/robots.txt": "Sitemap: {{BASE}}/a.xml\nSitemap: {{BASE}}/b.xml\n",
			"/a.xml":      urlset("{{BASE}}/act/1", "{{BASE}}/act/2"),
			"/b.xml":      urlset("{{BASE}}/act/2", "{{BASE}}/act/3"),
		})
		defer srv.Close()

		svc := lexhttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{
			srv.URL + "/act/1",
			srv.URL + "/act/2",
			srv.URL + "/act/3",
		}, urls)
	})

	t.Run("restricts results to the base URL path", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/robots.txt": "Sitemap: {{BASE}}/sitemap.xml\n",
			"/sitemap.xml": urlset(
				"{{BASE}}/acts/1",
				"{{BASE}}/acts",
				"{{BASE}}/actsextra/1",
				"{{BASE}}/news/today",
			),
		})
		defer srv.Close()

		svc := lexhttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL+"/acts", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/acts/1", srv.URL + "/acts"}, urls)
	})

	t.Run("applies the URL filter", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/robots.txt": "Sitemap: {{BASE}}/sitemap.xml\n",
			"/sitemap.xml": urlset(
				"{{BASE}}/act/1",
				"{{BASE}}/act/1/print",
				"{{BASE}}/news/today",
			),
		})
		defer srv.Close()

		filter := &lexcrawl.URLFilter{
			Include: []*regexp.Regexp{regexp.MustCompile(`/act/`)},
			Exclude: []*regexp.Regexp{regexp.MustCompile(`/print$`)},
		}

		svc := lexhttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL, filter)
		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/act/1"}, urls)
	})

	t.Run("unreachable sitemaps are skipped, not fatal", func(t *testing.T) {
		t.Parallel()

		// The first directive points at a sitemap the server no longer has.
		srv := newTestServer(t, map[string]string{
			"/robots.txt": "Sitemap: {{BASE}}/stale.xml\nSitemap: {{BASE}}/acts.xml\n",
			"/acts.xml":   urlset("{{BASE}}/act/1"),
		})
		defer srv.Close()

		svc := lexhttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/act/1"}, urls)
	})

	t.Run("broken index children are skipped, not fatal", func(t *testing.T) {
		t.Parallel()

		index := `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>{{BASE}}/gone.xml</loc></sitemap>
  <sitemap><loc>{{BASE}}/acts.xml</loc></sitemap>
</sitemapindex>`

		srv := newTestServer(t, map[string]string{
			"/robots.txt":      "Sitemap: {{BASE}}/sitemap-index.xml\n",
			"/sitemap-index.xml": index,
			"/acts.xml":        urlset("{{BASE}}/act/1"),
		})
		defer srv.Close()

		svc := lexhttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{srv.URL + "/act/1"}, urls)
	})

	t.Run("malformed sitemap XML yields nothing, not an error", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/robots.txt":  "Sitemap: {{BASE}}/sitemap.xml\n",
			"/sitemap.xml": "<urlset><url><loc>broken",
		})
		defer srv.Close()

		svc := lexhttp.NewSitemapService(srv.Client())
		urls, err := svc.DiscoverURLs(context.Background(), srv.URL, nil)
		require.NoError(t, err)
		assert.Empty(t, urls)
	})

	t.Run("invalid base URL is rejected", func(t *testing.T) {
		t.Parallel()

		svc := lexhttp.NewSitemapService(nil)
		_, err := svc.DiscoverURLs(context.Background(), "://bad", nil)
		require.Error(t, err)
		assert.Equal(t, lexcrawl.EINVALID, lexcrawl.ErrorCode(err))
	})

	t.Run("cancelled context stops discovery", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, map[string]string{
			"/robots.txt":  "Sitemap: {{BASE}}/sitemap.xml\n",
			"/sitemap.xml": urlset("{{BASE}}/act/1"),
		})
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		svc := lexhttp.NewSitemapService(srv.Client())
		_, err := svc.DiscoverURLs(ctx, srv.URL, nil)
		require.Error(t, err)
	})
}
