package trafilatura_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcrawl/lexcrawl"
	"github.com/lexcrawl/lexcrawl/trafilatura"
)

// Ensure Extractor implements lexcrawl.Extractor at compile time.
var _ lexcrawl.Extractor = (*trafilatura.Extractor)(nil)

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts title and main content", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head>
<title>Public Act No. 12 - Legislation Portal</title>
<meta property="og:title" content="Public Act No. 12">
</head>
<body>
<nav><a href="/">Home</a><a href="/acts">Acts</a></nav>
<article>
<h1>Public Act No. 12</h1>
<p>Section 1. This Act regulates the publication of consolidated statutes.</p>
<p>Section 2. The minister shall maintain a public register of enactments.</p>
</article>
<footer>State Gazette Office</footer>
</body>
</html>`

		result, err := trafilatura.NewExtractor().Extract(html)
		require.NoError(t, err)
		assert.NotEmpty(t, result.Title)
		assert.Contains(t, result.ContentHTML, "consolidated statutes")
		assert.Contains(t, result.ContentHTML, "public register of enactments")
	})

	t.Run("drops navigation and footer boilerplate", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Regulation 44/2025</title></head>
<body>
<nav class="site-nav">
<ul>
<li><a href="/">Home</a></li>
<li><a href="/regulations">Regulations</a></li>
</ul>
</nav>
<main>
<h1>Regulation 44/2025</h1>
<p>Article 1. The operative text of the regulation appears here.</p>
</main>
<footer>
<p>Copyright 2025 Legislation Portal</p>
<nav>Privacy | Terms</nav>
</footer>
</body>
</html>`

		result, err := trafilatura.NewExtractor().Extract(html)
		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "operative text of the regulation")
		assert.NotContains(t, result.ContentHTML, "site-nav")
		assert.NotContains(t, result.ContentHTML, "Copyright 2025 Legislation Portal")
	})

	t.Run("preserves tables of amendments", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Amendment History</title></head>
<body>
<article>
<h1>Amendment History</h1>
<p>The following instruments amended this Act after its commencement date.</p>
<table>
<tr><th>Instrument</th><th>Date</th></tr>
<tr><td>Act 3 of 2024</td><td>2024-02-01</td></tr>
<tr><td>Act 17 of 2025</td><td>2025-06-15</td></tr>
</table>
</article>
</body>
</html>`

		result, err := trafilatura.NewExtractor().Extract(html)
		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "Act 3 of 2024")
		assert.Contains(t, result.ContentHTML, "Act 17 of 2025")
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewExtractor().Extract("   ")
		assert.Equal(t, lexcrawl.EINVALID, lexcrawl.ErrorCode(err))
	})

	t.Run("handles minimal valid HTML", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(`<html><body><p>Short decree text</p></body></html>`)
		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "Short decree text")
	})
}
