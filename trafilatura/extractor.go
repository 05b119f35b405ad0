// Package trafilatura extracts main document content from raw HTML,
// stripping navigation, footers, and other boilerplate.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"github.com/lexcrawl/lexcrawl"
)

var _ lexcrawl.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract pulls the main content and title out of raw HTML. The fallback
// extraction path is enabled, so pages trafilatura's primary heuristics
// cannot handle still yield content.
func (e *Extractor) Extract(rawHTML string) (*lexcrawl.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, lexcrawl.Errorf(lexcrawl.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), trafilatura.Options{
		EnableFallback: true,
	})
	if err != nil {
		return nil, lexcrawl.Errorf(lexcrawl.EINTERNAL, "extracting content: %s", err)
	}

	var contentHTML string
	if result.ContentNode != nil {
		var buf bytes.Buffer
		if err := html.Render(&buf, result.ContentNode); err != nil {
			return nil, lexcrawl.Errorf(lexcrawl.EINTERNAL, "rendering content: %s", err)
		}
		contentHTML = buf.String()
	}

	return &lexcrawl.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}
