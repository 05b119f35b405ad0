package lexcrawl

// ExtractResult holds the main content pulled out of a fetched page.
type ExtractResult struct {
	// Title comes from page metadata (meta tags, JSON+LD, etc.).
	Title string

	// ContentHTML is the main content with boilerplate (nav, footer,
	// sidebar) removed.
	ContentHTML string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

// Converter converts clean HTML to Markdown for storage.
type Converter interface {
	Convert(html string) (string, error)
}
