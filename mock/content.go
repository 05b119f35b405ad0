package mock

import "github.com/lexcrawl/lexcrawl"

var _ lexcrawl.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of lexcrawl.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*lexcrawl.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*lexcrawl.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ lexcrawl.Converter = (*Converter)(nil)

// Converter is a mock implementation of lexcrawl.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
