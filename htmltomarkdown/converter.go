// Package htmltomarkdown converts extracted HTML content to Markdown for
// storage.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/lexcrawl/lexcrawl"
)

var _ lexcrawl.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown with CommonMark and table support.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	return &Converter{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", lexcrawl.Errorf(lexcrawl.EINVALID, "empty HTML input")
	}
	markdown, err := c.conv.ConvertString(html)
	if err != nil {
		return "", lexcrawl.Errorf(lexcrawl.EINTERNAL, "converting to markdown: %s", err)
	}
	return markdown, nil
}
