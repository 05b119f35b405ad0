package main

import (
	"fmt"
	"sort"

	"github.com/lexcrawl/lexcrawl"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	if deps.Scraper.Rules().Len() == 0 {
		return lexcrawl.Errorf(lexcrawl.EINVALID, "no learned rules. Run 'lexcrawl learn' first")
	}

	markup, pageURL, err := loadMarkup(deps, c.Source)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lexcrawl.ErrorMessage(err))
		return err
	}

	opts := &lexcrawl.ReplayOptions{
		BaseURL:      c.BaseURL,
		GroupByAlias: c.ByAlias,
		KeepBlank:    c.KeepBlank,
		KeepOrder:    c.KeepOrder,
	}
	if opts.BaseURL == "" {
		opts.BaseURL = pageURL
	}

	if c.Grouped {
		grouped, err := c.replayGrouped(deps, markup, opts)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", lexcrawl.ErrorMessage(err))
			return err
		}
		keys := make([]string, 0, len(grouped))
		for key := range grouped {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Fprintf(deps.Stdout, "%s:\n", key)
			for _, value := range grouped[key] {
				fmt.Fprintf(deps.Stdout, "  %s\n", value)
			}
		}
		return nil
	}

	values, err := c.replayFlat(deps, markup, opts)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lexcrawl.ErrorMessage(err))
		return err
	}
	for _, value := range values {
		fmt.Fprintln(deps.Stdout, value)
	}
	return nil
}

func (c *ExtractCmd) replayFlat(deps *Dependencies, markup string, opts *lexcrawl.ReplayOptions) ([]string, error) {
	if c.Exact {
		return deps.Scraper.ResultExact(markup, opts)
	}
	return deps.Scraper.ResultSimilar(markup, opts)
}

func (c *ExtractCmd) replayGrouped(deps *Dependencies, markup string, opts *lexcrawl.ReplayOptions) (map[string][]string, error) {
	if c.Exact {
		return deps.Scraper.ResultGroupedExact(markup, opts)
	}
	return deps.Scraper.ResultGroupedSimilar(markup, opts)
}
