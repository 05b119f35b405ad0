package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/lexcrawl/lexcrawl"
)

// Run executes the learn command.
func (c *LearnCmd) Run(deps *Dependencies) error {
	markup, pageURL, err := loadMarkup(deps, c.Source)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lexcrawl.ErrorMessage(err))
		return err
	}

	wanted := make([]lexcrawl.Wanted, 0, len(c.Wanted))
	for _, text := range c.Wanted {
		wanted = append(wanted, lexcrawl.Wanted{Text: text})
	}
	groups := []lexcrawl.WantedGroup{{Alias: c.Alias, Items: wanted}}

	captured, err := deps.Scraper.Build(markup, groups, &lexcrawl.BuildOptions{
		BaseURL:       pageURL,
		Update:        c.Update,
		TextFuzzRatio: c.Fuzz,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lexcrawl.ErrorMessage(err))
		return err
	}

	if err := deps.Rules.Save(deps.RulesName, deps.Scraper.Rules()); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lexcrawl.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Learned %d rules capturing:\n", deps.Scraper.Rules().Len())
	for _, value := range captured {
		fmt.Fprintf(deps.Stdout, "  %s\n", value)
	}
	return nil
}

// loadMarkup reads the page to operate on: fetched when the source is a
// URL, read from disk otherwise. The returned URL is empty for files.
func loadMarkup(deps *Dependencies, source string) (markup, pageURL string, err error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		result, err := deps.Fetcher.Fetch(deps.Ctx, source, nil)
		if err != nil {
			return "", "", err
		}
		return result.Markup(), source, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return "", "", lexcrawl.Errorf(lexcrawl.ENOTFOUND, "reading %s: %s", source, err)
	}
	return string(data), "", nil
}
