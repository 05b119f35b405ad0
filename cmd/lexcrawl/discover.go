package main

import (
	"fmt"
	"regexp"

	"github.com/lexcrawl/lexcrawl"
	"github.com/lexcrawl/lexcrawl/crawl"
)

// Run executes the discover command.
func (c *DiscoverCmd) Run(deps *Dependencies) error {
	filter, err := compileFilter(c.Filter, c.Exclude)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lexcrawl.ErrorMessage(err))
		return err
	}

	registered, err := deps.Discoverer.Discover(deps.Ctx, c.URL, crawl.DiscoverOptions{
		Filter:   filter,
		Priority: c.Priority,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lexcrawl.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Registered %d sources from %s\n", registered, c.URL)
	return nil
}

// compileFilter validates the regex patterns early so a typo fails the
// command instead of silently matching nothing.
func compileFilter(include, exclude []string) (*lexcrawl.URLFilter, error) {
	if len(include) == 0 && len(exclude) == 0 {
		return nil, nil
	}
	filter := &lexcrawl.URLFilter{}
	for _, pattern := range include {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, lexcrawl.Errorf(lexcrawl.EINVALID, "invalid filter pattern %q: %s", pattern, err)
		}
		filter.Include = append(filter.Include, re)
	}
	for _, pattern := range exclude {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, lexcrawl.Errorf(lexcrawl.EINVALID, "invalid exclude pattern %q: %s", pattern, err)
		}
		filter.Exclude = append(filter.Exclude, re)
	}
	return filter, nil
}
