// Package goquery implements rule learning and replay over parsed HTML.
//
// A Scraper learns extraction rules from example values: it locates each
// example in a training page, records the path from the document root to the
// carrying node, and can later replay those paths against other pages to
// capture the same kind of content.
package goquery

import (
	"sort"

	"golang.org/x/net/html"

	"github.com/lexcrawl/lexcrawl"
)

// Scraper learns and replays extraction rules. It owns a RuleSet; structural
// edits to the set are not synchronized, so callers serialize Build and rule
// management against replay.
type Scraper struct {
	rules *lexcrawl.RuleSet
}

var _ lexcrawl.Scraper = (*Scraper)(nil)

// NewScraper returns a Scraper with an empty rule set.
func NewScraper() *Scraper {
	return &Scraper{rules: lexcrawl.NewRuleSet()}
}

// Rules returns the scraper's rule set.
func (s *Scraper) Rules() *lexcrawl.RuleSet {
	return s.rules
}

// SetRules replaces the scraper's rule set, typically after loading saved
// rules from disk.
func (s *Scraper) SetRules(rules *lexcrawl.RuleSet) {
	if rules == nil {
		rules = lexcrawl.NewRuleSet()
	}
	s.rules = rules
}

// Build learns rules locating the groups' example values in markup. Unless
// opts.Update is set, previously learned rules are discarded first.
func (s *Scraper) Build(markup string, groups []lexcrawl.WantedGroup, opts *lexcrawl.BuildOptions) ([]string, error) {
	if opts == nil {
		opts = &lexcrawl.BuildOptions{}
	}
	total := 0
	for _, g := range groups {
		total += len(g.Items)
	}
	if total == 0 {
		return nil, lexcrawl.Errorf(lexcrawl.EINVALID, "no wanted items to learn from")
	}
	root, err := Parse(markup)
	if err != nil {
		return nil, err
	}
	return s.build(root, groups, opts), nil
}

// ResultSimilar replays all rules fuzzily and returns a flat result list.
func (s *Scraper) ResultSimilar(markup string, opts *lexcrawl.ReplayOptions) ([]string, error) {
	root, err := Parse(markup)
	if err != nil {
		return nil, err
	}
	return s.flat(root, replaySimilar, opts), nil
}

// ResultExact replays all rules by their learned ordinals and returns a flat
// result list.
func (s *Scraper) ResultExact(markup string, opts *lexcrawl.ReplayOptions) ([]string, error) {
	root, err := Parse(markup)
	if err != nil {
		return nil, err
	}
	return s.flat(root, replayExact, opts), nil
}

// Result replays both modes over a single parse of the markup.
func (s *Scraper) Result(markup string, opts *lexcrawl.ReplayOptions) ([]string, []string, error) {
	root, err := Parse(markup)
	if err != nil {
		return nil, nil, err
	}
	return s.flat(root, replaySimilar, opts), s.flat(root, replayExact, opts), nil
}

// ResultGroupedSimilar replays fuzzily with results grouped by rule ID, or
// by alias when opts.GroupByAlias is set.
func (s *Scraper) ResultGroupedSimilar(markup string, opts *lexcrawl.ReplayOptions) (map[string][]string, error) {
	root, err := Parse(markup)
	if err != nil {
		return nil, err
	}
	return s.grouped(root, replaySimilar, opts), nil
}

// ResultGroupedExact replays by learned ordinals with grouped results.
func (s *Scraper) ResultGroupedExact(markup string, opts *lexcrawl.ReplayOptions) (map[string][]string, error) {
	root, err := Parse(markup)
	if err != nil {
		return nil, err
	}
	return s.grouped(root, replayExact, opts), nil
}

type replayFunc func(*html.Node, *lexcrawl.Stack, replayConfig) []resultItem

func (s *Scraper) config(root *html.Node, opts *lexcrawl.ReplayOptions) replayConfig {
	cfg := replayConfig{
		baseURL:              opts.BaseURL,
		ratio:                opts.AttrFuzzRatio,
		keepBlank:            opts.KeepBlank,
		containSiblingLeaves: opts.ContainSiblingLeaves,
	}
	if opts.KeepOrder {
		cfg.indexes = traversalIndexes(root)
	}
	return cfg
}

// flat replays every rule and merges the results. Results deduplicate by
// default and follow rule order unless opts.KeepOrder restores document
// order.
func (s *Scraper) flat(root *html.Node, replay replayFunc, opts *lexcrawl.ReplayOptions) []string {
	if opts == nil {
		opts = &lexcrawl.ReplayOptions{}
	}
	cfg := s.config(root, opts)
	var items []resultItem
	for _, stack := range s.rules.Stacks() {
		items = append(items, replay(root, stack, cfg)...)
	}
	if opts.KeepOrder {
		sort.SliceStable(items, func(i, j int) bool { return items[i].index < items[j].index })
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.text
	}
	if opts.Unique == nil || *opts.Unique {
		out = uniqueStrings(out)
	}
	return out
}

// grouped replays every rule and keys the results by rule ID or alias.
// Grouped results keep duplicates unless opts.Unique asks otherwise.
func (s *Scraper) grouped(root *html.Node, replay replayFunc, opts *lexcrawl.ReplayOptions) map[string][]string {
	if opts == nil {
		opts = &lexcrawl.ReplayOptions{}
	}
	cfg := s.config(root, opts)
	items := make(map[string][]resultItem)
	for _, stack := range s.rules.Stacks() {
		key := stack.ID
		if opts.GroupByAlias {
			key = stack.Alias
		}
		if _, ok := items[key]; !ok {
			items[key] = []resultItem{}
		}
		items[key] = append(items[key], replay(root, stack, cfg)...)
	}
	out := make(map[string][]string, len(items))
	for key, group := range items {
		if opts.KeepOrder {
			sort.SliceStable(group, func(i, j int) bool { return group[i].index < group[j].index })
		}
		vals := make([]string, len(group))
		for i, item := range group {
			vals[i] = item.text
		}
		if opts.Unique != nil && *opts.Unique {
			vals = uniqueStrings(vals)
		}
		out[key] = vals
	}
	return out
}
