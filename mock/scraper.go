package mock

import "github.com/lexcrawl/lexcrawl"

var _ lexcrawl.Scraper = (*Scraper)(nil)

// Scraper is a mock implementation of lexcrawl.Scraper.
type Scraper struct {
	BuildFn                func(markup string, groups []lexcrawl.WantedGroup, opts *lexcrawl.BuildOptions) ([]string, error)
	ResultSimilarFn        func(markup string, opts *lexcrawl.ReplayOptions) ([]string, error)
	ResultExactFn          func(markup string, opts *lexcrawl.ReplayOptions) ([]string, error)
	ResultFn               func(markup string, opts *lexcrawl.ReplayOptions) ([]string, []string, error)
	ResultGroupedSimilarFn func(markup string, opts *lexcrawl.ReplayOptions) (map[string][]string, error)
	ResultGroupedExactFn   func(markup string, opts *lexcrawl.ReplayOptions) (map[string][]string, error)
	RulesFn                func() *lexcrawl.RuleSet
}

func (s *Scraper) Build(markup string, groups []lexcrawl.WantedGroup, opts *lexcrawl.BuildOptions) ([]string, error) {
	return s.BuildFn(markup, groups, opts)
}

func (s *Scraper) ResultSimilar(markup string, opts *lexcrawl.ReplayOptions) ([]string, error) {
	return s.ResultSimilarFn(markup, opts)
}

func (s *Scraper) ResultExact(markup string, opts *lexcrawl.ReplayOptions) ([]string, error) {
	return s.ResultExactFn(markup, opts)
}

func (s *Scraper) Result(markup string, opts *lexcrawl.ReplayOptions) ([]string, []string, error) {
	return s.ResultFn(markup, opts)
}

func (s *Scraper) ResultGroupedSimilar(markup string, opts *lexcrawl.ReplayOptions) (map[string][]string, error) {
	return s.ResultGroupedSimilarFn(markup, opts)
}

func (s *Scraper) ResultGroupedExact(markup string, opts *lexcrawl.ReplayOptions) (map[string][]string, error) {
	return s.ResultGroupedExactFn(markup, opts)
}

func (s *Scraper) Rules() *lexcrawl.RuleSet {
	return s.RulesFn()
}
