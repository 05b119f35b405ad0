package lexcrawl

import "regexp"

// Wanted is one example value to learn a rule from. Exactly one of Text or
// Pattern is set; Pattern must match a candidate value in full.
type Wanted struct {
	Text    string
	Pattern *regexp.Regexp
}

// WantedGroup is a named category of example values. Rules learned from a
// group carry its alias, so grouped replay can report results per category.
type WantedGroup struct {
	Alias string
	Items []Wanted
}

// BuildOptions controls rule learning.
type BuildOptions struct {
	// BaseURL resolves relative href/src values during matching and is
	// recorded on URL-capturing rules.
	BaseURL string

	// Update adds learned rules to the existing set instead of replacing it.
	Update bool

	// TextFuzzRatio in (0, 1) allows approximate text matching against the
	// wanted examples. Zero or 1 requires exact matches.
	TextFuzzRatio float64
}

// ReplayOptions controls rule replay.
type ReplayOptions struct {
	// BaseURL resolves captured relative URLs. When empty, the base URL
	// recorded on the rule at learning time is used.
	BaseURL string

	// AttrFuzzRatio in (0, 1) allows approximate class/style matching while
	// walking the path. Zero or 1 requires exact matches.
	AttrFuzzRatio float64

	// GroupByAlias keys grouped results by rule alias instead of rule ID.
	GroupByAlias bool

	// Unique overrides result deduplication. When nil, flat results are
	// deduplicated and grouped results are not.
	Unique *bool

	// KeepBlank retains empty captured values instead of dropping them.
	KeepBlank bool

	// KeepOrder sorts flat results by document position instead of rule
	// order.
	KeepOrder bool

	// ContainSiblingLeaves keeps every sibling matched at the final path
	// level instead of collapsing to the learned ordinal.
	ContainSiblingLeaves bool
}

// Scraper learns extraction rules from example values and replays them
// against new pages.
type Scraper interface {
	// Build learns rules that locate the groups' example values in markup
	// and adds them to the rule set. It returns the values the new rules
	// capture from the training page, deduplicated in discovery order.
	Build(markup string, groups []WantedGroup, opts *BuildOptions) ([]string, error)

	// ResultSimilar replays all rules fuzzily: every node whose path matches
	// a rule's tag and attribute sequence is captured, generalizing from the
	// learned example to its repeated siblings.
	ResultSimilar(markup string, opts *ReplayOptions) ([]string, error)

	// ResultExact replays all rules strictly, following the learned sibling
	// ordinals at every level, and captures at most one value per rule.
	ResultExact(markup string, opts *ReplayOptions) ([]string, error)

	// Result replays both modes in one pass over the same parsed document.
	Result(markup string, opts *ReplayOptions) (similar, exact []string, err error)

	// ResultGroupedSimilar is ResultSimilar with results keyed by rule ID,
	// or by alias when opts.GroupByAlias is set.
	ResultGroupedSimilar(markup string, opts *ReplayOptions) (map[string][]string, error)

	// ResultGroupedExact is ResultExact with grouped results.
	ResultGroupedExact(markup string, opts *ReplayOptions) (map[string][]string, error)

	// Rules exposes the scraper's rule set for management and persistence.
	Rules() *RuleSet
}
