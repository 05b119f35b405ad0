package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/lexcrawl/lexcrawl"
	"github.com/lexcrawl/lexcrawl/crawl"
	"github.com/lexcrawl/lexcrawl/fs"
	"github.com/lexcrawl/lexcrawl/toml"
)

// Dependencies holds the services and configuration commands run against.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Config toml.Config

	Sources    lexcrawl.SourceService
	Documents  lexcrawl.DocumentService
	Sitemaps   lexcrawl.SitemapService
	Fetcher    lexcrawl.Fetcher
	Scraper    lexcrawl.Scraper
	Crawler    *crawl.Crawler
	Discoverer *crawl.Discoverer

	// Rules persists the learned rule set under RulesName.
	Rules     *fs.RuleStore
	RulesName string
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	ConfigPath string `name:"config" short:"C" help:"Path to the TOML config file"`

	Run      RunCmd      `cmd:"" help:"Fetch and process a batch of due sources"`
	Discover DiscoverCmd `cmd:"" help:"Discover candidate URLs from a site's sitemaps"`
	Learn    LearnCmd    `cmd:"" help:"Learn extraction rules from example values"`
	Extract  ExtractCmd  `cmd:"" help:"Replay learned rules against a page"`
	Rules    RulesCmd    `cmd:"" help:"Manage the learned rule set"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	Batch   int  `short:"b" help:"Sources to pull this run (defaults from config)"`
	Browser bool `help:"Escalate blocked or JavaScript-shell pages to headless Chrome"`
}

// DiscoverCmd is the "discover" subcommand.
type DiscoverCmd struct {
	URL      string   `arg:"" help:"Site base URL"`
	Filter   []string `short:"F" name:"filter" help:"Keep URLs matching regex (repeatable)"`
	Exclude  []string `short:"X" name:"exclude" help:"Drop URLs matching regex (repeatable)"`
	Priority int      `short:"p" default:"3" help:"Priority for registered sources (1-5)"`
}

// LearnCmd is the "learn" subcommand.
type LearnCmd struct {
	Source string   `arg:"" help:"Page URL or local HTML file to learn from"`
	Wanted []string `arg:"" help:"Example values the rules should capture"`
	Alias  string   `short:"a" help:"Alias recorded on the learned rules"`
	Update bool     `short:"u" help:"Add to the existing rule set instead of replacing it"`
	Fuzz   float64  `help:"Approximate text match ratio in (0,1)"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	Source    string `arg:"" help:"Page URL or local HTML file to extract from"`
	Exact     bool   `help:"Strict replay following learned sibling positions"`
	Grouped   bool   `short:"g" help:"Group results per rule"`
	ByAlias   bool   `help:"Key grouped results by alias instead of rule ID"`
	KeepOrder bool   `help:"Sort flat results by document position"`
	KeepBlank bool   `help:"Keep empty captured values"`
	BaseURL   string `help:"Base URL for resolving captured relative links"`
}

// RulesCmd is the "rules" subcommand.
type RulesCmd struct {
	List   RulesListCmd   `cmd:"" default:"1" help:"List learned rules"`
	Remove RulesRemoveCmd `cmd:"" help:"Remove rules by ID"`
	Keep   RulesKeepCmd   `cmd:"" help:"Keep only the given rule IDs"`
	Alias  RulesAliasCmd  `cmd:"" help:"Set a rule's alias"`
}

// RulesListCmd lists the learned rules.
type RulesListCmd struct{}

// RulesRemoveCmd removes rules by ID.
type RulesRemoveCmd struct {
	IDs []string `arg:"" help:"Rule IDs to remove"`
}

// RulesKeepCmd keeps only the given rules.
type RulesKeepCmd struct {
	IDs []string `arg:"" help:"Rule IDs to keep"`
}

// RulesAliasCmd sets a rule's alias.
type RulesAliasCmd struct {
	ID    string `arg:"" help:"Rule ID"`
	Alias string `arg:"" help:"New alias"`
}
