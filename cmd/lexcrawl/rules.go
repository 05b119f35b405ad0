package main

import (
	"fmt"

	"github.com/lexcrawl/lexcrawl"
)

// Run executes the rules list command.
func (c *RulesListCmd) Run(deps *Dependencies) error {
	stacks := deps.Scraper.Rules().Stacks()
	if len(stacks) == 0 {
		fmt.Fprintln(deps.Stdout, "No learned rules. Use 'lexcrawl learn' to create some.")
		return nil
	}

	for _, stack := range stacks {
		target := "text"
		switch {
		case stack.WantedAttr != "":
			target = "@" + stack.WantedAttr
		case stack.IsNonRecText:
			target = "direct text"
		}
		alias := stack.Alias
		if alias == "" {
			alias = "-"
		}
		fmt.Fprintf(deps.Stdout, "%s  %-12s  %-12s  depth %d\n",
			stack.ID, alias, target, len(stack.Path))
	}
	return nil
}

// Run executes the rules remove command.
func (c *RulesRemoveCmd) Run(deps *Dependencies) error {
	rules := deps.Scraper.Rules()
	before := rules.Len()
	rules.Remove(c.IDs...)
	if err := deps.Rules.Save(deps.RulesName, rules); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lexcrawl.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Removed %d rules, %d remain\n", before-rules.Len(), rules.Len())
	return nil
}

// Run executes the rules keep command.
func (c *RulesKeepCmd) Run(deps *Dependencies) error {
	rules := deps.Scraper.Rules()
	rules.Keep(c.IDs...)
	if err := deps.Rules.Save(deps.RulesName, rules); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lexcrawl.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Kept %d rules\n", rules.Len())
	return nil
}

// Run executes the rules alias command.
func (c *RulesAliasCmd) Run(deps *Dependencies) error {
	rules := deps.Scraper.Rules()
	if err := rules.SetAliases(map[string]string{c.ID: c.Alias}); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lexcrawl.ErrorMessage(err))
		return err
	}
	if err := deps.Rules.Save(deps.RulesName, rules); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lexcrawl.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Aliased %s as %q\n", c.ID, c.Alias)
	return nil
}
