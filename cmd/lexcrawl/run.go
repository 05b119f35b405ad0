package main

import (
	"fmt"

	"github.com/lexcrawl/lexcrawl"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	batch := c.Batch
	if batch <= 0 {
		batch = deps.Config.BatchSize
	}

	result, err := deps.Crawler.Run(deps.Ctx, batch)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", lexcrawl.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Fetched %d, saved %d, failed %d\n",
		result.Fetched, result.Saved, result.Failed)

	if unresolved := deps.Crawler.Errors().Unresolved(); len(unresolved) > 0 {
		fmt.Fprintf(deps.Stdout, "%d unresolved failures:\n", len(unresolved))
		for _, record := range unresolved {
			fmt.Fprintf(deps.Stdout, "  %s  %s  retried %d\n",
				record.JobID, record.Code, record.TimesRetried)
		}
	}
	return nil
}
