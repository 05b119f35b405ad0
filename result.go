package lexcrawl

import "time"

// ScrapingResult is the immutable outcome of one fetch attempt. It is
// produced by the fetch stage, consumed by content processing, and then
// discarded; the pipeline does not retain it.
type ScrapingResult struct {
	JobID     string
	URL       string
	Content   []byte
	Kind      ContentKind
	Metadata  map[string]any
	Timestamp time.Time
	Success   bool
	Err       string
}

// ErrorRecord tracks the failure history of a retried operation. It is
// created on the first failure, mutated by the retry wrapper as attempts
// proceed, and appended to the session error log when terminal.
type ErrorRecord struct {
	JobID        string
	Code         string
	Context      map[string]any
	ErrorID      string
	OccurredAt   time.Time
	TimesRetried int
	Resolved     bool
}
