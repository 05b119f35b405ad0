// Package bloom provides probabilistic URL deduplication for crawl
// frontiers. A Filter may report a URL as seen when it was not (false
// positive), which for deduplication means at worst skipping a URL; it
// never reports a seen URL as new.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter is a Bloom filter over URL strings. It is not safe for concurrent
// use; callers that share one across goroutines must serialize access.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter sizes a filter for n expected URLs at the given false positive
// rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Add marks a URL as seen.
func (f *Filter) Add(url string) {
	f.f.AddString(url)
}

// Test reports whether the URL may have been added before.
func (f *Filter) Test(url string) bool {
	return f.f.TestString(url)
}

// TestAndAdd marks the URL as seen and reports whether it may have been
// added before.
func (f *Filter) TestAndAdd(url string) bool {
	return f.f.TestAndAddString(url)
}

// EstimatedCount approximates the number of URLs added so far.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
