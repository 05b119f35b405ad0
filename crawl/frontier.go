package crawl

import (
	"container/heap"
	"strings"
	"sync"

	"github.com/lexcrawl/lexcrawl"
	"github.com/lexcrawl/lexcrawl/bloom"
)

// Frontier is an in-memory queue of candidate sources with Bloom-filter
// deduplication and priority ordering. It is safe for concurrent use.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Filter
	queue *sourceHeap
	seq   int
}

// NewFrontier creates a Frontier sized for n expected URLs with the given
// false positive rate for deduplication.
func NewFrontier(n uint, fpRate float64) *Frontier {
	h := &sourceHeap{}
	heap.Init(h)
	return &Frontier{
		seen:  bloom.NewFilter(n, fpRate),
		queue: h,
	}
}

// Push adds a candidate source. Returns false if its URL has already been
// seen. Fragments are stripped first, so URLs differing only by fragment
// are duplicates.
func (f *Frontier) Push(source *lexcrawl.Source) bool {
	url := source.URL
	if idx := strings.Index(url, "#"); idx != -1 {
		url = url[:idx]
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen.TestAndAdd(url) {
		return false
	}

	source.URL = url
	f.seq++
	heap.Push(f.queue, frontierItem{source: source, seq: f.seq})
	return true
}

// Pop returns the highest-priority source, FIFO within one priority.
// The bool result is false when the frontier is empty.
func (f *Frontier) Pop() (*lexcrawl.Source, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queue.Len() == 0 {
		return nil, false
	}
	item := heap.Pop(f.queue).(frontierItem)
	return item.source, true
}

// Len returns the number of queued sources.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue.Len()
}

type frontierItem struct {
	source *lexcrawl.Source
	seq    int
}

// sourceHeap orders by priority (highest first), then insertion order.
type sourceHeap []frontierItem

func (h sourceHeap) Len() int { return len(h) }

func (h sourceHeap) Less(i, j int) bool {
	if h[i].source.Priority != h[j].source.Priority {
		return h[i].source.Priority > h[j].source.Priority
	}
	return h[i].seq < h[j].seq
}

func (h sourceHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *sourceHeap) Push(x any) { *h = append(*h, x.(frontierItem)) }

func (h *sourceHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
