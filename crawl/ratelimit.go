package crawl

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/lexcrawl/lexcrawl"
)

var _ lexcrawl.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter enforces per-domain crawl delays using token buckets.
// Each domain gets its own limiter with a burst of 1, so concurrent
// requests to different domains proceed while requests within one domain
// are spaced out. A robots.txt crawl-delay installed via SetDelay overrides
// the default rate for that domain.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	last     map[string]time.Time
	rps      float64
}

// NewDomainLimiter creates a DomainLimiter with the default requests per
// second applied to domains without an explicit delay.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		last:     make(map[string]time.Time),
		rps:      rps,
	}
}

func (d *DomainLimiter) limiter(domain string) *rate.Limiter {
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[domain] = limiter
	}
	return limiter
}

// Wait blocks until the domain's delay allows another request, then records
// the domain's last-request timestamp. Returns an error if the context is
// canceled first.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter := d.limiter(domain)
	d.mu.Unlock()

	if err := limiter.Wait(ctx); err != nil {
		return err
	}

	d.mu.Lock()
	d.last[domain] = time.Now()
	d.mu.Unlock()
	return nil
}

// SetDelay installs the minimum interval between requests to a domain.
// Non-positive delays restore the default rate.
func (d *DomainLimiter) SetDelay(domain string, delay time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	limiter := d.limiter(domain)
	if delay <= 0 {
		limiter.SetLimit(rate.Limit(d.rps))
		return
	}
	limiter.SetLimit(rate.Every(delay))
}

// LastRequest returns the time of the most recent request to the domain,
// reporting whether one happened.
func (d *DomainLimiter) LastRequest(domain string) (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.last[domain]
	return t, ok
}
