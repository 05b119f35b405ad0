package http

import (
	"net/url"
	"sync/atomic"

	"github.com/lexcrawl/lexcrawl"
)

// ProxyPool hands out proxies round-robin. It is an explicitly owned
// resource injected into the fetcher at construction, safe for concurrent
// claims.
type ProxyPool struct {
	urls  []*url.URL
	index atomic.Uint32
}

// NewProxyPool parses the proxy URLs into a pool. Unparseable entries are
// skipped; an empty result is an error.
func NewProxyPool(proxyURLs ...string) (*ProxyPool, error) {
	var urls []*url.URL
	for _, raw := range proxyURLs {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		urls = append(urls, u)
	}
	if len(urls) == 0 {
		return nil, lexcrawl.Errorf(lexcrawl.EINVALID, "proxy url list is empty")
	}
	return &ProxyPool{urls: urls}, nil
}

// Claim returns the next proxy in rotation.
func (p *ProxyPool) Claim() *url.URL {
	index := p.index.Add(1) - 1
	return p.urls[index%uint32(len(p.urls))]
}

// Len returns the number of usable proxies.
func (p *ProxyPool) Len() int {
	return len(p.urls)
}
