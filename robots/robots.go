// Package robots enforces robots.txt policy. Parsed rules are cached per
// domain so a crawl batch fetches each domain's robots.txt once.
package robots

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/lexcrawl/lexcrawl"
)

// DefaultAgent identifies the crawler in robots.txt group matching.
const DefaultAgent = "lexcrawl"

// DefaultTTL is how long cached rules stay fresh before a re-fetch.
const DefaultTTL = 24 * time.Hour

// fetchTimeout bounds the robots.txt request so one slow domain cannot
// stall a batch.
const fetchTimeout = 5 * time.Second

// Ensure Service implements lexcrawl.RobotsService at compile time.
var _ lexcrawl.RobotsService = (*Service)(nil)

// Service fetches, parses and caches robots.txt per domain. A missing or
// unreachable robots.txt yields permissive rules, never an error; only
// context cancellation propagates.
type Service struct {
	client *http.Client
	cache  lexcrawl.RobotsCache
	agent  string
	ttl    time.Duration

	// parsed memoizes robotstxt data per domain so Allowed does not
	// reparse the raw text on every URL.
	mu     sync.Mutex
	parsed map[string]*robotstxt.RobotsData
}

// Option configures a Service.
type Option func(*Service)

// WithClient sets the HTTP client used to fetch robots.txt.
func WithClient(client *http.Client) Option {
	return func(s *Service) { s.client = client }
}

// WithAgent sets the user agent matched against robots.txt groups.
func WithAgent(agent string) Option {
	return func(s *Service) { s.agent = agent }
}

// WithTTL sets the cache freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// NewService creates a Service backed by the given rules cache.
func NewService(cache lexcrawl.RobotsCache, opts ...Option) *Service {
	s := &Service{
		client: &http.Client{Timeout: fetchTimeout},
		cache:  cache,
		agent:  DefaultAgent,
		ttl:    DefaultTTL,
		parsed: make(map[string]*robotstxt.RobotsData),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rules returns the domain's robots rules, fetching and caching robots.txt
// on a miss or after expiry. Concurrent first-fetches of one domain may
// race to write the cache; content is idempotent so the last writer wins.
func (s *Service) Rules(ctx context.Context, domain string) (*lexcrawl.RobotsRules, error) {
	if cached, ok, err := s.cache.GetRobots(domain); err != nil {
		return nil, err
	} else if ok && time.Since(cached.FetchedAt) < s.ttl {
		return cached, nil
	}

	raw, err := s.fetch(ctx, domain)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Unreachable robots.txt is treated as absent.
		raw = ""
	}

	rules := &lexcrawl.RobotsRules{
		Domain:    domain,
		Raw:       raw,
		FetchedAt: time.Now().UTC(),
	}
	if raw != "" {
		if data, err := robotstxt.FromString(raw); err == nil {
			if group := data.FindGroup(s.agent); group != nil {
				rules.CrawlDelay = group.CrawlDelay
			}
			s.remember(domain, data)
		}
		rules.RequestRate = requestRate(raw, s.agent)
	}

	if err := s.cache.PutRobots(rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// Allowed reports whether the URL's path may be fetched under the domain's
// robots.txt. Absent or unparseable rules are permissive.
func (s *Service) Allowed(ctx context.Context, rawURL string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false, lexcrawl.Errorf(lexcrawl.EINVALID, "invalid url %q", rawURL)
	}

	rules, err := s.Rules(ctx, u.Host)
	if err != nil {
		return false, err
	}
	if rules.Raw == "" {
		return true, nil
	}

	data := s.recall(u.Host)
	if data == nil {
		data, err = robotstxt.FromString(rules.Raw)
		if err != nil {
			return true, nil
		}
		s.remember(u.Host, data)
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, s.agent), nil
}

func (s *Service) fetch(ctx context.Context, domain string) (string, error) {
	if strings.Contains(domain, "://") {
		return s.get(ctx, strings.TrimSuffix(domain, "/")+"/robots.txt")
	}
	raw, err := s.get(ctx, "https://"+domain+"/robots.txt")
	if err != nil && ctx.Err() == nil && lexcrawl.ErrorCode(err) == lexcrawl.ENETWORK {
		// Plain-HTTP hosts refuse the TLS handshake.
		return s.get(ctx, "http://"+domain+"/robots.txt")
	}
	return raw, err
}

func (s *Service) get(ctx context.Context, target string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", lexcrawl.Errorf(lexcrawl.EINVALID, "invalid robots url %q: %v", target, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", lexcrawl.Errorf(lexcrawl.ENETWORK, "fetch %s: %v", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", lexcrawl.Errorf(lexcrawl.ENOTFOUND, "%s: HTTP %d", target, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", lexcrawl.Errorf(lexcrawl.ENETWORK, "read %s: %v", target, err)
	}
	return string(body), nil
}

func (s *Service) remember(domain string, data *robotstxt.RobotsData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parsed[domain] = data
}

func (s *Service) recall(domain string) *robotstxt.RobotsData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parsed[domain]
}

// requestRate extracts the Request-rate directive for the agent, preferring
// the agent's own group over the wildcard group. The value is requests per
// time unit, e.g. "1/5" is 0.2 requests per second.
func requestRate(raw, agent string) float64 {
	agent = strings.ToLower(agent)
	var current []string
	inGroup := false
	wildcard, specific := 0.0, 0.0
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		switch key {
		case "user-agent":
			if inGroup {
				current = nil
				inGroup = false
			}
			current = append(current, strings.ToLower(val))
		case "request-rate":
			inGroup = true
			rate := parseRate(val)
			if rate <= 0 {
				continue
			}
			for _, ua := range current {
				if ua == "*" && wildcard == 0 {
					wildcard = rate
				}
				if strings.Contains(agent, ua) || strings.Contains(ua, agent) {
					specific = rate
				}
			}
		default:
			inGroup = true
		}
	}
	if specific > 0 {
		return specific
	}
	return wildcard
}

// parseRate parses "requests/seconds" into requests per second.
func parseRate(val string) float64 {
	num, den, ok := strings.Cut(val, "/")
	if !ok {
		return 0
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil || n <= 0 {
		return 0
	}
	// The denominator may carry a unit suffix like "30s" or "1m".
	den = strings.TrimSpace(den)
	mult := 1.0
	switch {
	case strings.HasSuffix(den, "m"):
		den, mult = strings.TrimSuffix(den, "m"), 60
	case strings.HasSuffix(den, "h"):
		den, mult = strings.TrimSuffix(den, "h"), 3600
	case strings.HasSuffix(den, "s"):
		den = strings.TrimSuffix(den, "s")
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d <= 0 {
		return 0
	}
	return n / (d * mult)
}
