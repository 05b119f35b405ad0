package fs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/lexcrawl/lexcrawl"
)

// Ensure RobotsCache implements lexcrawl.RobotsCache at compile time.
var _ lexcrawl.RobotsCache = (*RobotsCache)(nil)

// RobotsCache stores parsed robots rules as one JSON file per domain.
// Concurrent writers for the same domain may race; writes are atomic and
// idempotent so the last writer wins.
type RobotsCache struct {
	dir string
}

// NewRobotsCache creates a RobotsCache rooted at dir.
func NewRobotsCache(dir string) *RobotsCache {
	return &RobotsCache{dir: dir}
}

// GetRobots returns the cached rules for a domain, reporting whether an
// entry exists. A corrupt entry is treated as absent so it gets refetched.
func (c *RobotsCache) GetRobots(domain string) (*lexcrawl.RobotsRules, bool, error) {
	data, err := os.ReadFile(c.path(domain))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var rules lexcrawl.RobotsRules
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, false, nil
	}
	return &rules, true, nil
}

// PutRobots writes the rules for rules.Domain.
func (c *RobotsCache) PutRobots(rules *lexcrawl.RobotsRules) error {
	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return lexcrawl.Errorf(lexcrawl.EINTERNAL, "encode robots rules: %v", err)
	}
	return writeAtomic(c.path(rules.Domain), data)
}

// path maps a domain to its cache file, sanitizing separators so a hostile
// domain string cannot escape the cache directory.
func (c *RobotsCache) path(domain string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(domain)
	return filepath.Join(c.dir, name+".json")
}
