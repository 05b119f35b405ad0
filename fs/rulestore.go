// Package fs provides file-based persistence for learned rule sets and the
// per-domain robots.txt cache.
package fs

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/lexcrawl/lexcrawl"
)

// RuleStore saves and loads RuleSets as JSON documents with atomic update
// semantics: content is written to a temporary file and renamed into place,
// so readers never observe a partial document.
type RuleStore struct {
	dir string
}

// NewRuleStore creates a RuleStore rooted at dir.
func NewRuleStore(dir string) *RuleStore {
	return &RuleStore{dir: dir}
}

// Save writes the rule set to name within the store directory.
func (s *RuleStore) Save(name string, rules *lexcrawl.RuleSet) error {
	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return lexcrawl.Errorf(lexcrawl.EINTERNAL, "encode rule set: %v", err)
	}
	return writeAtomic(filepath.Join(s.dir, name), data)
}

// Load reads a rule set saved under name. Both the canonical envelope form
// and the legacy bare-list form are accepted.
func (s *RuleStore) Load(name string) (*lexcrawl.RuleSet, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, lexcrawl.Errorf(lexcrawl.ENOTFOUND, "rule set %q does not exist", name)
		}
		return nil, err
	}
	rules := lexcrawl.NewRuleSet()
	if err := json.Unmarshal(data, rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// writeAtomic writes data to path via a temporary file in the same
// directory and an atomic rename.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
