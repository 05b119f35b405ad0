package lexcrawl

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// DocumentTag is the pseudo tag name recorded for the document root node in
// a learned path. Replay skips segments carrying it.
const DocumentTag = "[document]"

// Segment is one level of a learned extraction path: a tag name, the
// filtered attribute set recorded at learning time (class and style only),
// and the sibling ordinal of the next path level among its same-tag
// siblings. Ordinal is -1 when it was not needed for disambiguation.
type Segment struct {
	Tag     string
	Attrs   map[string]string
	Ordinal int
}

// MarshalJSON encodes the segment as a 2- or 3-element array:
// [tag, {attr: value}] or [tag, {attr: value}, ordinal].
func (s Segment) MarshalJSON() ([]byte, error) {
	attrs := s.Attrs
	if attrs == nil {
		attrs = map[string]string{}
	}
	if s.Ordinal < 0 {
		return json.Marshal([]any{s.Tag, attrs})
	}
	return json.Marshal([]any{s.Tag, attrs, s.Ordinal})
}

// UnmarshalJSON accepts both the 2- and 3-element array forms.
func (s *Segment) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return Errorf(EINVALID, "path segment is not an array: %v", err)
	}
	if len(parts) < 2 || len(parts) > 3 {
		return Errorf(EINVALID, "path segment must have 2 or 3 elements, got %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], &s.Tag); err != nil {
		return Errorf(EINVALID, "path segment tag: %v", err)
	}
	if err := json.Unmarshal(parts[1], &s.Attrs); err != nil {
		return Errorf(EINVALID, "path segment attrs: %v", err)
	}
	s.Ordinal = -1
	if len(parts) == 3 {
		if err := json.Unmarshal(parts[2], &s.Ordinal); err != nil {
			return Errorf(EINVALID, "path segment ordinal: %v", err)
		}
	}
	return nil
}

// Stack is a learned extraction rule: the path from the document root down
// to a matched node, plus flags describing what to capture from it.
type Stack struct {
	// Path runs root-first; the final segment describes the matched node.
	Path []Segment `json:"content"`

	// WantedAttr names the attribute to capture. Empty means text content.
	WantedAttr string `json:"wanted_attr"`

	// IsFullURL resolves the captured value against URL before returning it.
	IsFullURL bool `json:"is_full_url"`

	// IsNonRecText captures only the node's direct text, not descendants'.
	IsNonRecText bool `json:"is_non_rec_text"`

	// URL is the base URL for resolution; recorded only when IsFullURL.
	URL string `json:"url"`

	// Hash identifies duplicate rules. Call RecomputeHash after mutating
	// any other field.
	Hash string `json:"hash"`

	// ID is a random identifier assigned at construction.
	ID string `json:"stack_id"`

	// Alias groups rules learned for the same wanted-content category.
	Alias string `json:"alias,omitempty"`
}

// NewStack constructs a Stack with a fresh random ID and a computed hash.
func NewStack(path []Segment, wantedAttr string, isFullURL, isNonRecText bool, baseURL string) *Stack {
	s := &Stack{
		Path:         path,
		WantedAttr:   wantedAttr,
		IsFullURL:    isFullURL,
		IsNonRecText: isNonRecText,
		ID:           "rule_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8],
	}
	if isFullURL {
		s.URL = baseURL
	}
	s.RecomputeHash()
	return s
}

// RecomputeHash recomputes the content hash over every field except the
// hash itself and the random ID. Two Stacks with equal hashes are
// duplicates and only one is retained per RuleSet.
func (s *Stack) RecomputeHash() {
	payload, err := json.Marshal(struct {
		Path         []Segment `json:"content"`
		WantedAttr   string    `json:"wanted_attr"`
		IsFullURL    bool      `json:"is_full_url"`
		IsNonRecText bool      `json:"is_non_rec_text"`
		URL          string    `json:"url"`
		Alias        string    `json:"alias"`
	}{s.Path, s.WantedAttr, s.IsFullURL, s.IsNonRecText, s.URL, s.Alias})
	if err != nil {
		// Segments marshal to plain arrays and maps; this cannot fail.
		panic(err)
	}
	s.Hash = fmt.Sprintf("%016x", xxhash.Sum64(payload))
}

// RuleSet is an ordered collection of learned rules owned by one scraper
// instance. Order is insertion order. It is not safe for uncoordinated
// concurrent mutation; callers serialize structural edits externally.
type RuleSet struct {
	stacks []*Stack
}

// NewRuleSet returns an empty RuleSet.
func NewRuleSet() *RuleSet {
	return &RuleSet{}
}

// Add appends a Stack unless one with the same hash is already present.
// Reports whether the Stack was added.
func (rs *RuleSet) Add(s *Stack) bool {
	for _, existing := range rs.stacks {
		if existing.Hash == s.Hash {
			return false
		}
	}
	rs.stacks = append(rs.stacks, s)
	return true
}

// Stacks returns the rules in insertion order. The returned slice is shared;
// callers must not reorder it.
func (rs *RuleSet) Stacks() []*Stack {
	return rs.stacks
}

// Len returns the number of rules.
func (rs *RuleSet) Len() int {
	return len(rs.stacks)
}

// Clear removes all rules.
func (rs *RuleSet) Clear() {
	rs.stacks = nil
}

// Remove deletes rules whose ID is in ids, in place.
func (rs *RuleSet) Remove(ids ...string) {
	member := make(map[string]bool, len(ids))
	for _, id := range ids {
		member[id] = true
	}
	kept := rs.stacks[:0]
	for _, s := range rs.stacks {
		if !member[s.ID] {
			kept = append(kept, s)
		}
	}
	rs.stacks = kept
}

// Keep deletes all rules except those whose ID is in ids, in place.
func (rs *RuleSet) Keep(ids ...string) {
	member := make(map[string]bool, len(ids))
	for _, id := range ids {
		member[id] = true
	}
	kept := rs.stacks[:0]
	for _, s := range rs.stacks {
		if member[s.ID] {
			kept = append(kept, s)
		}
	}
	rs.stacks = kept
}

// SetAliases assigns aliases by rule ID and recomputes the affected hashes.
// Returns EINVALID if any ID is unknown; no rule is modified in that case.
func (rs *RuleSet) SetAliases(aliases map[string]string) error {
	byID := make(map[string]*Stack, len(rs.stacks))
	for _, s := range rs.stacks {
		byID[s.ID] = s
	}
	for id := range aliases {
		if _, ok := byID[id]; !ok {
			return Errorf(EINVALID, "unknown rule id %q", id)
		}
	}
	for id, alias := range aliases {
		s := byID[id]
		s.Alias = alias
		s.RecomputeHash()
	}
	return nil
}

// MarshalJSON encodes the RuleSet in the canonical envelope form:
// {"stack_list": [...]}.
func (rs *RuleSet) MarshalJSON() ([]byte, error) {
	stacks := rs.stacks
	if stacks == nil {
		stacks = []*Stack{}
	}
	return json.Marshal(map[string][]*Stack{"stack_list": stacks})
}

// UnmarshalJSON decodes the canonical envelope form, and also tolerates the
// legacy encoding where the document is a bare list of stacks.
func (rs *RuleSet) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimLeft(string(data), " \t\r\n")
	if strings.HasPrefix(trimmed, "[") {
		var stacks []*Stack
		if err := json.Unmarshal(data, &stacks); err != nil {
			return Errorf(EINVALID, "legacy rule list: %v", err)
		}
		rs.stacks = stacks
		return nil
	}
	var envelope struct {
		StackList []*Stack `json:"stack_list"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Errorf(EINVALID, "rule document: %v", err)
	}
	if envelope.StackList == nil {
		return Errorf(EINVALID, "rule document has no stack_list")
	}
	rs.stacks = envelope.StackList
	return nil
}
