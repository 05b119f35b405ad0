package goquery

import (
	stdhtml "html"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/lexcrawl/lexcrawl"
)

// match describes how a candidate node satisfied a wanted example.
type match struct {
	node *html.Node

	// wantedAttr names the matched attribute; empty means text content.
	wantedAttr   string
	isFullURL    bool
	isNonRecText bool
}

// normalizeText prepares a wanted example for comparison: entities are
// unescaped and the text is NFKD-normalized, mirroring what the HTML parser
// does to document text.
func normalizeText(s string) string {
	return norm.NFKD.String(stdhtml.UnescapeString(strings.TrimSpace(s)))
}

// textMatch reports whether a candidate value satisfies the wanted example.
// Patterns must match the whole value. Text compares exactly, or by
// similarity ratio when fuzz is in (0, 1). The candidate is NFKD-normalized
// so composed document text compares equal to the normalized wanted form.
func textMatch(w lexcrawl.Wanted, candidate string, fuzz float64) bool {
	candidate = norm.NFKD.String(candidate)
	if w.Pattern != nil {
		loc := w.Pattern.FindStringIndex(candidate)
		return loc != nil && loc[0] == 0 && loc[1] == len(candidate)
	}
	if fuzz > 0 && fuzz < 1 {
		return similarity(w.Text, candidate) >= fuzz
	}
	return w.Text == candidate
}

// matchNode tests one node against a wanted example, in priority order:
// full text, direct text, any string attribute, then href/src resolved
// against the base URL.
func matchNode(n *html.Node, w lexcrawl.Wanted, baseURL string, fuzz float64) (match, bool) {
	text := nodeText(n)
	if textMatch(w, text, fuzz) {
		// When a wrapper's text equals its parent's, the outermost
		// carrier wins; skip the inner node.
		if p := n.Parent; p != nil && p.Parent != nil && nodeText(p) == text {
			return match{}, false
		}
		return match{node: n}, true
	}
	if textMatch(w, directText(n), fuzz) {
		return match{node: n, isNonRecText: true}, true
	}
	for _, a := range n.Attr {
		val := strings.TrimSpace(a.Val)
		if textMatch(w, val, fuzz) {
			return match{node: n, wantedAttr: a.Key}, true
		}
		if a.Key == "href" || a.Key == "src" {
			if textMatch(w, resolveURL(baseURL, val), fuzz) {
				return match{node: n, wantedAttr: a.Key, isFullURL: true}, true
			}
		}
	}
	return match{}, false
}

// resolveURL joins a possibly relative reference against base. Malformed
// input falls back to the raw reference.
func resolveURL(base, ref string) string {
	if base == "" {
		return ref
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

// matchingNodes scans every element in reverse document order and returns
// those satisfying the wanted example. Reverse order makes the learning loop
// prefer the deepest, most specific carriers first.
func matchingNodes(root *html.Node, w lexcrawl.Wanted, baseURL string, fuzz float64) []match {
	all := descendants(root)
	var out []match
	for i := len(all) - 1; i >= 0; i-- {
		if m, ok := matchNode(all[i], w, baseURL, fuzz); ok {
			out = append(out, m)
		}
	}
	return out
}

// buildStack records the path from the document root down to the matched
// node. Each segment above the leaf carries the ordinal of the next level's
// node among its same-tag, same-attribute siblings.
func buildStack(m match, baseURL string) *lexcrawl.Stack {
	path := []lexcrawl.Segment{{Tag: m.node.Data, Attrs: validAttrs(m.node), Ordinal: -1}}
	parent := m.node
	for {
		gp := parent.Parent
		if gp == nil {
			break
		}
		path = append([]lexcrawl.Segment{{
			Tag:     tagName(gp),
			Attrs:   validAttrs(gp),
			Ordinal: childIndex(gp, parent),
		}}, path...)
		if gp.Parent == nil {
			break
		}
		parent = gp
	}
	return lexcrawl.NewStack(path, m.wantedAttr, m.isFullURL, m.isNonRecText, baseURL)
}

func (s *Scraper) build(root *html.Node, groups []lexcrawl.WantedGroup, opts *lexcrawl.BuildOptions) []string {
	if !opts.Update {
		s.rules.Clear()
	}
	var results []string
	for _, group := range groups {
		for _, wanted := range group.Items {
			if wanted.Pattern == nil {
				wanted.Text = normalizeText(wanted.Text)
			}
			for _, m := range matchingNodes(root, wanted, opts.BaseURL, opts.TextFuzzRatio) {
				stack := buildStack(m, opts.BaseURL)
				stack.Alias = group.Alias
				stack.RecomputeHash()
				s.rules.Add(stack)
				for _, item := range replaySimilar(root, stack, replayConfig{baseURL: opts.BaseURL}) {
					results = append(results, item.text)
				}
			}
		}
	}
	return uniqueStrings(results)
}

// uniqueStrings deduplicates preserving first-occurrence order.
func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
