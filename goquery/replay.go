package goquery

import (
	"golang.org/x/net/html"

	"github.com/lexcrawl/lexcrawl"
)

// resultItem pairs a captured value with its node's document position.
type resultItem struct {
	text  string
	index int
}

// replayConfig carries per-call replay state shared by both modes.
type replayConfig struct {
	baseURL              string
	ratio                float64
	keepBlank            bool
	containSiblingLeaves bool

	// indexes is populated only when document order matters.
	indexes map[*html.Node]int
}

func attrRatio(r float64) float64 {
	if r <= 0 || r >= 1 {
		return 1
	}
	return r
}

// replaySimilar walks the rule's path level by level, keeping every node
// whose tag and attributes match. At the final level the learned sibling
// ordinal collapses repeated leaves to one, unless sibling leaves are
// explicitly wanted.
func replaySimilar(root *html.Node, stack *lexcrawl.Stack, cfg replayConfig) []resultItem {
	ratio := attrRatio(cfg.ratio)
	parents := []*html.Node{root}
	last := len(stack.Path) - 1
	for i, seg := range stack.Path {
		if seg.Tag == lexcrawl.DocumentTag {
			continue
		}
		var children []*html.Node
		for _, p := range parents {
			found := findChildren(p, seg.Tag, seg.Attrs, ratio)
			if len(found) == 0 {
				continue
			}
			if i == last && !cfg.containSiblingLeaves {
				ord := 0
				if i > 0 && stack.Path[i-1].Ordinal > 0 {
					ord = stack.Path[i-1].Ordinal
				}
				idx := min(len(found)-1, ord)
				found = found[idx : idx+1]
			}
			children = append(children, found...)
		}
		parents = children
	}
	return collect(parents, stack, cfg)
}

// replayExact follows the learned sibling ordinal at every level, starting
// from the document's root element, and lands on at most one node.
func replayExact(root *html.Node, stack *lexcrawl.Stack, cfg replayConfig) []resultItem {
	ratio := attrRatio(cfg.ratio)
	kids := elementChildren(root)
	if len(kids) == 0 || len(stack.Path) == 0 {
		return nil
	}
	p := kids[0]
	for i := 0; i < len(stack.Path)-1; i++ {
		seg := stack.Path[i]
		if seg.Tag == lexcrawl.DocumentTag {
			continue
		}
		next := stack.Path[i+1]
		found := findChildren(p, next.Tag, next.Attrs, ratio)
		if len(found) == 0 {
			return nil
		}
		ord := seg.Ordinal
		if ord < 0 {
			ord = 0
		}
		p = found[min(len(found)-1, ord)]
	}
	return collect([]*html.Node{p}, stack, cfg)
}

// collect captures the rule's wanted value from each landed node.
func collect(nodes []*html.Node, stack *lexcrawl.Stack, cfg replayConfig) []resultItem {
	base := cfg.baseURL
	if base == "" {
		base = stack.URL
	}
	var out []resultItem
	for _, n := range nodes {
		text, ok := fetchValue(n, stack, base)
		if !ok || text == "" {
			if !cfg.keepBlank {
				continue
			}
			text = ""
		}
		out = append(out, resultItem{text: text, index: cfg.indexes[n]})
	}
	return out
}

// fetchValue extracts the rule's wanted value from one node. Reports false
// when the wanted attribute is absent.
func fetchValue(n *html.Node, stack *lexcrawl.Stack, base string) (string, bool) {
	if stack.WantedAttr == "" {
		if stack.IsNonRecText {
			return directText(n), true
		}
		return nodeText(n), true
	}
	val, ok := attrValue(n, stack.WantedAttr)
	if !ok {
		return "", false
	}
	if stack.IsFullURL {
		return resolveURL(base, val), true
	}
	return val, true
}
