package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/lexcrawl/lexcrawl"
)

// Parse parses markup into a document-rooted node tree. The parser performs
// entity unescaping and inserts the implied html/head/body elements, so
// learned paths are stable across fragments and full documents.
func Parse(markup string) (*html.Node, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, lexcrawl.Errorf(lexcrawl.EINVALID, "parse html: %v", err)
	}
	if len(doc.Nodes) == 0 {
		return nil, lexcrawl.Errorf(lexcrawl.EINVALID, "parse html: empty document")
	}
	return doc.Nodes[0], nil
}

// tagName returns the node's tag, or the document pseudo tag for the root.
func tagName(n *html.Node) string {
	if n.Type == html.DocumentNode {
		return lexcrawl.DocumentTag
	}
	return n.Data
}

// elementChildren returns the node's direct element children in order.
func elementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// descendants returns every element under n in document order, excluding n.
func descendants(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// nodeText concatenates all text under n, like rendering the subtree without
// tags, and trims surrounding whitespace.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(cur *html.Node) {
		for c := cur.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			}
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}

// directText concatenates only n's own text children, ignoring text inside
// nested elements, and trims surrounding whitespace.
func directText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}

// attrValue returns the named attribute and whether it is present.
func attrValue(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// validAttrs extracts the attribute subset recorded in learned paths. Only
// class and style participate in matching; both keys are always present so
// paths distinguish "no class" from "any class".
func validAttrs(n *html.Node) map[string]string {
	attrs := map[string]string{"class": "", "style": ""}
	if n.Type != html.ElementNode {
		return attrs
	}
	if v, ok := attrValue(n, "class"); ok {
		attrs["class"] = normalizeSpace(v)
	}
	if v, ok := attrValue(n, "style"); ok {
		attrs["style"] = strings.TrimSpace(v)
	}
	return attrs
}

// normalizeSpace collapses runs of whitespace to single spaces and trims.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// attrsMatch reports whether the node's filtered attributes satisfy the
// recorded ones. A recorded empty value matches absent or empty attributes;
// non-empty values compare exactly, or fuzzily when ratio < 1.
func attrsMatch(n *html.Node, want map[string]string, ratio float64) bool {
	got := validAttrs(n)
	for key, wantVal := range want {
		gotVal := got[key]
		if wantVal == gotVal {
			continue
		}
		if ratio < 1 && similarity(wantVal, gotVal) >= ratio {
			continue
		}
		return false
	}
	return true
}

// findChildren returns n's direct element children matching tag and attrs.
func findChildren(n *html.Node, tag string, attrs map[string]string, ratio float64) []*html.Node {
	var out []*html.Node
	for _, c := range elementChildren(n) {
		if c.Data != tag {
			continue
		}
		if attrsMatch(c, attrs, ratio) {
			out = append(out, c)
		}
	}
	return out
}

// childIndex returns n's position among parent's direct children that share
// n's tag and filtered attributes, or -1 when n is not among them.
func childIndex(parent, n *html.Node) int {
	want := validAttrs(n)
	i := 0
	for _, c := range elementChildren(parent) {
		if c.Data != n.Data {
			continue
		}
		ca := validAttrs(c)
		if ca["class"] != want["class"] || ca["style"] != want["style"] {
			continue
		}
		if c == n {
			return i
		}
		i++
	}
	return -1
}

// traversalIndexes maps every element under root to its document-order
// position. Used to restore source order in replay results.
func traversalIndexes(root *html.Node) map[*html.Node]int {
	out := make(map[*html.Node]int)
	for i, n := range descendants(root) {
		out[n] = i
	}
	return out
}
