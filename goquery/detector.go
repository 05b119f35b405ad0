package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lexcrawl/lexcrawl"
)

// frameworkTokens appear in script URLs and inline code of pages that render
// their content client-side.
var frameworkTokens = []string{
	"react", "angular", "vue", "jquery", "backbone", "ember",
	"next", "nuxt", "svelte",
}

// dynamicTokens indicate inline code that fetches or rewrites content after
// load.
var dynamicTokens = []string{
	"xmlhttprequest", "fetch(", "$.ajax",
	"addeventlistener(", "pushstate(", "onpopstate",
	"document.getelem", "document.createelem",
	"innerhtml", "textcontent",
	"customelements", "shadowdom",
}

// appRootSelectors are mount points that client-side frameworks populate
// after load. An empty mount point means the static markup is a shell.
var appRootSelectors = []string{
	"#root", "#app", "#__next", "#__nuxt",
	"[data-reactroot]", "[ng-app]", "[ng-version]", "[data-server-rendered]",
}

// Detector decides whether a page's static markup is a JavaScript shell that
// needs a real browser to render its content. It checks framework markers,
// empty application mount points, and the ratio of empty containers.
type Detector struct {
	emptyThreshold int
}

var _ lexcrawl.Detector = (*Detector)(nil)

// NewDetector creates a Detector with the default empty-container threshold.
func NewDetector() *Detector {
	return &Detector{emptyThreshold: 5}
}

// NeedsBrowser analyzes HTML and reports whether a browser re-fetch is
// likely required. Unparseable markup is assumed static.
func (d *Detector) NeedsBrowser(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}

	// An empty framework mount point is the strongest signal: the page is
	// a shell waiting for client-side rendering.
	for _, sel := range appRootSelectors {
		root := doc.Find(sel).First()
		if root.Length() > 0 && strings.TrimSpace(root.Text()) == "" && root.Children().Length() == 0 {
			return true
		}
	}

	if d.hasFrameworkScripts(doc) && !d.hasTextContent(doc) {
		return true
	}

	if d.hasDynamicInlineScripts(doc) && !d.hasTextContent(doc) {
		return true
	}

	// Many empty containers on a page with no real text suggest content is
	// populated after load.
	if d.countEmptyContainers(doc) > d.emptyThreshold && !d.hasTextContent(doc) {
		return true
	}

	return false
}

// hasFrameworkScripts reports whether any script tag references a known
// client-side framework.
func (d *Detector) hasFrameworkScripts(doc *goquery.Document) bool {
	found := false
	doc.Find("script[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		src = strings.ToLower(src)
		for _, token := range frameworkTokens {
			if strings.Contains(src, token) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// hasDynamicInlineScripts reports whether inline script code fetches or
// rewrites content.
func (d *Detector) hasDynamicInlineScripts(doc *goquery.Document) bool {
	found := false
	doc.Find("script:not([src])").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		code := strings.ToLower(s.Text())
		for _, token := range dynamicTokens {
			if strings.Contains(code, token) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// hasTextContent reports whether the body carries a meaningful amount of
// visible text. Script and style text does not count.
func (d *Detector) hasTextContent(doc *goquery.Document) bool {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript").Remove()
	return len(strings.Fields(body.Text())) >= 25
}

// countEmptyContainers counts content containers with no children and no
// text.
func (d *Detector) countEmptyContainers(doc *goquery.Document) int {
	count := 0
	doc.Find("div, span, p, section, article").Each(func(_ int, s *goquery.Selection) {
		if s.Children().Length() == 0 && strings.TrimSpace(s.Text()) == "" {
			count++
		}
	})
	return count
}
