// Package lexcrawl provides rule-learning extraction of structured content
// from legal-document web pages. Given a page and example snippets of the
// wanted content, it infers a reusable structural path (a Stack) to that
// content and can later replay it, fuzzily or exactly, against the same or
// similar pages. A concurrent pipeline drives many such extractions across
// a fleet of URLs under network failure, robots.txt policy, and rate limits.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, rod/).
package lexcrawl
