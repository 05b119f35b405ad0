package goquery

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// similarity scores two strings in [0, 1] with the Ratcliff-Obershelp
// sequence-matching ratio. Identical strings score 1.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	m := difflib.NewMatcher(splitRunes(a), splitRunes(b))
	return m.Ratio()
}

func splitRunes(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "")
}
