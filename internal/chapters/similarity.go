package chapters

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Similarity scores two strings in [0,1], ignoring case. The score is twice
// the number of characters in matching blocks over the combined length, with
// blocks found by repeatedly taking the longest common run.
func Similarity(a, b string) float64 {
	m := difflib.NewMatcher(runes(strings.ToLower(a)), runes(strings.ToLower(b)))
	return m.Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
