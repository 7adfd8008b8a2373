package matcher

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// SimilarityRatio returns the case-insensitive matching-blocks ratio of two
// descriptions: 2*M/T where M is the number of characters in the matching
// blocks and T the combined length. It is 0 when either side is empty.
func SimilarityRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}

	m := difflib.NewMatcher(splitRunes(strings.ToLower(a)), splitRunes(strings.ToLower(b)))
	return m.Ratio()
}

func splitRunes(s string) []string {
	return strings.Split(s, "")
}
