package graph

import "github.com/pmezard/go-difflib/difflib"

// SimilarityRatio returns the Ratcliff/Obershelp similarity of a and b in
// [0, 1]: twice the number of matched characters divided by the total number
// of characters. Two empty strings are identical.
//
// Characters are compared as runes. Characters that make up more than 1% of a
// second string of at least 200 characters are not used to anchor matches.
func SimilarityRatio(a, b string) float64 {
	return difflib.NewMatcher(splitRunes(a), splitRunes(b)).Ratio()
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
