package utils

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// CompareStrings scores two strings in [0,1] with the Sørensen–Dice
// coefficient over character bigrams, ignoring whitespace. Case matters.
func CompareStrings(a, b string) float64 {
	a = strings.Join(strings.Fields(a), "")
	b = strings.Join(strings.Fields(b), "")
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	dice := metrics.NewSorensenDice()
	dice.CaseSensitive = true
	return strutil.Similarity(a, b, dice)
}

// BestMatch returns the index of the candidate most similar to target, or -1
// for an empty list. Ties keep the earlier candidate.
func BestMatch(target string, candidates []string) int {
	best, bestScore := -1, -1.0
	for i, c := range candidates {
		if score := CompareStrings(target, c); score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}
