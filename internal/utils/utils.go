package utils

import (
	"fmt"
	"math"
	"time"
	"unicode"

	"github.com/agnivade/levenshtein"
)

func ShortenString(s string, l int) string {
	if len(s) > l && l != 0 {
		return fmt.Sprintf("%s...", s[:l])
	}
	return s
}

// OnlyContainsDigits returns true if s consists of ASCII digits only.
// An empty string returns true.
func OnlyContainsDigits(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// RoundSeconds rounds d to whole seconds.
func RoundSeconds(d time.Duration) int {
	return int(math.Round(d.Seconds()))
}

// ClosestMatch returns the candidate with the smallest levenshtein distance
// to s. If the best distance is larger than maxDist, an empty string is returned.
func ClosestMatch(s string, candidates []string, maxDist int) string {
	best, bestDist := "", maxDist+1
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(s, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
