package matching

import "strings"

// Weights per field: exact, contains, overlap
const (
	titleExact, titleContains, titleOverlap    = 100, 60, 30
	artistExact, artistContains, artistOverlap = 60, 35, 15

	// Added when both title and artist match exactly
	bothExactBonus = 80

	minCommonPrefix = 2
)

// Score rates how well a search result matches the target track.
// Both sides are normalized before comparison.
func Score(targetTitle, targetArtist, resultTitle, resultArtist string) int {
	tt := Normalize(targetTitle)
	ta := Normalize(targetArtist)
	rt := Normalize(resultTitle)
	ra := Normalize(resultArtist)

	score := ScoreField(tt, rt, titleExact, titleContains, titleOverlap)
	score += ScoreField(ta, ra, artistExact, artistContains, artistOverlap)

	if tt != "" && ta != "" && tt == rt && ta == ra {
		score += bothExactBonus
	}
	return score
}

// ScoreField compares two already-normalized values. Overlap means a common
// prefix of at least two runes.
func ScoreField(target, result string, exact, contains, overlap int) int {
	if target == "" || result == "" {
		return 0
	}
	if target == result {
		return exact
	}
	if strings.Contains(target, result) || strings.Contains(result, target) {
		return contains
	}

	a, b := []rune(target), []rune(result)
	common := 0
	for common < len(a) && common < len(b) && a[common] == b[common] {
		common++
	}
	if common >= minCommonPrefix {
		return overlap
	}
	return 0
}
