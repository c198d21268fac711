// Package matching holds the text heuristics shared by every lyric provider:
// match normalization, search query and exact-lookup candidate builders, and
// result scoring.
package matching

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// Parenthetical or bracketed suffixes such as "(Live)" or "【官方版】"
	bracketSuffixRegex = regexp.MustCompile(`\s*[\(\[\{（【].*?[\)\]\}）】]\s*`)

	// Trailing "feat. X", "ft X", "with X" clauses
	featureSuffixRegex = regexp.MustCompile(`(?i)\s+(feat\.?|ft\.?|with)\s+.*$`)
)

// artistSeparators are tried in order; the first one found after position 0 wins
var artistSeparators = []string{"、", "/", ",", "，", "&", " x ", " X ", " feat. ", " feat ", " ft. ", " ft "}

// dashSeparators are tried in order; the first one that splits the value wins
var dashSeparators = []string{" - ", " – ", " — ", "-", "–", "—"}

// Normalize lower-cases value and keeps only letters and digits.
// The result is idempotent under Normalize.
func Normalize(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// CacheKey builds the normalized "source|title|artist" cache key
func CacheKey(sourceApp, title, artist string) string {
	return Normalize(sourceApp) + "|" + Normalize(title) + "|" + Normalize(artist)
}

// NormalizeTitle strips bracketed suffixes and feature clauses from a title
func NormalizeTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return ""
	}

	value := bracketSuffixRegex.ReplaceAllString(title, " ")
	value = featureSuffixRegex.ReplaceAllString(value, "")
	return CollapseWhitespace(value)
}

// PrimaryArtist reduces a multi-artist credit to its first segment
func PrimaryArtist(artist string) string {
	if strings.TrimSpace(artist) == "" {
		return ""
	}

	for _, sep := range artistSeparators {
		if idx := indexFold(artist, sep); idx > 0 {
			return CollapseWhitespace(artist[:idx])
		}
	}
	return CollapseWhitespace(artist)
}

// SplitByDash splits value on the first dash-like separator producing more
// than one non-empty segment. It returns nil when no separator applies.
func SplitByDash(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	for _, sep := range dashSeparators {
		var parts []string
		for _, part := range strings.Split(value, sep) {
			if part = strings.TrimSpace(part); part != "" {
				parts = append(parts, part)
			}
		}
		if len(parts) > 1 {
			return parts
		}
	}
	return nil
}

// CollapseWhitespace trims value and joins its space-separated words with single spaces
func CollapseWhitespace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// indexFold is a case-insensitive strings.Index over byte offsets of s
func indexFold(s, sep string) int {
	n := len(sep)
	for i := 0; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], sep) {
			return i
		}
	}
	return -1
}
