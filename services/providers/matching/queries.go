package matching

import "strings"

// Candidate is a (title, artist) pair for an exact database lookup
type Candidate struct {
	Title  string
	Artist string
}

// BuildSearchQueries returns the de-duplicated (case-insensitive) free-text
// queries tried by official and fuzzy search, most specific first.
func BuildSearchQueries(title, artist string) []string {
	var queries []string
	seen := make(map[string]struct{})

	add := func(value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		key := strings.ToLower(value)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		queries = append(queries, value)
	}

	normalizedTitle := NormalizeTitle(title)
	normalizedArtist := PrimaryArtist(artist)

	add(title + " " + artist)
	add(normalizedTitle + " " + normalizedArtist)
	add(title)
	add(normalizedTitle)

	if strings.TrimSpace(artist) != "" {
		primary := PrimaryArtist(artist)
		add(title + " " + primary)
		add(normalizedTitle + " " + primary)
	}

	for _, segment := range SplitByDash(title) {
		add(segment + " " + artist)
		add(segment)
	}

	return queries
}

// BuildGetCandidates returns the de-duplicated (case-insensitive) title/artist
// pairs tried against the exact lookup endpoint. Pairs with a blank title are dropped.
func BuildGetCandidates(title, artist string) []Candidate {
	var candidates []Candidate
	seen := make(map[string]struct{})

	add := func(t, a string) {
		key := strings.ToLower(t + "\x1f" + a)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		if strings.TrimSpace(t) == "" {
			return
		}
		candidates = append(candidates, Candidate{Title: t, Artist: a})
	}

	normalizedTitle := NormalizeTitle(title)
	primary := PrimaryArtist(artist)

	add(title, artist)
	add(normalizedTitle, artist)
	add(title, primary)
	add(normalizedTitle, primary)

	for _, segment := range SplitByDash(title) {
		add(segment, artist)
		add(segment, primary)
	}

	return candidates
}
