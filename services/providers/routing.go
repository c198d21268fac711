package providers

import "strings"

// Source keys used in routes. Each key names a Provider's SourceApp.
const (
	SourceQQMusic    = "QQMusic"
	SourceNetease    = "Netease"
	SourceKugou      = "Kugou"
	SourceKuwo       = "Kuwo"
	SourceAppleMusic = "AppleMusic"
	SourceLrcLib     = "LrcLib"
	SourceWildcard   = "*"
)

// Family is the music app family a source identifier belongs to
type Family int

const (
	FamilyUnknown Family = iota
	FamilyQQ
	FamilyNetease
	FamilySpotify
	FamilyKugou
	FamilyKuwo
	FamilyApple
)

func (f Family) String() string {
	switch f {
	case FamilyQQ:
		return "qq"
	case FamilyNetease:
		return "netease"
	case FamilySpotify:
		return "spotify"
	case FamilyKugou:
		return "kugou"
	case FamilyKuwo:
		return "kuwo"
	case FamilyApple:
		return "apple"
	default:
		return "unknown"
	}
}

// localSources are reserved for local-file providers; none ship with this module
var localSources = []string{"LocalMusicFile", "LocalLrcFile", "LocalEslrcFile", "LocalTtmlFile"}

// officialByFamily is the preferred official provider of each family
var officialByFamily = map[Family]string{
	FamilyQQ:      SourceQQMusic,
	FamilyNetease: SourceNetease,
	FamilyKugou:   SourceKugou,
	FamilyKuwo:    SourceKuwo,
	FamilyApple:   SourceAppleMusic,
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}

// IsQQFamily reports whether source looks like a QQ Music player
func IsQQFamily(source string) bool {
	return containsFold(source, "qqmusic") || containsFold(source, "qq")
}

// IsNeteaseFamily reports whether source looks like a Netease Cloud Music player
func IsNeteaseFamily(source string) bool {
	for _, marker := range []string{"netease", "cloudmusic", "163music", "music.163", "wyy"} {
		if containsFold(source, marker) {
			return true
		}
	}
	return false
}

// IsSpotifyFamily reports whether source looks like a Spotify player
func IsSpotifyFamily(source string) bool {
	return containsFold(source, "spotify")
}

// ClassifySource maps a free-form source identifier to its family.
// Families are checked in a fixed order; the first match wins.
func ClassifySource(source string) Family {
	switch {
	case IsQQFamily(source):
		return FamilyQQ
	case IsNeteaseFamily(source):
		return FamilyNetease
	case IsSpotifyFamily(source):
		return FamilySpotify
	case containsFold(source, "kugou"):
		return FamilyKugou
	case containsFold(source, "kuwo"):
		return FamilyKuwo
	case containsFold(source, "apple"):
		return FamilyApple
	default:
		return FamilyUnknown
	}
}

// BuildRoute returns the ordered, case-insensitively de-duplicated source
// keys to try for a track coming from source.
func BuildRoute(source string) []string {
	source = strings.TrimSpace(source)

	var route []string
	seen := make(map[string]struct{})
	add := func(keys ...string) {
		for _, key := range keys {
			if strings.TrimSpace(key) == "" {
				continue
			}
			lower := strings.ToLower(key)
			if _, ok := seen[lower]; ok {
				continue
			}
			seen[lower] = struct{}{}
			route = append(route, key)
		}
	}

	if source == "" {
		add(SourceLrcLib, SourceWildcard)
		return route
	}

	add(source)

	switch family := ClassifySource(source); family {
	case FamilySpotify:
		// No official Spotify lyric API
		add(SourceQQMusic, SourceKugou, SourceNetease, SourceLrcLib)
		add(localSources...)
	case FamilyUnknown:
		add(SourceLrcLib)
		add(localSources...)
		add(SourceQQMusic, SourceNetease, SourceKugou, SourceKuwo, SourceAppleMusic)
	default:
		add(officialByFamily[family], SourceLrcLib)
		add(localSources...)
	}

	add(SourceWildcard)
	return route
}
