package providers

import (
	"reflect"
	"strings"
	"testing"
)

var locals = []string{"LocalMusicFile", "LocalLrcFile", "LocalEslrcFile", "LocalTtmlFile"}

func route(parts ...interface{}) []string {
	var out []string
	for _, p := range parts {
		switch v := p.(type) {
		case string:
			out = append(out, v)
		case []string:
			out = append(out, v...)
		}
	}
	return out
}

func TestBuildRoute(t *testing.T) {
	tests := []struct {
		source   string
		expected []string
	}{
		{"QQMusic.exe", route("QQMusic.exe", "QQMusic", "LrcLib", locals, "*")},
		{"QQMusic", route("QQMusic", "LrcLib", locals, "*")},
		{"qqmusic", route("qqmusic", "LrcLib", locals, "*")},
		{"cloudmusic.exe", route("cloudmusic.exe", "Netease", "LrcLib", locals, "*")},
		{"com.netease.music.163", route("com.netease.music.163", "Netease", "LrcLib", locals, "*")},
		{"Spotify.exe", route("Spotify.exe", "QQMusic", "Kugou", "Netease", "LrcLib", locals, "*")},
		{"KugouMusic", route("KugouMusic", "Kugou", "LrcLib", locals, "*")},
		{"KuwoMusic", route("KuwoMusic", "Kuwo", "LrcLib", locals, "*")},
		{"AppleInc.AppleMusicWin", route("AppleInc.AppleMusicWin", "AppleMusic", "LrcLib", locals, "*")},
		{"foobar2000", route("foobar2000", "LrcLib", locals, "QQMusic", "Netease", "Kugou", "Kuwo", "AppleMusic", "*")},
		{"LrcLib", route("LrcLib", locals, "QQMusic", "Netease", "Kugou", "Kuwo", "AppleMusic", "*")},
		{"", route("LrcLib", "*")},
		{"   ", route("LrcLib", "*")},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got := BuildRoute(tt.source)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("BuildRoute(%q) =\n  %v\nwant\n  %v", tt.source, got, tt.expected)
			}
		})
	}
}

func TestBuildRoute_NoCaseInsensitiveDuplicates(t *testing.T) {
	for _, source := range []string{"spotify", "QQMUSIC", "netease", "*", "lrclib", "kugou"} {
		seen := map[string]bool{}
		for _, key := range BuildRoute(source) {
			lower := strings.ToLower(key)
			if seen[lower] {
				t.Errorf("BuildRoute(%q) repeats %q", source, key)
			}
			seen[lower] = true
		}
	}
}

func TestBuildRoute_AlwaysEndsWithWildcard(t *testing.T) {
	for _, source := range []string{"", "Spotify", "QQMusic", "unknown-player", "AppleMusic"} {
		r := BuildRoute(source)
		if r[len(r)-1] != SourceWildcard {
			t.Errorf("BuildRoute(%q) does not end with the wildcard: %v", source, r)
		}
	}
}

func TestClassifySource(t *testing.T) {
	tests := map[string]Family{
		"QQMusic.exe":    FamilyQQ,
		"wyy":            FamilyNetease,
		"163music":       FamilyNetease,
		"Spotify":        FamilySpotify,
		"kugou":          FamilyKugou,
		"KUWO":           FamilyKuwo,
		"Apple Music":    FamilyApple,
		"Windows Player": FamilyUnknown,
		"":               FamilyUnknown,
	}
	for source, want := range tests {
		if got := ClassifySource(source); got != want {
			t.Errorf("ClassifySource(%q) = %s, want %s", source, got, want)
		}
	}
}

func TestFamilyPredicates(t *testing.T) {
	if !IsSpotifyFamily("com.spotify.client") || IsSpotifyFamily("QQMusic") {
		t.Error("IsSpotifyFamily misclassified")
	}
	if !IsNeteaseFamily("music.163.com") || IsNeteaseFamily("Spotify") {
		t.Error("IsNeteaseFamily misclassified")
	}
	if !IsQQFamily("QQ") || IsQQFamily("Netease") {
		t.Error("IsQQFamily misclassified")
	}
}
