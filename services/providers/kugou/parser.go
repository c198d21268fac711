package kugou

import (
	"encoding/base64"
	"regexp"
	"strings"
)

var (
	// LRC timestamp: [mm:ss.xx] or [mm:ss:xx]
	lrcTimeRegex = regexp.MustCompile(`\[(\d{2}):(\d{2})[\.:]+(\d{2,3})\]`)

	// Credit lines such as "[00:05.00]作曲：xxx" (full-width colon)
	bannedRegex = regexp.MustCompile(`^\[\d{2}:\d{2}[\.:]\d{2,3}\].+：.+`)
)

const (
	// PureMusicText is the placeholder Kugou uses for instrumental tracks
	PureMusicText = "纯音乐，请欣赏"

	// InstrumentalText replaces PureMusicText
	InstrumentalText = "[Instrumental Only]"

	// MaxHeadTailLines is how far into the head and tail credit lines are searched
	MaxHeadTailLines = 30
)

// DecodeBase64Content decodes base64 LRC content and drops a leading BOM
func DecodeBase64Content(encoded string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(string(decoded), "\ufeff"), nil
}

// NormalizeLyrics keeps only timed lines and cuts credit blocks from the
// head and tail. Instrumental placeholders become a single InstrumentalText
// line. Content without any timed line is returned unchanged.
func NormalizeLyrics(lrcContent string) string {
	lrcContent = strings.ReplaceAll(lrcContent, "&apos;", "'")

	if strings.Contains(lrcContent, PureMusicText) {
		return "[00:00.00]" + InstrumentalText
	}

	var accepted []string
	for _, rawLine := range strings.Split(lrcContent, "\n") {
		rawLine = strings.TrimSpace(rawLine)
		if rawLine != "" && lrcTimeRegex.MatchString(rawLine) {
			accepted = append(accepted, rawLine)
		}
	}
	if len(accepted) == 0 {
		return lrcContent
	}

	// Head: drop everything up to the last credit line among the first lines
	headCut := 0
	headLimit := min(MaxHeadTailLines, len(accepted))
	for i := headLimit - 1; i >= 0; i-- {
		if bannedRegex.MatchString(accepted[i]) {
			headCut = i + 1
			break
		}
	}

	// Tail: drop everything from the first credit line found scanning backwards
	tailCut := 0
	for i := 0; i < MaxHeadTailLines && i < len(accepted); i++ {
		idx := len(accepted) - 1 - i
		if idx < headCut {
			break
		}
		if bannedRegex.MatchString(accepted[idx]) {
			tailCut = i + 1
			break
		}
	}

	end := max(len(accepted)-tailCut, headCut)
	return strings.Join(accepted[headCut:end], "\n")
}
