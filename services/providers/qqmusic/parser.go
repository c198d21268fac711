package qqmusic

import (
	"encoding/base64"
	"strings"
	"unicode/utf8"
)

// StripJSONP returns the JSON inside a JSONP wrapper such as
// "MusicJsonCallback({...})". Plain JSON is returned trimmed; anything
// else yields "".
func StripJSONP(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return trimmed
	}

	open := strings.IndexByte(trimmed, '(')
	end := strings.LastIndexByte(trimmed, ')')
	if open >= 0 && end > open {
		return strings.TrimSpace(trimmed[open+1 : end])
	}
	return ""
}

// LooksLikeTimedLyric reports whether value contains both '[' and ':'
func LooksLikeTimedLyric(value string) bool {
	if strings.TrimSpace(value) == "" {
		return false
	}
	return strings.Contains(value, "[") && strings.Contains(value, ":")
}

// DecodeIfBase64 decodes value when it is base64 of UTF-8 text. Timed
// lyrics, invalid base64 and blank decodings are returned unchanged.
func DecodeIfBase64(value string) string {
	if strings.TrimSpace(value) == "" || LooksLikeTimedLyric(value) {
		return value
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(value))
	if err != nil || !utf8.Valid(decoded) {
		return value
	}
	if text := string(decoded); strings.TrimSpace(text) != "" {
		return text
	}
	return value
}
