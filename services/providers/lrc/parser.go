// Package lrc turns raw lyric text into ordered lyric lines.
package lrc

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"lyricsync-go/services/lyric"
)

var (
	// LRC timestamp tag: [m:ss], [mm:ss.f], [mm:ss.ff], [mm:ss.fff], [mm:ss:ff].
	// Full-width colon and full stop are accepted.
	timeTagRegex = regexp.MustCompile(`\[(\d{1,2})[:\x{FF1A}](\d{2})(?:[.\x{FF0E}:\x{FF1A}](\d{1,3}))?\]`)

	// Invisible characters some sources leave in lyric text
	invisibleReplacer = strings.NewReplacer(
		"\uFEFF", "",
		"\u200B", "",
		"\u200C", "",
		"\u200D", "",
		"\u2060", "",
	)
)

// PlainLineInterval is the synthetic spacing given to untimed lyric lines
const PlainLineInterval = 3 * time.Second

// ScriptConverter rewrites lyric text, e.g. traditional to simplified Chinese
type ScriptConverter interface {
	Convert(text string) string
}

// Parser parses LRC and plain lyric text. The zero value is ready to use
// and leaves text unconverted.
type Parser struct {
	Converter ScriptConverter
}

// NewParser returns a Parser applying converter to every line; converter may be nil
func NewParser(converter ScriptConverter) *Parser {
	return &Parser{Converter: converter}
}

// Parse prefers synced lyrics and falls back to plain text.
// It returns nil when neither yields a line.
func (p *Parser) Parse(payload lyric.Payload) *lyric.Document {
	if lines := p.ParseLRC(payload.SyncedLyrics); len(lines) > 0 {
		return lyric.NewDocument(lines)
	}

	plain := payload.PlainLyrics
	if strings.TrimSpace(plain) == "" && !timeTagRegex.MatchString(payload.SyncedLyrics) {
		// Some sources put untimed text in the synced field
		plain = payload.SyncedLyrics
	}
	if lines := p.ParsePlain(plain); len(lines) > 0 {
		return lyric.NewDocument(lines)
	}
	return nil
}

// ParseLRC extracts timed lines. Every tag on a line produces one entry
// carrying the text after the last tag. Lines without tags or with blank
// text are skipped. The result is stably sorted by timestamp.
func (p *Parser) ParseLRC(content string) []lyric.Line {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	var lines []lyric.Line
	for _, rawLine := range strings.Split(content, "\n") {
		rawLine = strings.TrimSpace(rawLine)
		if rawLine == "" {
			continue
		}

		matches := timeTagRegex.FindAllStringSubmatchIndex(rawLine, -1)
		if len(matches) == 0 {
			continue
		}

		text := p.cleanText(rawLine[matches[len(matches)-1][1]:])
		if text == "" {
			continue
		}

		for _, m := range matches {
			minutes, err := strconv.Atoi(rawLine[m[2]:m[3]])
			if err != nil {
				continue
			}
			seconds, err := strconv.Atoi(rawLine[m[4]:m[5]])
			if err != nil {
				continue
			}
			fraction := ""
			if m[6] >= 0 {
				fraction = rawLine[m[6]:m[7]]
			}

			ts := time.Duration(minutes)*time.Minute +
				time.Duration(seconds)*time.Second +
				time.Duration(ParseMillisecond(fraction))*time.Millisecond
			lines = append(lines, lyric.Line{Timestamp: ts, Text: text})
		}
	}

	return lyric.NewDocument(lines).Lines()
}

// ParsePlain assigns non-blank lines synthetic timestamps 0s, 3s, 6s, ...
func (p *Parser) ParsePlain(content string) []lyric.Line {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	var lines []lyric.Line
	for _, rawLine := range strings.Split(content, "\n") {
		text := p.cleanText(rawLine)
		if text == "" {
			continue
		}
		lines = append(lines, lyric.Line{
			Timestamp: time.Duration(len(lines)) * PlainLineInterval,
			Text:      text,
		})
	}
	return lines
}

// ParseMillisecond converts an LRC fraction to milliseconds:
// one digit is tenths, two digits hundredths, three digits milliseconds.
// Empty or non-numeric input yields 0.
func ParseMillisecond(fraction string) int {
	fraction = strings.TrimSpace(fraction)
	if fraction == "" {
		return 0
	}
	if len(fraction) > 3 {
		fraction = fraction[:3]
	}

	value, err := strconv.Atoi(fraction)
	if err != nil {
		return 0
	}

	switch len(fraction) {
	case 1:
		return value * 100
	case 2:
		return value * 10
	default:
		return value
	}
}

func (p *Parser) cleanText(text string) string {
	text = strings.TrimSpace(invisibleReplacer.Replace(text))
	if text == "" || p == nil || p.Converter == nil {
		return text
	}
	return p.Converter.Convert(text)
}
