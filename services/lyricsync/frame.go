package lyricsync

import (
	"time"

	"lyricsync-go/services/lyric"
	"lyricsync-go/services/providers"
)

// TransitionText is shown while the first line is still ahead
const TransitionText = "..."

// Leads are the per-family line-switch leads added to the playback position
type Leads struct {
	QQMusic time.Duration
	Netease time.Duration
	Spotify time.Duration
	Default time.Duration
}

// DefaultLeads returns 500 ms for QQ Music and 300 ms for everything else
func DefaultLeads() Leads {
	return Leads{
		QQMusic: 500 * time.Millisecond,
		Netease: 300 * time.Millisecond,
		Spotify: 300 * time.Millisecond,
		Default: 300 * time.Millisecond,
	}
}

// For returns the lead for a source identifier
func (l Leads) For(source string) time.Duration {
	switch {
	case providers.IsQQFamily(source):
		return l.QQMusic
	case providers.IsNeteaseFamily(source):
		return l.Netease
	case providers.IsSpotifyFamily(source):
		return l.Spotify
	default:
		return l.Default
	}
}

// ComputeFrame renders doc at position. The current line is the last one
// at or before position+lead; progress through it is measured on the same
// adjusted position.
func ComputeFrame(doc *lyric.Document, position, lead time.Duration) lyric.DisplayFrame {
	if doc.IsEmpty() {
		return lyric.EmptyFrame()
	}

	adjusted := position + lead
	idx := -1
	for i := 0; i < doc.Len(); i++ {
		if doc.Line(i).Timestamp > adjusted {
			break
		}
		idx = i
	}

	if idx < 0 {
		first := doc.Line(0)
		if first.Timestamp > position {
			return lyric.DisplayFrame{
				CurrentLine:      TransitionText,
				NextLine:         first.Text,
				CurrentLineIndex: -1,
			}
		}

		// Only reachable with a negative lead
		frame := lyric.DisplayFrame{CurrentLine: first.Text}
		if doc.Len() > 1 {
			frame.NextLine = doc.Line(1).Text
		}
		return frame
	}

	current := doc.Line(idx)
	frame := lyric.DisplayFrame{CurrentLine: current.Text, CurrentLineIndex: idx}
	if idx+1 < doc.Len() {
		next := doc.Line(idx + 1)
		frame.NextLine = next.Text
		if span := next.Timestamp - current.Timestamp; span > 0 {
			frame.LineProgress = clamp(float64(adjusted-current.Timestamp)/float64(span), 0, 1)
		}
	}
	return frame
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

// PlaceholderDocument is held when no provider produced lyrics for track
func PlaceholderDocument(track lyric.TrackInfo) *lyric.Document {
	return lyric.NewDocument([]lyric.Line{
		{Timestamp: 0, Text: "Lyrics unavailable (adapter fallback)"},
		{Timestamp: 3 * time.Second, Text: track.Title + " - " + track.Artist},
	})
}
