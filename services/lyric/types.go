package lyric

import (
	"sort"
	"strings"
	"time"
)

// UnknownTitle is the title the session collaborator reports when it cannot
// identify the playing track. Tracks with this title are never resolved.
const UnknownTitle = "Unknown Title"

// UnknownArtist is the artist counterpart of UnknownTitle
const UnknownArtist = "Unknown Artist"

// TrackInfo identifies the playing track. ID is a composite used only for
// change detection.
type TrackInfo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	SourceApp string `json:"sourceApp"`
}

// NewTrackInfo builds a TrackInfo whose ID is "source|title|artist"
func NewTrackInfo(sourceApp, title, artist string) TrackInfo {
	return TrackInfo{
		ID:        sourceApp + "|" + title + "|" + artist,
		Title:     title,
		Artist:    artist,
		SourceApp: sourceApp,
	}
}

// Key returns ID, or "source|title|artist" when ID is empty
func (t TrackInfo) Key() string {
	if t.ID != "" {
		return t.ID
	}
	return t.SourceApp + "|" + t.Title + "|" + t.Artist
}

// IsUnidentified reports whether the track carries the reserved unknown title
func (t TrackInfo) IsUnidentified() bool {
	return strings.EqualFold(strings.TrimSpace(t.Title), UnknownTitle)
}

// Line is one renderable lyric line
type Line struct {
	Timestamp time.Duration `json:"timestamp"`
	Text      string        `json:"text"`
}

// Document is an immutable, timestamp-ordered sequence of lines.
// Duplicate timestamps are allowed.
type Document struct {
	lines []Line
}

// NewDocument copies lines and stably sorts the copy by timestamp
func NewDocument(lines []Line) *Document {
	sorted := make([]Line, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return &Document{lines: sorted}
}

// Len returns the number of lines; a nil document has none
func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.lines)
}

// Line returns the i-th line
func (d *Document) Line(i int) Line {
	return d.lines[i]
}

// Lines returns a copy of the document's lines
func (d *Document) Lines() []Line {
	if d == nil {
		return nil
	}
	out := make([]Line, len(d.lines))
	copy(out, d.lines)
	return out
}

// IsEmpty reports whether the document is nil or has no lines
func (d *Document) IsEmpty() bool {
	return d.Len() == 0
}

// Payload is the provider-agnostic raw lyric form stored in the cache before parsing
type Payload struct {
	SyncedLyrics string `json:"syncedLyrics,omitempty"`
	PlainLyrics  string `json:"plainLyrics,omitempty"`
}

// HasLyrics reports whether either field carries non-blank text
func (p Payload) HasLyrics() bool {
	return strings.TrimSpace(p.SyncedLyrics) != "" || strings.TrimSpace(p.PlainLyrics) != ""
}

// ResolveResult reports which provider, if any, satisfied a request
type ResolveResult struct {
	Document  *Document
	SourceApp string
}

// Found reports whether the result carries a non-empty document
func (r ResolveResult) Found() bool {
	return !r.Document.IsEmpty()
}

// PlaybackSnapshot is supplied once per poll by the OS session collaborator.
// RawPosition and ExtrapolatedPosition are optional timeline diagnostics.
type PlaybackSnapshot struct {
	IsPlaying            bool
	Position             time.Duration
	Track                *TrackInfo
	RawPosition          *time.Duration
	ExtrapolatedPosition *time.Duration
}

// DisplayFrame is the per-tick render contract
type DisplayFrame struct {
	CurrentLine      string  `json:"currentLine"`
	NextLine         string  `json:"nextLine"`
	LineProgress     float64 `json:"lineProgress"`
	CurrentLineIndex int     `json:"currentLineIndex"`
}

// EmptyFrame is returned when no document is held
func EmptyFrame() DisplayFrame {
	return DisplayFrame{CurrentLineIndex: -1}
}
