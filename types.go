package main

import (
	"time"

	"lyricsync-go/cache"
	"lyricsync-go/services"
	"lyricsync-go/services/lyric"
	"lyricsync-go/services/timeline"
)

// trackJSON identifies the playing track on the wire
type trackJSON struct {
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	SourceApp string `json:"sourceApp"`
}

// SnapshotRequest is the body of POST /frame. Positions are milliseconds.
type SnapshotRequest struct {
	IsPlaying              bool       `json:"isPlaying"`
	PositionMs             int64      `json:"positionMs"`
	Track                  *trackJSON `json:"track,omitempty"`
	RawPositionMs          *int64     `json:"rawPositionMs,omitempty"`
	ExtrapolatedPositionMs *int64     `json:"extrapolatedPositionMs,omitempty"`
}

func ms(v int64) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func optionalMs(v *int64) *time.Duration {
	if v == nil {
		return nil
	}
	d := ms(*v)
	return &d
}

func toMs(d time.Duration) int64 {
	return d.Milliseconds()
}

// Snapshot converts the request into the core's snapshot
func (r SnapshotRequest) Snapshot() lyric.PlaybackSnapshot {
	snap := lyric.PlaybackSnapshot{
		IsPlaying:            r.IsPlaying,
		Position:             ms(r.PositionMs),
		RawPosition:          optionalMs(r.RawPositionMs),
		ExtrapolatedPosition: optionalMs(r.ExtrapolatedPositionMs),
	}
	if r.Track != nil {
		track := lyric.NewTrackInfo(r.Track.SourceApp, r.Track.Title, r.Track.Artist)
		snap.Track = &track
	}
	return snap
}

// FrameResponse is the body returned by POST /frame
type FrameResponse struct {
	lyric.DisplayFrame
	State     string             `json:"state"`
	SourceApp string             `json:"sourceApp,omitempty"`
	Timeline  *SelectionResponse `json:"timeline,omitempty"`
}

// LineJSON is one lyric line on the wire
type LineJSON struct {
	TimeMs int64  `json:"timeMs"`
	Text   string `json:"text"`
}

// LyricsResponse is the body returned by GET /lyrics
type LyricsResponse struct {
	Found     bool       `json:"found"`
	SourceApp string     `json:"sourceApp,omitempty"`
	Lines     []LineJSON `json:"lines"`
}

func newLyricsResponse(result lyric.ResolveResult) LyricsResponse {
	resp := LyricsResponse{Found: result.Found(), SourceApp: result.SourceApp, Lines: []LineJSON{}}
	for _, line := range result.Document.Lines() {
		resp.Lines = append(resp.Lines, LineJSON{TimeMs: toMs(line.Timestamp), Text: line.Text})
	}
	return resp
}

// TimelineRequest is the body of POST /timeline/select
type TimelineRequest struct {
	Source                 timeline.Identity `json:"source"`
	IsPlaying              bool              `json:"isPlaying"`
	RawPositionMs          int64             `json:"rawPositionMs"`
	LastUpdateAgeMs        int64             `json:"lastUpdateAgeMs"`
	ExtrapolatedPositionMs int64             `json:"extrapolatedPositionMs"`
}

// Diagnostics converts the request into timeline diagnostics
func (r TimelineRequest) Diagnostics() timeline.Diagnostics {
	return timeline.Diagnostics{
		Source:               r.Source,
		IsPlaying:            r.IsPlaying,
		RawPosition:          ms(r.RawPositionMs),
		LastUpdateAge:        ms(r.LastUpdateAgeMs),
		ExtrapolatedPosition: ms(r.ExtrapolatedPositionMs),
	}
}

// SelectionResponse reports the chosen strategy and position
type SelectionResponse struct {
	Strategy   string `json:"strategy"`
	PositionMs int64  `json:"positionMs"`
}

func newSelectionResponse(sel timeline.Selection) *SelectionResponse {
	return &SelectionResponse{Strategy: sel.Strategy, PositionMs: toMs(sel.Position)}
}

// RouteResponse is the body returned by GET /route
type RouteResponse struct {
	Source string               `json:"source"`
	Route  []services.RouteStep `json:"route"`
}

// CacheResponse is the body returned by GET /cache
type CacheResponse struct {
	Dir        string                `json:"dir"`
	Namespaces []cache.NamespaceInfo `json:"namespaces"`
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error string `json:"error"`
}
