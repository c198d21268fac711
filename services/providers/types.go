package providers

import (
	"context"

	"lyricsync-go/services/lyric"
)

// SongCandidate is one song returned by an official catalogue search
type SongCandidate struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// SearchItem is one lyric record returned by a database search
type SearchItem struct {
	Title   string        `json:"title"`
	Artist  string        `json:"artist"`
	Payload lyric.Payload `json:"payload"`
}

// OfficialSource is a music service's own catalogue: search songs, then
// fetch lyrics by song identifier.
type OfficialSource interface {
	SearchSongs(ctx context.Context, query string) ([]SongCandidate, error)
	FetchLyrics(ctx context.Context, songID string) (lyric.Payload, error)
}

// LyricsDatabase is a generic lyric database with an exact lookup and a
// free-text search endpoint.
type LyricsDatabase interface {
	Get(ctx context.Context, title, artist string) (lyric.Payload, error)
	Search(ctx context.Context, query string) ([]SearchItem, error)
}

// Stage names reported to a Recorder
const (
	StageCache    = "cache"
	StageOfficial = "official"
	StageExact    = "exact"
	StageSearch   = "search"
	StageMiss     = "miss"
)

// Recorder receives one stage outcome per resolution
type Recorder interface {
	RecordStage(provider, stage string)
}

// ProviderError represents an error from a provider with additional context
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Provider + ": " + e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new ProviderError
func NewProviderError(provider, message string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Message:  message,
		Err:      err,
	}
}
