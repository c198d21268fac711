// Package kugou is the Kugou official source and its provider. Songs are
// found by keyword, identified by their file hash, and their lyric versions
// are listed and downloaded from the krcs service.
package kugou

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"lyricsync-go/logcolors"
	"lyricsync-go/services/lyric"
	"lyricsync-go/services/providers"
	"lyricsync-go/services/providers/transport"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultSongSearchURL      = "http://msearchcdn.kugou.com/api/v3/search/song"
	DefaultLyricsSearchURL    = "https://krcs.kugou.com/search"
	DefaultLyricsDownloadURL  = "https://krcs.kugou.com/download"
	defaultSongSearchPageSize = 10
)

// Endpoints holds the three Kugou URLs; empty fields use the defaults
type Endpoints struct {
	SongSearch     string
	LyricsSearch   string
	LyricsDownload string
}

func (e Endpoints) withDefaults() Endpoints {
	if e.SongSearch == "" {
		e.SongSearch = DefaultSongSearchURL
	}
	if e.LyricsSearch == "" {
		e.LyricsSearch = DefaultLyricsSearchURL
	}
	if e.LyricsDownload == "" {
		e.LyricsDownload = DefaultLyricsDownloadURL
	}
	return e
}

// Client implements providers.OfficialSource against Kugou.
// Song identifiers are file hashes.
type Client struct {
	http      *transport.Client
	endpoints Endpoints
}

// NewClient creates a Kugou client
func NewClient(http *transport.Client, endpoints Endpoints) *Client {
	return &Client{http: http, endpoints: endpoints.withDefaults()}
}

// SearchSongs searches the song catalogue; each song's hash is its ID
func (c *Client) SearchSongs(ctx context.Context, query string) ([]providers.SongCandidate, error) {
	params := url.Values{}
	params.Set("keyword", query)
	params.Set("pagesize", strconv.Itoa(defaultSongSearchPageSize))
	params.Set("page", "1")
	params.Set("plat", "0")
	params.Set("version", "9108")

	log.Debugf("%s %s Searching: %s", logcolors.LogSearch, logcolors.Provider(providers.SourceKugou), query)

	body, err := c.http.Get(ctx, c.endpoints.SongSearch, params, nil)
	if err != nil {
		return nil, err
	}

	var searchResp SongSearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if searchResp.Status != 1 {
		return nil, providers.NewProviderError(providers.SourceKugou,
			fmt.Sprintf("song search status %d, errcode %d", searchResp.Status, searchResp.ErrCode), nil)
	}

	songs := make([]providers.SongCandidate, 0, len(searchResp.Data.Info))
	for _, s := range searchResp.Data.Info {
		if s.Hash == "" {
			continue
		}
		songs = append(songs, providers.SongCandidate{ID: s.Hash, Title: s.SongName, Artist: s.SingerName})
	}
	return songs, nil
}

// FetchLyrics lists the lyric versions of the song hash, downloads the best
// one and trims credit lines from it.
func (c *Client) FetchLyrics(ctx context.Context, songID string) (lyric.Payload, error) {
	candidates, err := c.SearchLyrics(ctx, songID)
	if err != nil {
		return lyric.Payload{}, err
	}

	best := SelectBestCandidate(candidates)
	if best == nil {
		return lyric.Payload{}, nil
	}

	content, err := c.DownloadLyrics(ctx, best.ID, best.AccessKey)
	if err != nil {
		return lyric.Payload{}, err
	}

	content = NormalizeLyrics(content)
	log.Debugf("%s %s Downloaded lyrics %s (%d bytes, type: %d)",
		logcolors.LogLyrics, logcolors.Provider(providers.SourceKugou), best.ID, len(content), best.KRCType)

	if lrcTimeRegex.MatchString(content) {
		return lyric.Payload{SyncedLyrics: content}, nil
	}
	return lyric.Payload{PlainLyrics: content}, nil
}

// SearchLyrics lists the lyric versions available for a song hash
func (c *Client) SearchLyrics(ctx context.Context, hash string) ([]LyricsCandidate, error) {
	params := url.Values{}
	params.Set("ver", "1")
	params.Set("man", "yes")
	params.Set("client", "mobi")
	params.Set("hash", hash)

	body, err := c.http.Get(ctx, c.endpoints.LyricsSearch, params, nil)
	if err != nil {
		return nil, err
	}

	var searchResp LyricsSearchResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if searchResp.Status != 200 {
		return nil, providers.NewProviderError(providers.SourceKugou,
			fmt.Sprintf("lyrics search: %s (code: %d)", searchResp.ErrMsg, searchResp.ErrCode), nil)
	}
	return searchResp.Candidates, nil
}

// DownloadLyrics downloads and decodes one lyric version
func (c *Client) DownloadLyrics(ctx context.Context, id, accessKey string) (string, error) {
	params := url.Values{}
	params.Set("ver", "1")
	params.Set("client", "pc")
	params.Set("id", id)
	params.Set("accesskey", accessKey)
	params.Set("fmt", "lrc")

	body, err := c.http.Get(ctx, c.endpoints.LyricsDownload, params, nil)
	if err != nil {
		return "", err
	}

	var downloadResp DownloadResponse
	if err := json.Unmarshal(body, &downloadResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if downloadResp.Status != 200 {
		return "", providers.NewProviderError(providers.SourceKugou,
			fmt.Sprintf("download: %s (code: %d)", downloadResp.Info, downloadResp.ErrorCode), nil)
	}
	if downloadResp.Content == "" {
		return "", nil
	}

	content, err := DecodeBase64Content(downloadResp.Content)
	if err != nil {
		return "", fmt.Errorf("failed to decode lyrics content: %w", err)
	}
	return content, nil
}

// SelectBestCandidate picks the lyric version with the highest adjusted
// score: the API score plus 20 for synced versions and 5 for official ones.
// Earlier candidates win ties.
func SelectBestCandidate(candidates []LyricsCandidate) *LyricsCandidate {
	var best *LyricsCandidate
	bestScore := -1

	for i := range candidates {
		c := &candidates[i]
		if c.ID == "" {
			continue
		}

		score := c.Score
		if c.KRCType == 1 {
			score += 20
		}
		if strings.Contains(c.ProductFrom, "官方") {
			score += 5
		}

		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best
}
