// Package qqmusic is the QQ Music official source and its provider
package qqmusic

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"lyricsync-go/logcolors"
	"lyricsync-go/services/lyric"
	"lyricsync-go/services/providers"
	"lyricsync-go/services/providers/transport"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultSearchURL = "https://c.y.qq.com/soso/fcgi-bin/client_search_cp"
	DefaultLyricURL  = "https://c.y.qq.com/lyric/fcgi-bin/fcg_query_lyric_new.fcg"

	searchPageSize = 20
)

// QQ's endpoints reject requests without a y.qq.com referer
var requestHeaders = map[string]string{
	"Referer": "https://y.qq.com/",
	"Origin":  "https://y.qq.com",
}

// Client implements providers.OfficialSource against QQ Music.
// Song identifiers are songmids.
type Client struct {
	http      *transport.Client
	searchURL string
	lyricURL  string
}

// NewClient creates a client; empty URLs fall back to the public endpoints
func NewClient(http *transport.Client, searchURL, lyricURL string) *Client {
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}
	if lyricURL == "" {
		lyricURL = DefaultLyricURL
	}
	return &Client{http: http, searchURL: searchURL, lyricURL: lyricURL}
}

// SearchSongs returns the first page of songs matching query
func (c *Client) SearchSongs(ctx context.Context, query string) ([]providers.SongCandidate, error) {
	params := url.Values{}
	params.Set("w", query)
	params.Set("n", strconv.Itoa(searchPageSize))
	params.Set("p", "1")
	params.Set("format", "json")

	log.Debugf("%s %s Searching: %s", logcolors.LogSearch, logcolors.Provider(providers.SourceQQMusic), query)

	body, err := c.http.Get(ctx, c.searchURL, params, requestHeaders)
	if err != nil {
		return nil, err
	}

	root, err := decodeResponse(body)
	if err != nil {
		return nil, providers.NewProviderError(providers.SourceQQMusic, "song search", err)
	}

	list := root.Path("data", "song").Array("list")
	if len(list) == 0 {
		list = root.Path("song").Array("list")
	}

	songs := make([]providers.SongCandidate, 0, len(list))
	for _, item := range list {
		mid := item.ID("songmid", "songMid", "mid")
		if mid == "" {
			continue
		}
		songs = append(songs, providers.SongCandidate{
			ID:     mid,
			Title:  item.String("songname", "songName", "title", "name"),
			Artist: providers.JoinNames(item.Array("singer"), " / ", "name", "singerName"),
		})
	}
	return songs, nil
}

// FetchLyrics returns the lyric of songmid. Timed text becomes the synced
// payload with the translation as plain; untimed text becomes plain.
func (c *Client) FetchLyrics(ctx context.Context, songID string) (lyric.Payload, error) {
	params := url.Values{}
	params.Set("songmid", songID)
	params.Set("format", "json")
	params.Set("nobase64", "1")

	body, err := c.http.Get(ctx, c.lyricURL, params, requestHeaders)
	if err != nil {
		return lyric.Payload{}, err
	}

	root, err := decodeResponse(body)
	if err != nil {
		return lyric.Payload{}, providers.NewProviderError(providers.SourceQQMusic, "lyric", err)
	}

	text := DecodeIfBase64(root.String("lyric", "lrc", "lyricContent"))
	trans := DecodeIfBase64(root.String("trans", "transLyric", "trans_lyric"))

	if LooksLikeTimedLyric(text) {
		return lyric.Payload{SyncedLyrics: text, PlainLyrics: trans}, nil
	}
	return lyric.Payload{PlainLyrics: text}, nil
}

func decodeResponse(body []byte) (providers.Object, error) {
	jsonText := StripJSONP(string(body))
	if jsonText == "" {
		return nil, fmt.Errorf("empty or non-JSON response")
	}
	return providers.DecodeObject([]byte(jsonText))
}
