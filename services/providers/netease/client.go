// Package netease is the Netease Cloud Music official source and its provider
package netease

import (
	"context"
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
	DefaultSearchURL = "https://music.163.com/api/search/get"
	DefaultLyricURL  = "https://music.163.com/api/song/lyric"

	searchPageSize = 20

	// type=1 restricts search results to single songs
	searchTypeSong = "1"
)

var requestHeaders = map[string]string{
	"Referer": "https://music.163.com/",
	"Origin":  "https://music.163.com",
}

// Client implements providers.OfficialSource against Netease Cloud Music.
// Song identifiers are decimal song ids.
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

// SearchSongs returns the first page of songs matching query. Songs
// without a numeric id are dropped.
func (c *Client) SearchSongs(ctx context.Context, query string) ([]providers.SongCandidate, error) {
	params := url.Values{}
	params.Set("s", query)
	params.Set("type", searchTypeSong)
	params.Set("limit", strconv.Itoa(searchPageSize))
	params.Set("offset", "0")

	log.Debugf("%s %s Searching: %s", logcolors.LogSearch, logcolors.Provider(providers.SourceNetease), query)

	body, err := c.http.Get(ctx, c.searchURL, params, requestHeaders)
	if err != nil {
		return nil, err
	}

	root, err := providers.DecodeObject(body)
	if err != nil {
		return nil, providers.NewProviderError(providers.SourceNetease, "song search", err)
	}

	list := root.Path("result").Array("songs")
	songs := make([]providers.SongCandidate, 0, len(list))
	for _, item := range list {
		id, ok := item.Int64("id")
		if !ok {
			continue
		}
		songs = append(songs, providers.SongCandidate{
			ID:     strconv.FormatInt(id, 10),
			Title:  item.String("name", "songName"),
			Artist: providers.JoinNames(item.Array("artists"), " / ", "name"),
		})
	}
	return songs, nil
}

// FetchLyrics returns lrc.lyric as synced text and tlyric.lyric as plain,
// falling back to the synced text when no translation exists.
func (c *Client) FetchLyrics(ctx context.Context, songID string) (lyric.Payload, error) {
	params := url.Values{}
	params.Set("id", songID)
	params.Set("lv", "1")
	params.Set("kv", "1")
	params.Set("tv", "-1")

	body, err := c.http.Get(ctx, c.lyricURL, params, requestHeaders)
	if err != nil {
		return lyric.Payload{}, err
	}

	root, err := providers.DecodeObject(body)
	if err != nil {
		return lyric.Payload{}, providers.NewProviderError(providers.SourceNetease, "lyric", err)
	}

	synced := root.Path("lrc").String("lyric")
	plain := root.Path("tlyric").String("lyric")
	if strings.TrimSpace(plain) == "" {
		plain = synced
	}
	return lyric.Payload{SyncedLyrics: synced, PlainLyrics: plain}, nil
}
