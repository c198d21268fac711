// Package lrclib talks to the LRCLIB lyric database and provides the
// "LrcLib" and generic "*" providers on top of it.
package lrclib

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"lyricsync-go/logcolors"
	"lyricsync-go/services/lyric"
	"lyricsync-go/services/providers"
	"lyricsync-go/services/providers/transport"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultBaseURL is the public LRCLIB instance
	DefaultBaseURL = "https://lrclib.net"

	getPath    = "/api/get"
	searchPath = "/api/search"
)

// Client is an LRCLIB API client. It implements providers.LyricsDatabase.
type Client struct {
	http    *transport.Client
	baseURL string
}

// NewClient creates a client for the LRCLIB instance at baseURL
// (DefaultBaseURL when empty).
func NewClient(http *transport.Client, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: http, baseURL: strings.TrimRight(baseURL, "/")}
}

// Get looks up one record by exact title and artist
func (c *Client) Get(ctx context.Context, title, artist string) (lyric.Payload, error) {
	params := url.Values{}
	params.Set("track_name", title)
	params.Set("artist_name", artist)

	body, err := c.http.Get(ctx, c.baseURL+getPath, params, nil)
	if err != nil {
		return lyric.Payload{}, err
	}

	obj, err := providers.DecodeObject(body)
	if err != nil {
		return lyric.Payload{}, fmt.Errorf("lrclib get: %w", err)
	}
	return extractPayload(obj), nil
}

// Search runs a free-text query and returns every record in the response
func (c *Client) Search(ctx context.Context, query string) ([]providers.SearchItem, error) {
	params := url.Values{}
	params.Set("q", query)

	log.Debugf("%s LrcLib query: %s", logcolors.LogSearch, query)

	body, err := c.http.Get(ctx, c.baseURL+searchPath, params, nil)
	if err != nil {
		return nil, err
	}

	records, err := providers.DecodeArray(body)
	if err != nil {
		return nil, fmt.Errorf("lrclib search: %w", err)
	}

	items := make([]providers.SearchItem, 0, len(records))
	for _, record := range records {
		items = append(items, providers.SearchItem{
			Title:   record.String("trackName", "track_name", "name", "title"),
			Artist:  record.String("artistName", "artist_name", "artist"),
			Payload: extractPayload(record),
		})
	}
	return items, nil
}

func extractPayload(obj providers.Object) lyric.Payload {
	return lyric.Payload{
		SyncedLyrics: obj.String("syncedLyrics"),
		PlainLyrics:  obj.String("plainLyrics"),
	}
}
