package qqmusic

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"lyricsync-go/services/lyric"
	"lyricsync-go/services/providers"
	"lyricsync-go/services/providers/transport"
)

func TestStripJSONP(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain object", ` {"a":1} `, `{"a":1}`},
		{"plain array", `[1]`, `[1]`},
		{"callback", `MusicJsonCallback({"a":1})`, `{"a":1}`},
		{"callback with semicolon", "cb( {\"a\":1} );\n", `{"a":1}`},
		{"garbage", `<html>`, ``},
		{"empty", `  `, ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripJSONP(tt.input); got != tt.expected {
				t.Errorf("StripJSONP(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDecodeIfBase64(t *testing.T) {
	timed := "[00:01.00]hello"
	encoded := base64.StdEncoding.EncodeToString([]byte(timed))

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"encoded timed lyric", encoded, timed},
		{"already timed", timed, timed},
		{"not base64", "hello world!", "hello world!"},
		{"binary decoding kept raw", base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0xfd}), base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, 0xfd})},
		{"blank", " ", " "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeIfBase64(tt.input); got != tt.expected {
				t.Errorf("DecodeIfBase64(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLooksLikeTimedLyric(t *testing.T) {
	if !LooksLikeTimedLyric("[00:01]x") {
		t.Error("Expected timed lyric")
	}
	if LooksLikeTimedLyric("plain text") || LooksLikeTimedLyric("[no colon]") || LooksLikeTimedLyric("") {
		t.Error("Expected untimed values to be rejected")
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	hc := transport.New(transport.Options{Timeout: 2 * time.Second})
	return NewClient(hc, server.URL+"/search", server.URL+"/lyric")
}

func TestClient_SearchSongs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Referer") != "https://y.qq.com/" || r.Header.Get("Origin") != "https://y.qq.com" {
			t.Errorf("Missing QQ headers: %v", r.Header)
		}
		q := r.URL.Query()
		if q.Get("w") != "Song Artist" || q.Get("n") != "20" || q.Get("p") != "1" || q.Get("format") != "json" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`callback({"data":{"song":{"list":[
			{"songmid":"001","songname":"Song","singer":[{"name":"A"},{"name":"B"}]},
			{"songMid":"002","title":"Other","singer":[{"singerName":"C"}]},
			{"songname":"No mid"}
		]}}})`))
	})

	songs, err := client.SearchSongs(context.Background(), "Song Artist")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []providers.SongCandidate{
		{ID: "001", Title: "Song", Artist: "A / B"},
		{ID: "002", Title: "Other", Artist: "C"},
	}
	if !reflect.DeepEqual(songs, want) {
		t.Errorf("Expected %+v, got %+v", want, songs)
	}
}

func TestClient_SearchSongsLegacyShape(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"song":{"list":[{"mid":"xyz","name":"Song"}]}}`))
	})

	songs, err := client.SearchSongs(context.Background(), "Song")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(songs) != 1 || songs[0].ID != "xyz" || songs[0].Title != "Song" {
		t.Errorf("Unexpected songs %+v", songs)
	}
}

func TestClient_FetchLyrics(t *testing.T) {
	synced := "[00:01.00]first\n[00:02.00]second"
	trans := "[00:01.00]eins"

	tests := []struct {
		name     string
		body     string
		expected lyric.Payload
	}{
		{
			name:     "base64 lyric with translation",
			body:     `MusicJsonCallback({"retcode":0,"lyric":"` + base64.StdEncoding.EncodeToString([]byte(synced)) + `","trans":"` + base64.StdEncoding.EncodeToString([]byte(trans)) + `"})`,
			expected: lyric.Payload{SyncedLyrics: synced, PlainLyrics: trans},
		},
		{
			name:     "raw lrc field",
			body:     `{"lrc":"[00:01.00]first"}`,
			expected: lyric.Payload{SyncedLyrics: "[00:01.00]first"},
		},
		{
			name:     "untimed text becomes plain",
			body:     `{"lyricContent":"just words"}`,
			expected: lyric.Payload{PlainLyrics: "just words"},
		},
		{
			name:     "no lyric",
			body:     `{"retcode":-1901}`,
			expected: lyric.Payload{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("songmid") != "001" || q.Get("nobase64") != "1" {
					t.Errorf("Unexpected query %s", r.URL.RawQuery)
				}
				w.Write([]byte(tt.body))
			})

			payload, err := client.FetchLyrics(context.Background(), "001")
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if payload != tt.expected {
				t.Errorf("Expected %+v, got %+v", tt.expected, payload)
			}
		})
	}
}

func TestClient_FetchLyricsBadResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>blocked</html>`))
	})

	if _, err := client.FetchLyrics(context.Background(), "001"); err == nil {
		t.Error("Expected an error for a non-JSON response")
	}
}

type emptyDatabase struct{ gets int }

func (d *emptyDatabase) Get(ctx context.Context, title, artist string) (lyric.Payload, error) {
	d.gets++
	return lyric.Payload{}, nil
}

func (d *emptyDatabase) Search(ctx context.Context, query string) ([]providers.SearchItem, error) {
	return nil, nil
}

func TestProvider_OfficialFirst(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			w.Write([]byte(`{"data":{"song":{"list":[{"songmid":"001","songname":"Song","singer":[{"name":"Artist"}]}]}}}`))
		case "/lyric":
			w.Write([]byte(`{"lyric":"[00:01.00]first\n[00:03.00]second"}`))
		}
	})
	db := &emptyDatabase{}

	provider := NewProvider(providers.Settings{}, client, db)
	if provider.SourceApp() != "QQMusic" {
		t.Errorf("Unexpected source %q", provider.SourceApp())
	}

	doc := provider.GetLyrics(context.Background(), lyric.NewTrackInfo("QQMusic", "Song", "Artist"))
	if doc.Len() != 2 || doc.Line(0).Text != "first" {
		t.Fatalf("Unexpected document %v", doc.Lines())
	}
	if db.gets != 0 {
		t.Errorf("Expected database to be skipped, got %d lookups", db.gets)
	}
}
