package lrclib

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"lyricsync-go/cache"
	"lyricsync-go/services/lyric"
	"lyricsync-go/services/providers"
	"lyricsync-go/services/providers/transport"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(transport.New(transport.Options{Timeout: 2 * time.Second}), server.URL+"/"), server
}

func TestClient_Get(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/get" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("track_name") != "Song" || r.URL.Query().Get("artist_name") != "Artist" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"id":1,"trackName":"Song","syncedLyrics":"[00:01.00]hi","plainLyrics":"hi"}`))
	})

	payload, err := client.Get(context.Background(), "Song", "Artist")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if payload.SyncedLyrics != "[00:01.00]hi" || payload.PlainLyrics != "hi" {
		t.Errorf("Unexpected payload %+v", payload)
	}
}

func TestClient_GetNotFound(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.Get(context.Background(), "Song", "Artist")
	if !errors.Is(err, transport.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestClient_SearchFieldVariants(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search" || r.URL.Query().Get("q") != "song artist" {
			t.Errorf("Unexpected request %s", r.URL.String())
		}
		w.Write([]byte(`[
			{"trackName":"A","artistName":"X","plainLyrics":"a"},
			{"track_name":"B","artist_name":"Y","syncedLyrics":"[00:01]b"},
			{"name":"C","artist":"Z"},
			{"title":"D","artist":"W","syncedLyrics":null},
			42
		]`))
	})

	items, err := client.Search(context.Background(), "song artist")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []providers.SearchItem{
		{Title: "A", Artist: "X", Payload: lyric.Payload{PlainLyrics: "a"}},
		{Title: "B", Artist: "Y", Payload: lyric.Payload{SyncedLyrics: "[00:01]b"}},
		{Title: "C", Artist: "Z"},
		{Title: "D", Artist: "W"},
	}
	if len(items) != len(want) {
		t.Fatalf("Expected %d items, got %d", len(want), len(items))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("Item %d: expected %+v, got %+v", i, want[i], items[i])
		}
	}
}

func TestClient_SearchRejectsObject(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"bad"}`))
	})

	if _, err := client.Search(context.Background(), "q"); err == nil {
		t.Error("Expected an error for a non-array response")
	}
}

func TestProvider_EndToEnd(t *testing.T) {
	var getCalls, searchCalls int32
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/get":
			atomic.AddInt32(&getCalls, 1)
			http.NotFound(w, r)
		case "/api/search":
			atomic.AddInt32(&searchCalls, 1)
			w.Write([]byte(`[{"trackName":"Song","artistName":"Artist","syncedLyrics":"[00:01.00]one\n[00:02.50]two"}]`))
		}
	})

	manager, err := cache.NewManager(t.TempDir(), false)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer manager.Close()

	provider := NewProvider(providers.Settings{Cache: manager}, client)
	if provider.SourceApp() != "LrcLib" {
		t.Errorf("Unexpected source %q", provider.SourceApp())
	}

	track := lyric.NewTrackInfo("", "Song", "Artist")
	doc := provider.GetLyrics(context.Background(), track)
	if doc.Len() != 2 || doc.Line(1).Timestamp != 2500*time.Millisecond {
		t.Fatalf("Unexpected document %v", doc.Lines())
	}

	firstGets, firstSearches := atomic.LoadInt32(&getCalls), atomic.LoadInt32(&searchCalls)
	if firstGets == 0 || firstSearches == 0 {
		t.Errorf("Expected both stages to run, got %d gets and %d searches", firstGets, firstSearches)
	}

	// Second resolution is served from the lrclib-lyrics namespace
	if doc := provider.GetLyrics(context.Background(), track); doc.Len() != 2 {
		t.Fatalf("Unexpected cached document %v", doc.Lines())
	}
	if atomic.LoadInt32(&getCalls) != firstGets || atomic.LoadInt32(&searchCalls) != firstSearches {
		t.Error("Expected no upstream calls on the second resolution")
	}

	store, _ := manager.Namespace(cache.NamespaceLrcLib)
	if entries, _ := store.Stats(); entries != 1 {
		t.Errorf("Expected 1 cached entry, got %d", entries)
	}
}

func TestGenericProvider(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"plainLyrics":"line one\nline two"}`))
	})

	provider := NewGenericProvider(providers.Settings{}, client)
	if provider.SourceApp() != "*" {
		t.Errorf("Unexpected source %q", provider.SourceApp())
	}

	doc := provider.GetLyrics(context.Background(), lyric.NewTrackInfo("AnyPlayer", "Song", "Artist"))
	if doc.Len() != 2 || doc.Line(1).Timestamp != 3*time.Second {
		t.Errorf("Expected plain document, got %v", doc.Lines())
	}
}

func TestProvider_UpstreamDown(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	provider := NewProvider(providers.Settings{}, client)
	if doc := provider.GetLyrics(context.Background(), lyric.NewTrackInfo("", "Song", "Artist")); doc != nil {
		t.Errorf("Expected nil document, got %v", doc.Lines())
	}
}
