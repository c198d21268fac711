package providers

import (
	"context"
	"sync"
	"testing"
	"time"

	"lyricsync-go/services/lyric"
)

// mockProvider returns a fixed document and records calls
type mockProvider struct {
	source string
	doc    *lyric.Document
	panics bool

	mu    sync.Mutex
	calls int
}

func (m *mockProvider) SourceApp() string {
	return m.source
}

func (m *mockProvider) GetLyrics(ctx context.Context, track lyric.TrackInfo) *lyric.Document {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.panics {
		panic("boom")
	}
	return m.doc
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func newMockProvider(source string, text string) *mockProvider {
	var doc *lyric.Document
	if text != "" {
		doc = lyric.NewDocument([]lyric.Line{{Timestamp: time.Second, Text: text}})
	}
	return &mockProvider{source: source, doc: doc}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry(newMockProvider("QQMusic", "a"), newMockProvider("LrcLib", "b"))

	t.Run("Lookup is case-insensitive", func(t *testing.T) {
		p, err := r.Get("qqmusic")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if p.SourceApp() != "QQMusic" {
			t.Errorf("Expected QQMusic, got %s", p.SourceApp())
		}
	})

	t.Run("Missing provider returns error", func(t *testing.T) {
		_, err := r.Get("Kuwo")
		if err == nil || err.Error() != "provider not found: Kuwo" {
			t.Errorf("Unexpected error %v", err)
		}
	})

	t.Run("Register replaces same key", func(t *testing.T) {
		r.Register(newMockProvider("LRCLIB", "replacement"))
		names := r.List()
		if len(names) != 2 {
			t.Fatalf("Expected 2 providers, got %v", names)
		}
		if !r.Has("lrclib") || r.Has("Netease") {
			t.Errorf("Unexpected Has results for %v", names)
		}
	})
}

func TestRegistry_ResolveWalksRoute(t *testing.T) {
	qq := newMockProvider("QQMusic", "")
	kugou := newMockProvider("Kugou", "")
	netease := newMockProvider("Netease", "from netease")
	lrclib := newMockProvider("LrcLib", "from lrclib")
	r := NewRegistry(qq, kugou, netease, lrclib)

	result := r.Resolve(context.Background(), lyric.NewTrackInfo("Spotify.exe", "Song", "Artist"))

	if !result.Found() {
		t.Fatal("Expected a document")
	}
	if result.SourceApp != "Netease" {
		t.Errorf("Expected Netease to satisfy the request, got %q", result.SourceApp)
	}
	if qq.callCount() != 1 || kugou.callCount() != 1 {
		t.Errorf("Expected QQMusic and Kugou to be tried first, got %d/%d calls", qq.callCount(), kugou.callCount())
	}
	if lrclib.callCount() != 0 {
		t.Error("Expected later providers to be skipped after a success")
	}
}

func TestRegistry_ResolveUnidentifiedTrack(t *testing.T) {
	p := newMockProvider("*", "anything")
	r := NewRegistry(p)

	result := r.Resolve(context.Background(), lyric.NewTrackInfo("Spotify", "unknown title", "x"))
	if result.Found() || p.callCount() != 0 {
		t.Errorf("Expected no resolution for the unidentified sentinel, got %+v (%d calls)", result, p.callCount())
	}
}

func TestRegistry_ResolveRecoversFromPanics(t *testing.T) {
	bad := &mockProvider{source: "LrcLib", panics: true}
	wildcard := newMockProvider("*", "fallback")
	r := NewRegistry(bad, wildcard)

	result := r.Resolve(context.Background(), lyric.NewTrackInfo("", "Song", "Artist"))
	if result.SourceApp != "*" {
		t.Errorf("Expected wildcard provider after a panic, got %+v", result)
	}
}

func TestRegistry_ResolveNothingFound(t *testing.T) {
	r := NewRegistry(newMockProvider("LrcLib", ""), newMockProvider("*", ""))

	result := r.Resolve(context.Background(), lyric.NewTrackInfo("foobar", "Song", "Artist"))
	if result.Found() || result.SourceApp != "" || result.Document != nil {
		t.Errorf("Expected an empty result, got %+v", result)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.Register(newMockProvider("provider"+string(rune('a'+i)), "x"))
		}(i)
		go func() {
			defer wg.Done()
			r.List()
			r.Has("providera")
		}()
	}
	wg.Wait()

	if got := len(r.List()); got != 20 {
		t.Errorf("Expected 20 providers, got %d", got)
	}
}
