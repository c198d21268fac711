package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"lyricsync-go/circuitbreaker"
)

func TestGet_SendsHeadersAndQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("Expected User-Agent test-agent, got %q", got)
		}
		if got := r.Header.Get("Referer"); got != "https://example.com/" {
			t.Errorf("Expected Referer header, got %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "周杰伦 晴天" {
			t.Errorf("Expected decoded query, got %q", got)
		}
		if got := r.URL.Query().Get("fixed"); got != "1" {
			t.Errorf("Expected endpoint query to be kept, got %q", got)
		}
		w.Write([]byte(`ok`))
	}))
	defer server.Close()

	c := New(Options{UserAgent: "test-agent"})
	body, err := c.Get(context.Background(), server.URL+"/search?fixed=1",
		url.Values{"q": {"周杰伦 晴天"}},
		map[string]string{"Referer": "https://example.com/"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("Expected body 'ok', got %q", body)
	}
}

func TestGet_NotFoundIsAMiss(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	breakers := circuitbreaker.NewGroup(circuitbreaker.Config{Threshold: 1, Cooldown: time.Minute})
	c := New(Options{Breakers: breakers})

	for i := 0; i < 3; i++ {
		if _, err := c.Get(context.Background(), server.URL, nil, nil); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	}

	u, _ := url.Parse(server.URL)
	if state := breakers.For(u.Host).State(); state != circuitbreaker.StateClosed {
		t.Errorf("Expected breaker to stay CLOSED on 404s, got %s", state)
	}
}

func TestGet_ServerErrorsTripBreaker(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	var failures atomic.Int32
	c := New(Options{
		Breakers:  circuitbreaker.NewGroup(circuitbreaker.Config{Threshold: 2, Cooldown: time.Minute}),
		OnFailure: func(string, error) { failures.Add(1) },
	})

	for i := 0; i < 2; i++ {
		_, err := c.Get(context.Background(), server.URL, nil, nil)
		var statusErr *StatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadGateway {
			t.Fatalf("Expected StatusError 502, got %v", err)
		}
	}

	_, err := c.Get(context.Background(), server.URL, nil, nil)
	if !errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		t.Errorf("Expected ErrCircuitOpen, got %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("Expected the open circuit to block the third request, got %d hits", hits.Load())
	}
	if failures.Load() != 2 {
		t.Errorf("Expected 2 failure callbacks, got %d", failures.Load())
	}
}

func TestGet_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := New(Options{Timeout: 50 * time.Millisecond})
	if _, err := c.Get(context.Background(), server.URL, nil, nil); err == nil {
		t.Error("Expected a timeout error")
	}
}

func TestGet_CancelledContextDoesNotCountAsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	}))
	defer server.Close()

	breakers := circuitbreaker.NewGroup(circuitbreaker.Config{Threshold: 1, Cooldown: time.Minute})
	c := New(Options{Breakers: breakers})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Get(ctx, server.URL, nil, nil); err == nil {
		t.Fatal("Expected an error for a cancelled context")
	}

	u, _ := url.Parse(server.URL)
	if failures := breakers.For(u.Host).Failures(); failures != 0 {
		t.Errorf("Expected no recorded failures, got %d", failures)
	}
}

func TestGet_InvalidEndpoint(t *testing.T) {
	c := New(Options{})
	if _, err := c.Get(context.Background(), "://bad", nil, nil); err == nil {
		t.Error("Expected an error for an invalid endpoint")
	}
}
