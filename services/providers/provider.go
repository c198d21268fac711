package providers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"lyricsync-go/logcolors"
	"lyricsync-go/services/lyric"

	log "github.com/sirupsen/logrus"
)

// Provider resolves lyrics for one source key
type Provider interface {
	// SourceApp returns the route key this provider answers to (e.g. "QQMusic", "LrcLib", "*")
	SourceApp() string

	// GetLyrics returns the lyric document for track, or nil when nothing was found.
	// It never returns an error; cancellation of ctx is also reported as nil.
	GetLyrics(ctx context.Context, track lyric.TrackInfo) *lyric.Document
}

// PipelineProvider is a Provider backed by a resolution Pipeline
type PipelineProvider struct {
	source   string
	pipeline *Pipeline
}

// NewPipelineProvider wraps pipeline as the provider for source
func NewPipelineProvider(source string, pipeline *Pipeline) *PipelineProvider {
	if pipeline.Name == "" {
		pipeline.Name = source
	}
	return &PipelineProvider{source: source, pipeline: pipeline}
}

// SourceApp returns the provider's route key
func (p *PipelineProvider) SourceApp() string {
	return p.source
}

// GetLyrics runs the pipeline for track
func (p *PipelineProvider) GetLyrics(ctx context.Context, track lyric.TrackInfo) *lyric.Document {
	return p.pipeline.Resolve(ctx, track)
}

// Registry maps source keys (case-insensitive) to providers and resolves
// tracks by walking their route.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates a registry holding providers
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds a provider, replacing any provider with the same key
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[strings.ToLower(p.SourceApp())] = p
}

// Get retrieves a provider by source key
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("provider not found: %s", name)
	}
	return p, nil
}

// List returns all registered source keys, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.SourceApp())
	}
	sort.Strings(names)
	return names
}

// Has checks if a provider is registered for name
func (r *Registry) Has(name string) bool {
	_, err := r.Get(name)
	return err == nil
}

// Resolve tries each provider on the track's route in order and returns the
// first non-empty document together with the key of the provider that produced it.
func (r *Registry) Resolve(ctx context.Context, track lyric.TrackInfo) lyric.ResolveResult {
	if track.IsUnidentified() {
		return lyric.ResolveResult{}
	}

	for _, key := range BuildRoute(track.SourceApp) {
		if ctx.Err() != nil {
			break
		}
		p, err := r.Get(key)
		if err != nil {
			continue
		}

		if doc := getLyricsSafely(ctx, p, track); !doc.IsEmpty() {
			return lyric.ResolveResult{Document: doc, SourceApp: p.SourceApp()}
		}
	}

	log.Debugf("%s No provider produced lyrics for %s - %s (source: %q)",
		logcolors.LogRoute, track.Title, track.Artist, track.SourceApp)
	return lyric.ResolveResult{}
}

func getLyricsSafely(ctx context.Context, p Provider, track lyric.TrackInfo) (doc *lyric.Document) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Errorf("%s %s Provider panicked: %v", logcolors.LogWarning, logcolors.Provider(p.SourceApp()), rec)
			doc = nil
		}
	}()
	return p.GetLyrics(ctx, track)
}
