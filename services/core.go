// Package services wires the lyric providers, the sync service and the
// timeline strategies into one Core built from configuration.
package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"lyricsync-go/cache"
	"lyricsync-go/circuitbreaker"
	"lyricsync-go/config"
	"lyricsync-go/logcolors"
	"lyricsync-go/services/lyric"
	"lyricsync-go/services/lyricsync"
	"lyricsync-go/services/providers"
	"lyricsync-go/services/providers/kugou"
	"lyricsync-go/services/providers/lrc"
	"lyricsync-go/services/providers/lrclib"
	"lyricsync-go/services/providers/netease"
	"lyricsync-go/services/providers/qqmusic"
	"lyricsync-go/services/providers/transport"
	"lyricsync-go/services/timeline"
	"lyricsync-go/stats"

	"github.com/adrg/xdg"
	log "github.com/sirupsen/logrus"
)

// Core is the composition root. Everything it holds is safe for concurrent use.
type Core struct {
	cache    *cache.Manager
	http     *transport.Client
	registry *providers.Registry
	sync     *lyricsync.Service
	timeline *timeline.Registry
}

// DefaultCacheDir is used when CACHE_DIR is empty
func DefaultCacheDir() string {
	return filepath.Join(xdg.CacheHome, "lyricsync")
}

// New builds a Core from cfg. st, if non-nil, receives stage outcomes,
// upstream failures and breaker trips.
func New(cfg config.Config, st *stats.Stats) (*Core, error) {
	c := cfg.Configuration

	dir := c.CacheDir
	if dir == "" {
		dir = DefaultCacheDir()
	}
	manager, err := cache.NewManager(dir, cfg.FeatureFlags.CacheCompression)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	breakerCfg := circuitbreaker.Config{
		Threshold: c.CircuitBreakerThreshold,
		Cooldown:  cfg.CircuitBreakerCooldown(),
	}
	opts := transport.Options{
		Timeout:   cfg.RequestTimeout(),
		UserAgent: c.UserAgent,
	}
	settings := providers.Settings{
		Cache:                  manager,
		Parser:                 lrc.NewParser(lrc.ConverterFor(c.TraditionalToSimplified)),
		Parallelism:            c.SearchParallelism,
		OfficialQueryLimit:     c.OfficialQueryLimit,
		OfficialCandidateLimit: c.OfficialCandidateLimit,
	}
	if st != nil {
		breakerCfg.OnTrip = st.RecordBreakerTrip
		opts.OnFailure = st.RecordUpstreamFailure
		settings.Recorder = st
	}
	opts.Breakers = circuitbreaker.NewGroup(breakerCfg)
	httpClient := transport.New(opts)

	lrclibClient := lrclib.NewClient(httpClient, c.LrcLibBaseURL)
	registry := providers.NewRegistry(
		lrclib.NewProvider(settings, lrclibClient),
		lrclib.NewGenericProvider(settings, lrclibClient),
	)
	if c.EnableQQMusic {
		client := qqmusic.NewClient(httpClient, c.QQMusicSearchURL, c.QQMusicLyricURL)
		registry.Register(qqmusic.NewProvider(settings, client, lrclibClient))
	}
	if c.EnableNetease {
		client := netease.NewClient(httpClient, c.NeteaseSearchURL, c.NeteaseLyricURL)
		registry.Register(netease.NewProvider(settings, client, lrclibClient))
	}
	if c.EnableKugou {
		client := kugou.NewClient(httpClient, kugou.Endpoints{
			SongSearch:     c.KugouSongSearchURL,
			LyricsSearch:   c.KugouLyricsSearchURL,
			LyricsDownload: c.KugouLyricsDownloadURL,
		})
		registry.Register(kugou.NewProvider(settings, client, lrclibClient))
	}

	leads := lyricsync.Leads{
		QQMusic: time.Duration(c.LeadQQMusicMs) * time.Millisecond,
		Netease: time.Duration(c.LeadNeteaseMs) * time.Millisecond,
		Spotify: time.Duration(c.LeadSpotifyMs) * time.Millisecond,
		Default: time.Duration(c.LeadDefaultMs) * time.Millisecond,
	}

	log.Infof("%s Core ready: providers %v, cache at %s", logcolors.LogServer, registry.List(), dir)
	return &Core{
		cache:    manager,
		http:     httpClient,
		registry: registry,
		sync:     lyricsync.NewService(registry, leads),
		timeline: timeline.DefaultRegistry(cfg.MaxExtrapolation()),
	}, nil
}

// GetDisplayFrame selects the timeline position for snapshot and renders
// the frame of the active track. Without extrapolation data the raw position
// is used when present. It never waits on the network.
func (c *Core) GetDisplayFrame(snapshot lyric.PlaybackSnapshot) lyric.DisplayFrame {
	if sel, ok := c.SelectPosition(snapshot); ok {
		snapshot.Position = sel.Position
	} else if snapshot.RawPosition != nil {
		snapshot.Position = *snapshot.RawPosition
	}
	return c.sync.GetDisplayFrame(snapshot)
}

// SelectPosition runs timeline selection when snapshot carries both raw and
// extrapolated positions; ok is false otherwise.
func (c *Core) SelectPosition(snapshot lyric.PlaybackSnapshot) (timeline.Selection, bool) {
	if snapshot.RawPosition == nil || snapshot.ExtrapolatedPosition == nil {
		return timeline.Selection{}, false
	}
	return c.timeline.Select(Diagnostics(snapshot)), true
}

// Diagnostics derives timeline diagnostics from snapshot. The update age is
// the gap between the extrapolated and raw positions.
func Diagnostics(snapshot lyric.PlaybackSnapshot) timeline.Diagnostics {
	d := timeline.Diagnostics{IsPlaying: snapshot.IsPlaying}
	if snapshot.Track != nil {
		source := snapshot.Track.SourceApp
		d.Source = timeline.Identity{
			Raw:        source,
			Normalized: strings.ToLower(strings.TrimSpace(source)),
			Resolved:   source,
		}
	}
	if snapshot.RawPosition != nil {
		d.RawPosition = *snapshot.RawPosition
	} else {
		d.RawPosition = snapshot.Position
	}
	d.ExtrapolatedPosition = d.RawPosition
	if snapshot.ExtrapolatedPosition != nil {
		d.ExtrapolatedPosition = *snapshot.ExtrapolatedPosition
	}
	d.LastUpdateAge = d.ExtrapolatedPosition - d.RawPosition
	return d
}

// SelectTimeline runs strategy selection on explicit diagnostics
func (c *Core) SelectTimeline(d timeline.Diagnostics) timeline.Selection {
	return c.timeline.Select(d)
}

// TimelineStrategies lists strategy names in evaluation order
func (c *Core) TimelineStrategies() []string {
	return c.timeline.Names()
}

// ResolveLyrics walks the track's route synchronously
func (c *Core) ResolveLyrics(ctx context.Context, track lyric.TrackInfo) lyric.ResolveResult {
	return c.registry.Resolve(ctx, track)
}

// Route returns the provider keys tried for source, in order, marking which
// are registered.
func (c *Core) Route(source string) []RouteStep {
	keys := providers.BuildRoute(source)
	steps := make([]RouteStep, len(keys))
	for i, key := range keys {
		steps[i] = RouteStep{Provider: key, Registered: c.registry.Has(key)}
	}
	return steps
}

// RouteStep is one entry of a route
type RouteStep struct {
	Provider   string `json:"provider"`
	Registered bool   `json:"registered"`
}

// Providers lists registered provider keys
func (c *Core) Providers() []string {
	return c.registry.List()
}

// ClearCache drops every entry of namespace. Clearing an unused namespace
// succeeds.
func (c *Core) ClearCache(namespace string) error {
	if err := c.cache.Clear(namespace); err != nil {
		if errors.Is(err, cache.ErrInvalidNamespace) {
			return err
		}
		return fmt.Errorf("clear %s: %w", namespace, err)
	}
	return nil
}

// Namespaces lists cache namespaces with their entry counts
func (c *Core) Namespaces() []cache.NamespaceInfo {
	return c.cache.Namespaces()
}

// CacheDir returns the cache directory
func (c *Core) CacheDir() string {
	return c.cache.Dir()
}

// Breakers returns the state of every upstream circuit breaker
func (c *Core) Breakers() []circuitbreaker.Status {
	return c.http.Breakers().Statuses()
}

// SyncState returns the sync service state and the provider of the held document
func (c *Core) SyncState() (lyricsync.State, string) {
	return c.sync.State(), c.sync.CurrentSourceApp()
}

// Close cancels in-flight resolutions and closes the cache files
func (c *Core) Close() error {
	c.sync.Close()
	return c.cache.Close()
}
