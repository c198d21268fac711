// Package lyricsync turns per-poll playback snapshots into display frames.
// Lyric resolution runs in the background; a poll never waits on the network.
package lyricsync

import (
	"context"
	"sync"

	"lyricsync-go/logcolors"
	"lyricsync-go/services/lyric"

	log "github.com/sirupsen/logrus"
)

// State of the sync service
type State int

const (
	// Idle: no track
	Idle State = iota
	// Loading: the track changed and its resolution has not been adopted yet
	Loading
	// Ready: a document, real or placeholder, is held
	Ready
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "idle"
	}
}

// Resolver resolves a track along its provider route
type Resolver interface {
	Resolve(ctx context.Context, track lyric.TrackInfo) lyric.ResolveResult
}

type resolution struct {
	trackID string
	result  lyric.ResolveResult
}

// Service holds the active track's document. It is safe for concurrent use,
// though a single poller is the expected caller.
type Service struct {
	resolver Resolver
	leads    Leads

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	state     State
	track     *lyric.TrackInfo
	doc       *lyric.Document
	sourceApp string
	pending   chan resolution
}

// NewService creates a service resolving through resolver
func NewService(resolver Resolver, leads Leads) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		resolver: resolver,
		leads:    leads,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// GetDisplayFrame advances the state machine with snapshot and renders the
// frame for its position. It returns immediately.
func (s *Service) GetDisplayFrame(snapshot lyric.PlaybackSnapshot) lyric.DisplayFrame {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot.Track == nil {
		if s.state != Idle {
			log.Debugf("%s No track, going idle", logcolors.LogSync)
		}
		s.reset()
		return lyric.EmptyFrame()
	}

	track := *snapshot.Track
	if s.track == nil || s.track.Key() != track.Key() {
		s.switchTrack(track)
	}
	s.adopt()

	if s.doc == nil {
		return lyric.EmptyFrame()
	}
	return ComputeFrame(s.doc, snapshot.Position, s.leads.For(track.SourceApp))
}

func (s *Service) reset() {
	s.state = Idle
	s.track = nil
	s.doc = nil
	s.sourceApp = ""
	s.pending = nil
}

func (s *Service) switchTrack(track lyric.TrackInfo) {
	s.reset()
	s.track = &track

	if track.IsUnidentified() {
		log.Debugf("%s Unidentified track from %q, not resolving", logcolors.LogSync, track.SourceApp)
		return
	}

	log.Infof("%s Track changed: %s - %s (source: %q)", logcolors.LogSync, track.Title, track.Artist, track.SourceApp)

	s.state = Loading
	pending := make(chan resolution, 1)
	s.pending = pending

	go func() {
		pending <- resolution{trackID: track.Key(), result: s.resolver.Resolve(s.ctx, track)}
	}()
}

// adopt takes a completed resolution if it still belongs to the tracked identity
func (s *Service) adopt() {
	if s.pending == nil {
		return
	}

	select {
	case r := <-s.pending:
		s.pending = nil
		if s.track == nil || r.trackID != s.track.Key() {
			return
		}

		if r.result.Found() {
			s.doc = r.result.Document
			s.sourceApp = r.result.SourceApp
			log.Infof("%s Lyrics ready from %s (%d lines)", logcolors.LogSync, logcolors.Provider(s.sourceApp), s.doc.Len())
		} else {
			s.doc = PlaceholderDocument(*s.track)
			s.sourceApp = ""
			log.Infof("%s No lyrics for %s - %s, using placeholder", logcolors.LogSync, s.track.Title, s.track.Artist)
		}
		s.state = Ready
	default:
	}
}

// CurrentSourceApp returns the provider key that produced the held
// document, or "" when none (including the placeholder) is held.
func (s *Service) CurrentSourceApp() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sourceApp
}

// State returns the current state
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close cancels any in-flight resolution. Later polls still render frames;
// new resolutions end immediately with the placeholder.
func (s *Service) Close() {
	s.cancel()
}
