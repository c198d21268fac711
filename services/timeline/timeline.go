// Package timeline picks a playback position estimate per source. Some
// players report their timeline in bursts, so a position extrapolated from
// the last update can be more accurate than the raw one.
package timeline

import (
	"sync"
	"time"

	"lyricsync-go/logcolors"
	"lyricsync-go/services/providers"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultStrategyName = "default-raw"
	BurstyStrategyName  = "extrapolated-for-bursty-sources"

	// DefaultMaxExtrapolation bounds how stale an update may be and still be extrapolated
	DefaultMaxExtrapolation = 8 * time.Second
)

// Identity carries every name known for the playing source
type Identity struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
	Resolved   string `json:"resolved"`
}

// Fields returns the non-empty identity fields
func (id Identity) Fields() []string {
	var out []string
	for _, f := range []string{id.Raw, id.Normalized, id.Resolved} {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Diagnostics is the input to strategy selection
type Diagnostics struct {
	Source               Identity      `json:"source"`
	IsPlaying            bool          `json:"isPlaying"`
	RawPosition          time.Duration `json:"rawPosition"`
	LastUpdateAge        time.Duration `json:"lastUpdateAge"`
	ExtrapolatedPosition time.Duration `json:"extrapolatedPosition"`
}

// Selection is the chosen position and the strategy that chose it
type Selection struct {
	Strategy string        `json:"strategy"`
	Position time.Duration `json:"position"`
}

// Strategy is one position policy
type Strategy interface {
	Name() string
	CanApply(source Identity) bool
	SelectPosition(d Diagnostics) time.Duration
}

// RawStrategy always trusts the raw position
type RawStrategy struct{}

func (RawStrategy) Name() string                               { return DefaultStrategyName }
func (RawStrategy) CanApply(Identity) bool                     { return true }
func (RawStrategy) SelectPosition(d Diagnostics) time.Duration { return d.RawPosition }

// BurstyStrategy applies to Spotify and Netease players. While playing and
// with a last update no older than MaxAge, it trusts the extrapolated position.
type BurstyStrategy struct {
	MaxAge time.Duration
}

func (BurstyStrategy) Name() string { return BurstyStrategyName }

func (BurstyStrategy) CanApply(source Identity) bool {
	for _, f := range source.Fields() {
		if providers.IsSpotifyFamily(f) || providers.IsNeteaseFamily(f) {
			return true
		}
	}
	return false
}

func (b BurstyStrategy) SelectPosition(d Diagnostics) time.Duration {
	maxAge := b.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxExtrapolation
	}
	if d.IsPlaying && d.LastUpdateAge >= 0 && d.LastUpdateAge <= maxAge {
		return d.ExtrapolatedPosition
	}
	return d.RawPosition
}

// Registry evaluates strategies in registration order; the raw strategy is
// the final fallback.
type Registry struct {
	mu         sync.RWMutex
	strategies []Strategy
	fallback   Strategy
}

// NewRegistry creates a registry holding strategies in order
func NewRegistry(strategies ...Strategy) *Registry {
	return &Registry{strategies: strategies, fallback: RawStrategy{}}
}

// DefaultRegistry holds the bursty-source strategy with the given max age
func DefaultRegistry(maxAge time.Duration) *Registry {
	return NewRegistry(BurstyStrategy{MaxAge: maxAge})
}

// Register appends a strategy
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies = append(r.strategies, s)
}

// Names lists strategy names in evaluation order, fallback last
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies)+1)
	for _, s := range r.strategies {
		names = append(names, s.Name())
	}
	return append(names, r.fallback.Name())
}

// Select returns the first applicable strategy's position
func (r *Registry) Select(d Diagnostics) Selection {
	r.mu.RLock()
	strategy := r.fallback
	for _, s := range r.strategies {
		if s.CanApply(d.Source) {
			strategy = s
			break
		}
	}
	r.mu.RUnlock()

	sel := Selection{Strategy: strategy.Name(), Position: strategy.SelectPosition(d)}
	if sel.Position != d.RawPosition {
		log.Tracef("%s %s chose %v over raw %v (age %v)",
			logcolors.LogTimeline, sel.Strategy, sel.Position, d.RawPosition, d.LastUpdateAge)
	}
	return sel
}
