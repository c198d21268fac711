package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"lyricsync-go/cache"
	"lyricsync-go/circuitbreaker"
	"lyricsync-go/logcolors"
	"lyricsync-go/services"
	"lyricsync-go/services/lyric"
	"lyricsync-go/stats"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 64 << 10

type server struct {
	core  *services.Core
	stats *stats.Stats
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(v)
}

func (s *server) getLyrics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	title := strings.TrimSpace(q.Get("title"))
	if title == "" {
		Respond(w, r).Error(http.StatusBadRequest, "title is required")
		return
	}

	track := lyric.NewTrackInfo(q.Get("source"), title, strings.TrimSpace(q.Get("artist")))
	log.Infof("%s Lyrics request: %s - %s (source: %q)", logcolors.LogRequest, track.Title, track.Artist, track.SourceApp)

	result := s.core.ResolveLyrics(r.Context(), track)
	if !result.Found() {
		Respond(w, r).Error(http.StatusNotFound, "lyrics not found")
		return
	}
	Respond(w, r).SetProvider(result.SourceApp).JSON(newLyricsResponse(result))
}

func (s *server) postFrame(w http.ResponseWriter, r *http.Request) {
	var req SnapshotRequest
	if err := decodeBody(w, r, &req); err != nil {
		Respond(w, r).Error(http.StatusBadRequest, "invalid snapshot: "+err.Error())
		return
	}

	snapshot := req.Snapshot()
	resp := FrameResponse{DisplayFrame: s.core.GetDisplayFrame(snapshot)}
	if sel, ok := s.core.SelectPosition(snapshot); ok {
		resp.Timeline = newSelectionResponse(sel)
	}

	state, source := s.core.SyncState()
	resp.State = state.String()
	resp.SourceApp = source
	Respond(w, r).SetProvider(source).SetSyncState(resp.State).JSON(resp)
}

func (s *server) getRoute(w http.ResponseWriter, r *http.Request) {
	source := r.URL.Query().Get("source")
	Respond(w, r).JSON(RouteResponse{Source: source, Route: s.core.Route(source)})
}

func (s *server) selectTimeline(w http.ResponseWriter, r *http.Request) {
	var req TimelineRequest
	if err := decodeBody(w, r, &req); err != nil {
		Respond(w, r).Error(http.StatusBadRequest, "invalid diagnostics: "+err.Error())
		return
	}
	Respond(w, r).JSON(newSelectionResponse(s.core.SelectTimeline(req.Diagnostics())))
}

func (s *server) getCache(w http.ResponseWriter, r *http.Request) {
	Respond(w, r).JSON(CacheResponse{Dir: s.core.CacheDir(), Namespaces: s.core.Namespaces()})
}

func (s *server) clearCache(w http.ResponseWriter, r *http.Request) {
	namespace := mux.Vars(r)["namespace"]

	err := s.core.ClearCache(namespace)
	switch {
	case errors.Is(err, cache.ErrInvalidNamespace):
		Respond(w, r).Error(http.StatusBadRequest, err.Error())
	case err != nil:
		log.Errorf("%s Failed to clear %s: %v", logcolors.LogCacheClear, namespace, err)
		Respond(w, r).Error(http.StatusInternalServerError, "failed to clear cache")
	default:
		Respond(w, r).JSON(map[string]string{
			"message":   "Cache cleared",
			"namespace": namespace,
		})
	}
}

func (s *server) getStats(w http.ResponseWriter, r *http.Request) {
	snapshot := s.stats.Snapshot()
	snapshot["cache_storage"] = s.core.Namespaces()
	snapshot["circuit_breakers"] = s.core.Breakers()
	snapshot["providers"] = s.core.Providers()
	Respond(w, r).JSON(snapshot)
}

func (s *server) getHealth(w http.ResponseWriter, r *http.Request) {
	breakers := s.core.Breakers()
	status := "ok"
	var open []string
	for _, b := range breakers {
		if b.State == circuitbreaker.StateOpen.String() {
			open = append(open, b.Name)
		}
	}
	if len(open) > 0 {
		status = "degraded"
		log.Debugf("%s Open circuits: %v", logcolors.LogHealthCheck, open)
	}

	state, source := s.core.SyncState()
	Respond(w, r).JSON(map[string]interface{}{
		"status":              status,
		"providers":           s.core.Providers(),
		"circuit_breakers":    breakers,
		"open_circuits":       open,
		"sync_state":          state.String(),
		"sync_source":         source,
		"timeline_strategies": s.core.TimelineStrategies(),
	})
}

func helpHandler(w http.ResponseWriter, r *http.Request) {
	Respond(w, r).JSON(map[string]interface{}{
		"service": "lyricsync-go",
		"endpoints": map[string]string{
			"GET /lyrics?title=&artist=&source=": "Resolve lyrics along the source's provider route",
			"POST /frame":                        "Push a playback snapshot and get the display frame",
			"GET /route?source=":                 "Show the provider route for a source",
			"POST /timeline/select":              "Pick a playback position from timeline diagnostics",
			"GET /cache":                         "List cache namespaces",
			"DELETE /cache/{namespace}":          "Clear a cache namespace (Authorization required when configured)",
			"GET /stats":                         "Request, resolution and upstream counters",
			"GET /health":                        "Liveness and circuit breaker states",
		},
	})
}
