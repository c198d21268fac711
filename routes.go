package main

import (
	"net/http"
	"time"

	"lyricsync-go/middleware"

	"github.com/gorilla/mux"
)

// setupRoutes configures all HTTP routes. cacheToken guards cache clearing.
func setupRoutes(router *mux.Router, s *server, cacheToken string) {
	router.Use(s.recordStats)

	router.HandleFunc("/lyrics", s.getLyrics).Methods(http.MethodGet)
	router.HandleFunc("/frame", s.postFrame).Methods(http.MethodPost)
	router.HandleFunc("/route", s.getRoute).Methods(http.MethodGet)
	router.HandleFunc("/timeline/select", s.selectTimeline).Methods(http.MethodPost)

	router.HandleFunc("/cache", s.getCache).Methods(http.MethodGet)
	router.Handle("/cache/{namespace}",
		middleware.RequireToken(cacheToken)(http.HandlerFunc(s.clearCache))).
		Methods(http.MethodDelete, http.MethodPost)

	router.HandleFunc("/stats", s.getStats).Methods(http.MethodGet)
	router.HandleFunc("/health", s.getHealth).Methods(http.MethodGet)

	router.HandleFunc("/", helpHandler).Methods(http.MethodGet)
}

// recordStats counts each routed request by its path template
func (s *server) recordStats(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := middleware.NewResponseRecorder(w)

		next.ServeHTTP(rec, r)

		endpoint := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				endpoint = tpl
			}
		}
		s.stats.RecordRequest(endpoint)
		s.stats.RecordStatusCode(rec.StatusCode)
		s.stats.RecordResponseTime(time.Since(start))
	})
}
