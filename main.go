package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"lyricsync-go/config"
	"lyricsync-go/logcolors"
	"lyricsync-go/middleware"
	"lyricsync-go/services"
	"lyricsync-go/stats"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var conf = config.Get()

func init() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := log.ParseLevel(conf.Configuration.LogLevel)
	if err != nil {
		log.Warnf("%s Invalid LOG_LEVEL %q, using info", logcolors.LogConfig, conf.Configuration.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// newHandler builds the full middleware chain around the routes
func newHandler(core *services.Core, st *stats.Stats, cfg config.Config) http.Handler {
	router := mux.NewRouter()
	setupRoutes(router, &server{core: core, stats: st}, cfg.Configuration.CacheAccessToken)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins(cfg.Configuration.AllowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	limiter := middleware.NewIPRateLimiter(
		rate.Limit(cfg.Configuration.RateLimitPerSecond),
		cfg.Configuration.RateLimitBurstLimit,
	)

	loggedRouter := middleware.LoggingMiddleware(router)
	corsHandler := c.Handler(loggedRouter)
	return middleware.RateLimit(limiter, st.RecordRateLimit, isFramePoll)(corsHandler)
}

// isFramePoll matches the per-tick frame endpoint, which bypasses the limiter
func isFramePoll(r *http.Request) bool {
	return r.Method == http.MethodPost && r.URL.Path == "/frame"
}

func allowedOrigins(value string) []string {
	var origins []string
	for _, o := range strings.Split(value, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func main() {
	st := stats.Get()

	core, err := services.New(conf, st)
	if err != nil {
		log.Fatalf("%s Failed to start: %v", logcolors.LogServer, err)
	}

	statsStore, err := stats.NewStore(filepath.Join(core.CacheDir(), "stats", "stats.db"), st)
	if err != nil {
		log.Warnf("%s Stats persistence disabled: %v", logcolors.LogStats, err)
	} else {
		if err := statsStore.Load(); err != nil {
			log.Warnf("%s %v", logcolors.LogStats, err)
		}
		statsStore.StartAutoSave(time.Duration(conf.Configuration.StatsAutoSaveSeconds) * time.Second)
	}

	srv := &http.Server{
		Addr:              ":" + conf.Configuration.Port,
		Handler:           newHandler(core, st, conf),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("%s Listening on port %s", logcolors.LogServer, conf.Configuration.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("%s %v", logcolors.LogServer, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Infof("%s Shutting down...", logcolors.LogServer)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("%s Shutdown: %v", logcolors.LogServer, err)
	}
	if statsStore != nil {
		statsStore.Close()
	}
	if err := core.Close(); err != nil {
		log.Errorf("%s Closing core: %v", logcolors.LogServer, err)
	}
	log.Infof("%s Stopped", logcolors.LogServer)
}
