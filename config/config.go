package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Configuration struct {
		Port     string `envconfig:"PORT" default:"8080"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
		// Empty means $XDG_CACHE_HOME/lyricsync
		CacheDir string `envconfig:"CACHE_DIR" default:""`
		// Required as Bearer token for cache clearing; empty leaves it open
		CacheAccessToken string `envconfig:"CACHE_ACCESS_TOKEN" default:""`

		RequestTimeoutSeconds int    `envconfig:"REQUEST_TIMEOUT_SECONDS" default:"8"`
		UserAgent             string `envconfig:"USER_AGENT" default:"lyricsync-go/1.0"`

		SearchParallelism      int `envconfig:"SEARCH_PARALLELISM" default:"3"`
		OfficialQueryLimit     int `envconfig:"OFFICIAL_QUERY_LIMIT" default:"4"`
		OfficialCandidateLimit int `envconfig:"OFFICIAL_CANDIDATE_LIMIT" default:"8"`

		EnableQQMusic           bool `envconfig:"ENABLE_QQMUSIC" default:"true"`
		EnableNetease           bool `envconfig:"ENABLE_NETEASE" default:"true"`
		EnableKugou             bool `envconfig:"ENABLE_KUGOU" default:"true"`
		TraditionalToSimplified bool `envconfig:"TRADITIONAL_TO_SIMPLIFIED" default:"false"`

		LeadQQMusicMs int `envconfig:"LEAD_QQMUSIC_MS" default:"500"`
		LeadNeteaseMs int `envconfig:"LEAD_NETEASE_MS" default:"300"`
		LeadSpotifyMs int `envconfig:"LEAD_SPOTIFY_MS" default:"300"`
		LeadDefaultMs int `envconfig:"LEAD_DEFAULT_MS" default:"300"`

		MaxExtrapolationSeconds int `envconfig:"MAX_EXTRAPOLATION_SECONDS" default:"8"`

		CircuitBreakerThreshold    int `envconfig:"CIRCUIT_BREAKER_THRESHOLD" default:"5"`
		CircuitBreakerCooldownSecs int `envconfig:"CIRCUIT_BREAKER_COOLDOWN_SECS" default:"60"`

		RateLimitPerSecond  int    `envconfig:"RATE_LIMIT_PER_SECOND" default:"10"`
		RateLimitBurstLimit int    `envconfig:"RATE_LIMIT_BURST_LIMIT" default:"20"`
		AllowedOrigins      string `envconfig:"ALLOWED_ORIGINS" default:"*"`

		StatsAutoSaveSeconds int `envconfig:"STATS_AUTOSAVE_SECONDS" default:"300"`

		LrcLibBaseURL          string `envconfig:"LRCLIB_BASE_URL" default:"https://lrclib.net"`
		QQMusicSearchURL       string `envconfig:"QQMUSIC_SEARCH_URL" default:"https://c.y.qq.com/soso/fcgi-bin/client_search_cp"`
		QQMusicLyricURL        string `envconfig:"QQMUSIC_LYRIC_URL" default:"https://c.y.qq.com/lyric/fcgi-bin/fcg_query_lyric_new.fcg"`
		NeteaseSearchURL       string `envconfig:"NETEASE_SEARCH_URL" default:"https://music.163.com/api/search/get"`
		NeteaseLyricURL        string `envconfig:"NETEASE_LYRIC_URL" default:"https://music.163.com/api/song/lyric"`
		KugouSongSearchURL     string `envconfig:"KUGOU_SONG_SEARCH_URL" default:"http://msearchcdn.kugou.com/api/v3/search/song"`
		KugouLyricsSearchURL   string `envconfig:"KUGOU_LYRICS_SEARCH_URL" default:"https://krcs.kugou.com/search"`
		KugouLyricsDownloadURL string `envconfig:"KUGOU_LYRICS_DOWNLOAD_URL" default:"https://krcs.kugou.com/download"`
	}
	FeatureFlags struct {
		CacheCompression bool `envconfig:"FF_CACHE_COMPRESSION" default:"false"`
	}
}

var conf = mustLoad()

func load() (Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Warnf("Error loading .env file, using environment variables")
	}

	var cfg Config
	err = envconfig.Process("", &cfg)
	return cfg, err
}

func mustLoad() Config {
	cfg, err := load()
	if err != nil {
		log.Warnf("Error loading config: %v", err)
	}
	return cfg
}

// Get returns the process configuration
func Get() Config {
	return conf
}

// RequestTimeout is the per-request upstream timeout
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Configuration.RequestTimeoutSeconds) * time.Second
}

// MaxExtrapolation bounds timeline extrapolation for bursty sources
func (c Config) MaxExtrapolation() time.Duration {
	return time.Duration(c.Configuration.MaxExtrapolationSeconds) * time.Second
}

// CircuitBreakerCooldown is how long a tripped upstream stays open
func (c Config) CircuitBreakerCooldown() time.Duration {
	return time.Duration(c.Configuration.CircuitBreakerCooldownSecs) * time.Second
}
