package config

import (
	"os"
	"testing"
	"time"
)

var overriddenVars = []string{
	"PORT",
	"REQUEST_TIMEOUT_SECONDS",
	"SEARCH_PARALLELISM",
	"OFFICIAL_QUERY_LIMIT",
	"OFFICIAL_CANDIDATE_LIMIT",
	"ENABLE_KUGOU",
	"TRADITIONAL_TO_SIMPLIFIED",
	"LEAD_QQMUSIC_MS",
	"LEAD_DEFAULT_MS",
	"MAX_EXTRAPOLATION_SECONDS",
	"CIRCUIT_BREAKER_COOLDOWN_SECS",
	"RATE_LIMIT_PER_SECOND",
	"RATE_LIMIT_BURST_LIMIT",
	"CACHE_ACCESS_TOKEN",
	"LRCLIB_BASE_URL",
	"FF_CACHE_COMPRESSION",
}

// clearEnv unsets vars for the duration of the test
func clearEnv(t *testing.T, keys []string) {
	t.Helper()
	original := make(map[string]string)
	for _, key := range keys {
		if v, ok := os.LookupEnv(key); ok {
			original[key] = v
		}
		os.Unsetenv(key)
	}
	t.Cleanup(func() {
		for _, key := range keys {
			os.Unsetenv(key)
		}
		for key, value := range original {
			os.Setenv(key, value)
		}
	})
}

func TestConfigDefaultValues(t *testing.T) {
	clearEnv(t, overriddenVars)

	cfg, err := load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Port default", cfg.Configuration.Port, "8080"},
		{"RequestTimeoutSeconds default", cfg.Configuration.RequestTimeoutSeconds, 8},
		{"SearchParallelism default", cfg.Configuration.SearchParallelism, 3},
		{"OfficialQueryLimit default", cfg.Configuration.OfficialQueryLimit, 4},
		{"OfficialCandidateLimit default", cfg.Configuration.OfficialCandidateLimit, 8},
		{"EnableKugou default", cfg.Configuration.EnableKugou, true},
		{"TraditionalToSimplified default", cfg.Configuration.TraditionalToSimplified, false},
		{"LeadQQMusicMs default", cfg.Configuration.LeadQQMusicMs, 500},
		{"LeadDefaultMs default", cfg.Configuration.LeadDefaultMs, 300},
		{"MaxExtrapolationSeconds default", cfg.Configuration.MaxExtrapolationSeconds, 8},
		{"CacheAccessToken default", cfg.Configuration.CacheAccessToken, ""},
		{"LrcLibBaseURL default", cfg.Configuration.LrcLibBaseURL, "https://lrclib.net"},
		{"CircuitBreakerCooldown default", cfg.CircuitBreakerCooldown(), time.Minute},
		{"RateLimitPerSecond default", cfg.Configuration.RateLimitPerSecond, 10},
		{"RateLimitBurstLimit default", cfg.Configuration.RateLimitBurstLimit, 20},
		{"CacheCompression default", cfg.FeatureFlags.CacheCompression, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, tt.got)
			}
		})
	}
}

func TestConfigEnvironmentOverrides(t *testing.T) {
	clearEnv(t, overriddenVars)

	os.Setenv("PORT", "9090")
	os.Setenv("REQUEST_TIMEOUT_SECONDS", "3")
	os.Setenv("SEARCH_PARALLELISM", "1")
	os.Setenv("ENABLE_KUGOU", "false")
	os.Setenv("TRADITIONAL_TO_SIMPLIFIED", "true")
	os.Setenv("LEAD_QQMUSIC_MS", "700")
	os.Setenv("MAX_EXTRAPOLATION_SECONDS", "4")
	os.Setenv("CIRCUIT_BREAKER_COOLDOWN_SECS", "120")
	os.Setenv("CACHE_ACCESS_TOKEN", "test_token_123")
	os.Setenv("LRCLIB_BASE_URL", "http://localhost:9999")
	os.Setenv("FF_CACHE_COMPRESSION", "true")

	cfg, err := load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Port override", cfg.Configuration.Port, "9090"},
		{"RequestTimeout override", cfg.RequestTimeout(), 3 * time.Second},
		{"SearchParallelism override", cfg.Configuration.SearchParallelism, 1},
		{"EnableKugou override", cfg.Configuration.EnableKugou, false},
		{"TraditionalToSimplified override", cfg.Configuration.TraditionalToSimplified, true},
		{"LeadQQMusicMs override", cfg.Configuration.LeadQQMusicMs, 700},
		{"MaxExtrapolation override", cfg.MaxExtrapolation(), 4 * time.Second},
		{"CircuitBreakerCooldown override", cfg.CircuitBreakerCooldown(), 2 * time.Minute},
		{"CacheAccessToken override", cfg.Configuration.CacheAccessToken, "test_token_123"},
		{"LrcLibBaseURL override", cfg.Configuration.LrcLibBaseURL, "http://localhost:9999"},
		{"CacheCompression override", cfg.FeatureFlags.CacheCompression, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, tt.got)
			}
		})
	}
}

func TestConfigInvalidValue(t *testing.T) {
	clearEnv(t, []string{"SEARCH_PARALLELISM"})
	os.Setenv("SEARCH_PARALLELISM", "not-a-number")

	if _, err := load(); err == nil {
		t.Error("Expected error for non-numeric SEARCH_PARALLELISM")
	}
}
