package stats

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"lyricsync-go/services/providers"
)

// Stats holds all daemon statistics with atomic counters
type Stats struct {
	// Server info
	StartTime time.Time

	// Request counters
	TotalRequests    atomic.Int64
	LyricsRequests   atomic.Int64
	FrameRequests    atomic.Int64
	RouteRequests    atomic.Int64
	TimelineRequests atomic.Int64
	CacheRequests    atomic.Int64
	StatsRequests    atomic.Int64
	HealthRequests   atomic.Int64
	OtherRequests    atomic.Int64

	// Resolution outcomes by pipeline stage
	CacheHits    atomic.Int64
	OfficialHits atomic.Int64
	ExactHits    atomic.Int64
	SearchHits   atomic.Int64
	Misses       atomic.Int64

	// Rate limiting
	RateLimitAllowed  atomic.Int64
	RateLimitExceeded atomic.Int64

	// Response status codes
	Status2xx atomic.Int64
	Status4xx atomic.Int64
	Status5xx atomic.Int64

	// Response time tracking (in microseconds for precision)
	totalResponseTime atomic.Int64
	responseCount     atomic.Int64
	minResponseTime   atomic.Int64
	maxResponseTime   atomic.Int64

	// Per-provider hits, per-host upstream failures and breaker trips
	providerHits     sync.Map // map[string]*atomic.Int64
	upstreamFailures sync.Map
	breakerTrips     sync.Map
}

const noResponseTime = int64(^uint64(0) >> 1)

// New creates an empty Stats starting now
func New() *Stats {
	s := &Stats{StartTime: time.Now()}
	s.minResponseTime.Store(noResponseTime)
	return s
}

// Global stats instance
var global = New()

// Get returns the global stats instance
func Get() *Stats {
	return global
}

// RecordRequest records a request to a routed path template
func (s *Stats) RecordRequest(endpoint string) {
	s.TotalRequests.Add(1)
	switch endpoint {
	case "/lyrics":
		s.LyricsRequests.Add(1)
	case "/frame":
		s.FrameRequests.Add(1)
	case "/route":
		s.RouteRequests.Add(1)
	case "/timeline/select":
		s.TimelineRequests.Add(1)
	case "/cache", "/cache/{namespace}":
		s.CacheRequests.Add(1)
	case "/stats":
		s.StatsRequests.Add(1)
	case "/health":
		s.HealthRequests.Add(1)
	default:
		s.OtherRequests.Add(1)
	}
}

// RecordStage counts the stage that ended a provider resolution
func (s *Stats) RecordStage(provider, stage string) {
	switch stage {
	case providers.StageCache:
		s.CacheHits.Add(1)
	case providers.StageOfficial:
		s.OfficialHits.Add(1)
	case providers.StageExact:
		s.ExactHits.Add(1)
	case providers.StageSearch:
		s.SearchHits.Add(1)
	case providers.StageMiss:
		s.Misses.Add(1)
		return
	}
	counter(&s.providerHits, provider).Add(1)
}

// RecordUpstreamFailure counts a failed request to host
func (s *Stats) RecordUpstreamFailure(host string, _ error) {
	counter(&s.upstreamFailures, host).Add(1)
}

// RecordBreakerTrip counts a circuit opening
func (s *Stats) RecordBreakerTrip(name string) {
	counter(&s.breakerTrips, name).Add(1)
}

func counter(m *sync.Map, key string) *atomic.Int64 {
	if c, ok := m.Load(key); ok {
		return c.(*atomic.Int64)
	}
	c, _ := m.LoadOrStore(key, &atomic.Int64{})
	return c.(*atomic.Int64)
}

func snapshotMap(m *sync.Map) map[string]int64 {
	out := make(map[string]int64)
	m.Range(func(k, v any) bool {
		out[k.(string)] = v.(*atomic.Int64).Load()
		return true
	})
	return out
}

// ProviderHits returns lyrics found per provider
func (s *Stats) ProviderHits() map[string]int64 { return snapshotMap(&s.providerHits) }

// UpstreamFailures returns failed requests per upstream host
func (s *Stats) UpstreamFailures() map[string]int64 { return snapshotMap(&s.upstreamFailures) }

// BreakerTrips returns circuit openings per breaker
func (s *Stats) BreakerTrips() map[string]int64 { return snapshotMap(&s.breakerTrips) }

// RecordRateLimit records whether a request passed the limiter
func (s *Stats) RecordRateLimit(allowed bool) {
	if allowed {
		s.RateLimitAllowed.Add(1)
	} else {
		s.RateLimitExceeded.Add(1)
	}
}

// RecordStatusCode records a response status code
func (s *Stats) RecordStatusCode(code int) {
	switch {
	case code >= 200 && code < 300:
		s.Status2xx.Add(1)
	case code >= 400 && code < 500:
		s.Status4xx.Add(1)
	case code >= 500:
		s.Status5xx.Add(1)
	}
}

// RecordResponseTime records a response time
func (s *Stats) RecordResponseTime(duration time.Duration) {
	us := duration.Microseconds()

	s.totalResponseTime.Add(us)
	s.responseCount.Add(1)

	for {
		current := s.minResponseTime.Load()
		if us >= current || s.minResponseTime.CompareAndSwap(current, us) {
			break
		}
	}
	for {
		current := s.maxResponseTime.Load()
		if us <= current || s.maxResponseTime.CompareAndSwap(current, us) {
			break
		}
	}
}

// Uptime returns the server uptime
func (s *Stats) Uptime() time.Duration {
	return time.Since(s.StartTime)
}

// HitRate returns the share of resolutions that found lyrics, as a percentage
func (s *Stats) HitRate() float64 {
	hits := s.CacheHits.Load() + s.OfficialHits.Load() + s.ExactHits.Load() + s.SearchHits.Load()
	total := hits + s.Misses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// AvgResponseTime returns the average response time
func (s *Stats) AvgResponseTime() time.Duration {
	count := s.responseCount.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(s.totalResponseTime.Load()/count) * time.Microsecond
}

// MinResponseTime returns the minimum response time
func (s *Stats) MinResponseTime() time.Duration {
	min := s.minResponseTime.Load()
	if min == noResponseTime {
		return 0
	}
	return time.Duration(min) * time.Microsecond
}

// MaxResponseTime returns the maximum response time
func (s *Stats) MaxResponseTime() time.Duration {
	return time.Duration(s.maxResponseTime.Load()) * time.Microsecond
}

// Snapshot returns a point-in-time snapshot of all stats
func (s *Stats) Snapshot() map[string]interface{} {
	uptime := s.Uptime()

	trips := s.BreakerTrips()
	tripped := make([]string, 0, len(trips))
	for name := range trips {
		tripped = append(tripped, name)
	}
	sort.Strings(tripped)

	return map[string]interface{}{
		"server": map[string]interface{}{
			"start_time":     s.StartTime.Format(time.RFC3339),
			"uptime":         uptime.String(),
			"uptime_seconds": int64(uptime.Seconds()),
		},
		"requests": map[string]interface{}{
			"total":    s.TotalRequests.Load(),
			"lyrics":   s.LyricsRequests.Load(),
			"frame":    s.FrameRequests.Load(),
			"route":    s.RouteRequests.Load(),
			"timeline": s.TimelineRequests.Load(),
			"cache":    s.CacheRequests.Load(),
			"stats":    s.StatsRequests.Load(),
			"health":   s.HealthRequests.Load(),
			"other":    s.OtherRequests.Load(),
		},
		"resolution": map[string]interface{}{
			"cache_hits":    s.CacheHits.Load(),
			"official_hits": s.OfficialHits.Load(),
			"exact_hits":    s.ExactHits.Load(),
			"search_hits":   s.SearchHits.Load(),
			"misses":        s.Misses.Load(),
			"hit_rate":      s.HitRate(),
			"by_provider":   s.ProviderHits(),
		},
		"upstream": map[string]interface{}{
			"failures":        s.UpstreamFailures(),
			"breaker_trips":   trips,
			"tripped_circuits": tripped,
		},
		"rate_limiting": map[string]interface{}{
			"allowed":  s.RateLimitAllowed.Load(),
			"exceeded": s.RateLimitExceeded.Load(),
		},
		"responses": map[string]interface{}{
			"2xx": s.Status2xx.Load(),
			"4xx": s.Status4xx.Load(),
			"5xx": s.Status5xx.Load(),
		},
		"response_times": map[string]interface{}{
			"avg": s.AvgResponseTime().String(),
			"min": s.MinResponseTime().String(),
			"max": s.MaxResponseTime().String(),
		},
	}
}
