package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"lyricsync-go/logcolors"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const (
	statsBucketName = "stats"
	statsKey        = "server_stats"
)

// Store persists a Stats to its own bbolt file
type Store struct {
	db       *bolt.DB
	dbPath   string
	stats    *Stats
	mu       sync.Mutex
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// PersistedStats is the on-disk form; counters accumulate across restarts
type PersistedStats struct {
	TotalRequests    int64 `json:"total_requests"`
	LyricsRequests   int64 `json:"lyrics_requests"`
	FrameRequests    int64 `json:"frame_requests"`
	RouteRequests    int64 `json:"route_requests"`
	TimelineRequests int64 `json:"timeline_requests"`
	CacheRequests    int64 `json:"cache_requests"`
	StatsRequests    int64 `json:"stats_requests"`
	HealthRequests   int64 `json:"health_requests"`
	OtherRequests    int64 `json:"other_requests"`

	CacheHits    int64 `json:"cache_hits"`
	OfficialHits int64 `json:"official_hits"`
	ExactHits    int64 `json:"exact_hits"`
	SearchHits   int64 `json:"search_hits"`
	Misses       int64 `json:"misses"`

	RateLimitAllowed  int64 `json:"rate_limit_allowed"`
	RateLimitExceeded int64 `json:"rate_limit_exceeded"`
	Status2xx         int64 `json:"status_2xx"`
	Status4xx         int64 `json:"status_4xx"`
	Status5xx         int64 `json:"status_5xx"`

	TotalResponseTime int64 `json:"total_response_time"`
	ResponseCount     int64 `json:"response_count"`
	MinResponseTime   int64 `json:"min_response_time"`
	MaxResponseTime   int64 `json:"max_response_time"`

	ProviderHits     map[string]int64 `json:"provider_hits"`
	UpstreamFailures map[string]int64 `json:"upstream_failures"`
	BreakerTrips     map[string]int64 `json:"breaker_trips"`

	LastSaved    time.Time `json:"last_saved"`
	FirstStarted time.Time `json:"first_started"`
}

// NewStore opens (or creates) the stats database at dbPath for s
func NewStore(dbPath string, s *Stats) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create stats directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open stats database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(statsBucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create stats bucket: %w", err)
	}

	log.Infof("%s Stats store initialized at %s", logcolors.LogStats, dbPath)
	return &Store{
		db:       db,
		dbPath:   dbPath,
		stats:    s,
		stopChan: make(chan struct{}),
	}, nil
}

// Load applies persisted counters to the store's Stats
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var persisted PersistedStats
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(statsBucketName)).Get([]byte(statsKey))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &persisted)
	})
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	if !found {
		return nil
	}

	st := s.stats
	st.TotalRequests.Store(persisted.TotalRequests)
	st.LyricsRequests.Store(persisted.LyricsRequests)
	st.FrameRequests.Store(persisted.FrameRequests)
	st.RouteRequests.Store(persisted.RouteRequests)
	st.TimelineRequests.Store(persisted.TimelineRequests)
	st.CacheRequests.Store(persisted.CacheRequests)
	st.StatsRequests.Store(persisted.StatsRequests)
	st.HealthRequests.Store(persisted.HealthRequests)
	st.OtherRequests.Store(persisted.OtherRequests)
	st.CacheHits.Store(persisted.CacheHits)
	st.OfficialHits.Store(persisted.OfficialHits)
	st.ExactHits.Store(persisted.ExactHits)
	st.SearchHits.Store(persisted.SearchHits)
	st.Misses.Store(persisted.Misses)
	st.RateLimitAllowed.Store(persisted.RateLimitAllowed)
	st.RateLimitExceeded.Store(persisted.RateLimitExceeded)
	st.Status2xx.Store(persisted.Status2xx)
	st.Status4xx.Store(persisted.Status4xx)
	st.Status5xx.Store(persisted.Status5xx)
	st.totalResponseTime.Store(persisted.TotalResponseTime)
	st.responseCount.Store(persisted.ResponseCount)

	if persisted.MinResponseTime > 0 && persisted.MinResponseTime < noResponseTime {
		st.minResponseTime.Store(persisted.MinResponseTime)
	}
	if persisted.MaxResponseTime > 0 {
		st.maxResponseTime.Store(persisted.MaxResponseTime)
	}

	restore(&st.providerHits, persisted.ProviderHits)
	restore(&st.upstreamFailures, persisted.UpstreamFailures)
	restore(&st.breakerTrips, persisted.BreakerTrips)

	if !persisted.FirstStarted.IsZero() {
		st.StartTime = persisted.FirstStarted
	}

	log.Infof("%s Loaded persisted stats (total requests: %d, first started: %s)",
		logcolors.LogStats, persisted.TotalRequests, persisted.FirstStarted.Format(time.RFC3339))
	return nil
}

func restore(m *sync.Map, values map[string]int64) {
	for name, count := range values {
		c := &atomic.Int64{}
		c.Store(count)
		m.Store(name, c)
	}
}

// Save persists the current counters
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stats
	persisted := PersistedStats{
		TotalRequests:     st.TotalRequests.Load(),
		LyricsRequests:    st.LyricsRequests.Load(),
		FrameRequests:     st.FrameRequests.Load(),
		RouteRequests:     st.RouteRequests.Load(),
		TimelineRequests:  st.TimelineRequests.Load(),
		CacheRequests:     st.CacheRequests.Load(),
		StatsRequests:     st.StatsRequests.Load(),
		HealthRequests:    st.HealthRequests.Load(),
		OtherRequests:     st.OtherRequests.Load(),
		CacheHits:         st.CacheHits.Load(),
		OfficialHits:      st.OfficialHits.Load(),
		ExactHits:         st.ExactHits.Load(),
		SearchHits:        st.SearchHits.Load(),
		Misses:            st.Misses.Load(),
		RateLimitAllowed:  st.RateLimitAllowed.Load(),
		RateLimitExceeded: st.RateLimitExceeded.Load(),
		Status2xx:         st.Status2xx.Load(),
		Status4xx:         st.Status4xx.Load(),
		Status5xx:         st.Status5xx.Load(),
		TotalResponseTime: st.totalResponseTime.Load(),
		ResponseCount:     st.responseCount.Load(),
		MinResponseTime:   st.minResponseTime.Load(),
		MaxResponseTime:   st.maxResponseTime.Load(),
		ProviderHits:      st.ProviderHits(),
		UpstreamFailures:  st.UpstreamFailures(),
		BreakerTrips:      st.BreakerTrips(),
		LastSaved:         time.Now(),
		FirstStarted:      st.StartTime,
	}

	data, err := json.Marshal(persisted)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(statsBucketName)).Put([]byte(statsKey), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save stats: %w", err)
	}
	return nil
}

// StartAutoSave saves every interval until Close
func (s *Store) StartAutoSave(interval time.Duration) {
	if interval <= 0 {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := s.Save(); err != nil {
					log.Warnf("%s Failed to auto-save stats: %v", logcolors.LogStats, err)
				}
			case <-s.stopChan:
				return
			}
		}
	}()
	log.Infof("%s Started auto-save with interval %v", logcolors.LogStats, interval)
}

// Close stops auto-save, saves once more and closes the database
func (s *Store) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()

	if err := s.Save(); err != nil {
		log.Warnf("%s Failed to save stats on close: %v", logcolors.LogStats, err)
	} else {
		log.Infof("%s Stats saved on shutdown", logcolors.LogStats)
	}
	return s.db.Close()
}
