package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"lyricsync-go/logcolors"
	"lyricsync-go/services/lyric"

	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const (
	lyricsBucket = "lyrics"
	metaBucket   = "meta"

	schemaVersionKey = "schema_version"

	// SchemaVersion is bumped whenever the stored payload shape changes.
	// Files written under another version have their lyrics bucket dropped on open.
	SchemaVersion = "1"

	openTimeout = time.Second
)

// Store is one cache namespace: a lock-free memory tier in front of a
// BoltDB file that is opened lazily on first disk access.
type Store struct {
	name               string
	dbPath             string
	compressionEnabled bool

	memCache sync.Map // key -> lyric.Payload

	// mu serializes opening, writing and clearing the disk tier
	mu sync.Mutex
	db *bolt.DB
}

func newStore(name, dbPath string, compressionEnabled bool) *Store {
	return &Store{
		name:               name,
		dbPath:             dbPath,
		compressionEnabled: compressionEnabled,
	}
}

// Name returns the namespace name
func (s *Store) Name() string {
	return s.name
}

// Path returns the BoltDB file backing the namespace
func (s *Store) Path() string {
	return s.dbPath
}

// openLocked opens the BoltDB file and reconciles its schema version.
// Caller must hold s.mu.
func (s *Store) openLocked() error {
	if s.db != nil {
		return nil
	}

	db, err := bolt.Open(s.dbPath, 0600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return fmt.Errorf("failed to open cache database %s: %w", s.dbPath, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists([]byte(metaBucket))
		if err != nil {
			return err
		}

		if version := meta.Get([]byte(schemaVersionKey)); !bytes.Equal(version, []byte(SchemaVersion)) {
			if tx.Bucket([]byte(lyricsBucket)) != nil {
				log.Infof("%s Schema version %q != %q for %s, dropping entries",
					logcolors.LogCacheInit, string(version), SchemaVersion, s.name)
				if err := tx.DeleteBucket([]byte(lyricsBucket)); err != nil {
					return err
				}
			}
			if err := meta.Put([]byte(schemaVersionKey), []byte(SchemaVersion)); err != nil {
				return err
			}
		}

		_, err = tx.CreateBucketIfNotExists([]byte(lyricsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to prepare cache buckets: %w", err)
	}

	s.db = db
	log.Debugf("%s Opened namespace %s at %s (compression: %v)",
		logcolors.LogCacheInit, s.name, s.dbPath, s.compressionEnabled)
	return nil
}

// Get returns the payload stored under key, checking memory first.
// Disk errors and undecodable entries are reported as a miss.
func (s *Store) Get(key string) (lyric.Payload, bool) {
	if v, ok := s.memCache.Load(key); ok {
		return v.(lyric.Payload), true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.openLocked(); err != nil {
		log.Warnf("%s %v", logcolors.LogCache, err)
		return lyric.Payload{}, false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket([]byte(lyricsBucket)); b != nil {
			if v := b.Get([]byte(key)); v != nil {
				data = append([]byte(nil), v...)
			}
		}
		return nil
	})
	if data == nil {
		return lyric.Payload{}, false
	}

	payload, err := decodeEntry(data)
	if err != nil {
		log.Warnf("%s Failed to decode entry %s in %s: %v", logcolors.LogCache, key, s.name, err)
		return lyric.Payload{}, false
	}

	s.memCache.Store(key, payload)
	return payload, true
}

// Set stores payload in memory and on disk. The memory tier is updated
// even when the disk write fails.
func (s *Store) Set(key string, payload lyric.Payload) error {
	s.memCache.Store(key, payload)

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if s.compressionEnabled {
		if data, err = compress(data); err != nil {
			return fmt.Errorf("failed to compress cache entry: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.openLocked(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(lyricsBucket))
		if b == nil {
			return errors.New("lyrics bucket not found")
		}
		return b.Put([]byte(key), data)
	})
}

// Clear empties the memory tier, closes the database and removes its file.
// A missing file is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memCache.Range(func(key, _ interface{}) bool {
		s.memCache.Delete(key)
		return true
	})

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Warnf("%s Failed to close %s before clearing: %v", logcolors.LogCacheClear, s.name, err)
		}
		s.db = nil
	}

	if err := os.Remove(s.dbPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cache file %s: %w", s.dbPath, err)
	}

	log.Infof("%s Cleared namespace %s", logcolors.LogCacheClear, s.name)
	return nil
}

// Stats returns the number of disk entries and the file size.
// A namespace that was never written reports zeros without creating a file.
func (s *Store) Stats() (entries int, sizeBytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.dbPath)
	if err != nil {
		return 0, 0
	}
	sizeBytes = info.Size()

	if err := s.openLocked(); err != nil {
		log.Warnf("%s %v", logcolors.LogCache, err)
		return 0, sizeBytes
	}

	s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket([]byte(lyricsBucket)); b != nil {
			entries = b.Stats().KeyN
		}
		return nil
	})
	return entries, sizeBytes
}

// Close closes the database connection; the memory tier is kept
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// decodeEntry accepts both plain JSON and compressed entries so that toggling
// compression does not invalidate existing files.
func decodeEntry(data []byte) (lyric.Payload, error) {
	var payload lyric.Payload

	if len(data) > 0 && data[0] != '{' {
		raw, err := decompress(data)
		if err != nil {
			return payload, err
		}
		data = raw
	}

	err := json.Unmarshal(data, &payload)
	return payload, err
}
