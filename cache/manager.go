package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"lyricsync-go/logcolors"

	log "github.com/sirupsen/logrus"
)

// Namespaces used by the built-in providers
const (
	NamespaceLrcLib  = "lrclib-lyrics"
	NamespaceGeneric = "smtc-generic-lyrics"
	NamespaceQQMusic = "qqmusic-lyrics"
	NamespaceNetease = "netease-lyrics"
	NamespaceKugou   = "kugou-lyrics"
)

const fileExt = ".db"

// ErrInvalidNamespace is returned for names that cannot map to a file
var ErrInvalidNamespace = errors.New("invalid cache namespace")

var namespaceRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Manager owns every namespace Store under one directory. Stores are shared:
// asking twice for the same namespace returns the same Store.
type Manager struct {
	dir                string
	compressionEnabled bool

	mu     sync.Mutex
	stores map[string]*Store
}

// NamespaceInfo describes one namespace for listings
type NamespaceInfo struct {
	Name      string `json:"name"`
	Entries   int    `json:"entries"`
	SizeBytes int64  `json:"sizeBytes"`
	Path      string `json:"path"`
}

// NewManager creates dir if needed and returns a manager rooted there
func NewManager(dir string, compressionEnabled bool) (*Manager, error) {
	if info, err := os.Stat(dir); err == nil {
		log.Infof("%s Directory %s exists (IsDir: %v)", logcolors.LogCacheInit, dir, info.IsDir())
	} else {
		log.Infof("%s Directory %s does not exist, creating...", logcolors.LogCacheInit, dir)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	log.Infof("%s Cache manager initialized at %s (compression: %v)", logcolors.LogCache, dir, compressionEnabled)
	return &Manager{
		dir:                dir,
		compressionEnabled: compressionEnabled,
		stores:             make(map[string]*Store),
	}, nil
}

// Dir returns the cache directory
func (m *Manager) Dir() string {
	return m.dir
}

// ValidNamespace reports whether name can be used as a namespace file name
func ValidNamespace(name string) bool {
	return namespaceRegex.MatchString(name) && !strings.Contains(name, "..")
}

// Namespace returns the shared Store for name, creating it on first use.
// The database file itself is not touched until the store is read or written.
func (m *Manager) Namespace(name string) (*Store, error) {
	if !ValidNamespace(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNamespace, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[name]; ok {
		return s, nil
	}
	s := newStore(name, filepath.Join(m.dir, name+fileExt), m.compressionEnabled)
	m.stores[name] = s
	return s, nil
}

// Clear drops every entry of a namespace. Clearing a namespace that has
// never been written succeeds.
func (m *Manager) Clear(name string) error {
	s, err := m.Namespace(name)
	if err != nil {
		return err
	}
	return s.Clear()
}

// Namespaces lists the namespaces known to this manager plus any namespace
// files found on disk, sorted by name.
func (m *Manager) Namespaces() []NamespaceInfo {
	names := make(map[string]struct{})

	m.mu.Lock()
	for name := range m.stores {
		names[name] = struct{}{}
	}
	m.mu.Unlock()

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		log.Warnf("%s Failed to read cache directory: %v", logcolors.LogCache, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != fileExt {
			continue
		}
		if name := strings.TrimSuffix(entry.Name(), fileExt); ValidNamespace(name) {
			names[name] = struct{}{}
		}
	}

	infos := make([]NamespaceInfo, 0, len(names))
	for name := range names {
		s, err := m.Namespace(name)
		if err != nil {
			continue
		}
		count, size := s.Stats()
		infos = append(infos, NamespaceInfo{
			Name:      name,
			Entries:   count,
			SizeBytes: size,
			Path:      s.Path(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Close closes every open namespace database
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, s := range m.stores {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}
