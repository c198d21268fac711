package providers

import (
	"lyricsync-go/cache"
	"lyricsync-go/logcolors"
	"lyricsync-go/services/providers/lrc"

	log "github.com/sirupsen/logrus"
)

// Settings holds what every provider pipeline shares. Zero values are valid:
// no cache, the plain parser, no recorder and default limits.
type Settings struct {
	Cache    *cache.Manager
	Parser   *lrc.Parser
	Recorder Recorder

	Parallelism            int
	OfficialQueryLimit     int
	OfficialCandidateLimit int
}

// NewPipeline builds the pipeline for provider name, backed by the cache
// namespace and the given sources (either may be nil).
func (s Settings) NewPipeline(name, namespace string, official OfficialSource, database LyricsDatabase) *Pipeline {
	p := &Pipeline{
		Name:                   name,
		Official:               official,
		Database:               database,
		Parser:                 s.Parser,
		Recorder:               s.Recorder,
		Parallelism:            s.Parallelism,
		OfficialQueryLimit:     s.OfficialQueryLimit,
		OfficialCandidateLimit: s.OfficialCandidateLimit,
	}

	if s.Cache != nil && namespace != "" {
		store, err := s.Cache.Namespace(namespace)
		if err != nil {
			// Resolution still works, just uncached
			log.Warnf("%s %s Cache disabled: %v", logcolors.LogWarning, logcolors.Provider(name), err)
		} else {
			p.Cache = store
		}
	}
	return p
}
