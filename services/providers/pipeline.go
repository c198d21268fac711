package providers

import (
	"context"
	"errors"
	"sort"
	"strings"

	"lyricsync-go/cache"
	"lyricsync-go/logcolors"
	"lyricsync-go/services/lyric"
	"lyricsync-go/services/providers/lrc"
	"lyricsync-go/services/providers/matching"
	"lyricsync-go/services/providers/transport"

	"github.com/arunsworld/nursery"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultParallelism            = 3
	DefaultOfficialQueryLimit     = 4
	DefaultOfficialCandidateLimit = 8
)

// Pipeline runs the staged resolution shared by every provider:
// cache, official search, exact lookup, fuzzy search, then parse.
// Cache, Official and Database are all optional.
type Pipeline struct {
	Name     string
	Cache    *cache.Store
	Official OfficialSource
	Database LyricsDatabase
	Parser   *lrc.Parser
	Recorder Recorder

	Parallelism            int
	OfficialQueryLimit     int
	OfficialCandidateLimit int
}

type scoredSong struct {
	SongCandidate
	score int
}

type searchHit struct {
	score   int
	payload lyric.Payload
}

// Resolve returns the parsed document for track, or nil. It never returns
// an error; failures are logged at debug level and treated as a miss.
func (p *Pipeline) Resolve(ctx context.Context, track lyric.TrackInfo) *lyric.Document {
	if track.IsUnidentified() {
		return nil
	}

	payload, ok := p.fetchPayload(ctx, track)
	if !ok {
		return nil
	}

	parser := p.Parser
	if parser == nil {
		parser = &lrc.Parser{}
	}
	return parser.Parse(payload)
}

func (p *Pipeline) fetchPayload(ctx context.Context, track lyric.TrackInfo) (lyric.Payload, bool) {
	title, artist := track.Title, track.Artist
	key := matching.CacheKey(track.SourceApp, title, artist)

	if p.Cache != nil {
		if cached, ok := p.Cache.Get(key); ok && cached.HasLyrics() {
			log.Debugf("%s %s Cache hit: %s", logcolors.LogCacheLyrics, logcolors.Provider(p.Name), key)
			p.record(StageCache)
			return cached, true
		}
	}

	stages := []struct {
		name string
		run  func(context.Context, string, string) (lyric.Payload, bool)
	}{
		{StageOfficial, p.official},
		{StageExact, p.exact},
		{StageSearch, p.search},
	}

	for _, stage := range stages {
		if ctx.Err() != nil {
			break
		}
		payload, ok := stage.run(ctx, title, artist)
		if !ok {
			continue
		}

		log.Infof("%s %s Resolved via %s stage: %s - %s",
			logcolors.LogSuccess, logcolors.Provider(p.Name), stage.name, title, artist)
		p.record(stage.name)
		p.store(key, payload)
		return payload, true
	}

	p.record(StageMiss)
	return lyric.Payload{}, false
}

// official searches the catalogue with the first few queries, ranks the
// merged song candidates and returns the first one whose lyrics are non-empty.
func (p *Pipeline) official(ctx context.Context, title, artist string) (lyric.Payload, bool) {
	if p.Official == nil {
		return lyric.Payload{}, false
	}

	queries := matching.BuildSearchQueries(title, artist)
	if limit := orDefault(p.OfficialQueryLimit, DefaultOfficialQueryLimit); len(queries) > limit {
		queries = queries[:limit]
	}

	var merged []scoredSong
	for _, query := range queries {
		songs, err := p.Official.SearchSongs(ctx, query)
		if err != nil {
			p.logError("official search", query, err)
			if ctx.Err() != nil {
				return lyric.Payload{}, false
			}
			continue
		}
		for _, song := range songs {
			if strings.TrimSpace(song.ID) == "" {
				continue
			}
			score := matching.Score(title, artist, song.Title, song.Artist)
			log.Debugf("%s %s %s - %s (score: %d)", logcolors.LogMatch, logcolors.Provider(p.Name), song.Title, song.Artist, score)
			merged = append(merged, scoredSong{SongCandidate: song, score: score})
		}
	}

	candidates := rankCandidates(merged, orDefault(p.OfficialCandidateLimit, DefaultOfficialCandidateLimit))
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return lyric.Payload{}, false
		}
		payload, err := p.Official.FetchLyrics(ctx, candidate.ID)
		if err != nil {
			p.logError("official lyrics", candidate.ID, err)
			continue
		}
		if payload.HasLyrics() {
			log.Debugf("%s %s Official match %s - %s (score: %d, id: %s)", logcolors.LogBestMatch,
				logcolors.Provider(p.Name), candidate.Title, candidate.Artist, candidate.score, candidate.ID)
			return payload, true
		}
	}
	return lyric.Payload{}, false
}

// rankCandidates keeps the highest-scored entry per song id (case-insensitive,
// first seen on ties), sorts by score descending (stable) and keeps limit.
func rankCandidates(merged []scoredSong, limit int) []scoredSong {
	index := make(map[string]int)
	var unique []scoredSong
	for _, c := range merged {
		id := strings.ToLower(c.ID)
		if i, ok := index[id]; ok {
			if c.score > unique[i].score {
				unique[i] = c
			}
			continue
		}
		index[id] = len(unique)
		unique = append(unique, c)
	}

	sort.SliceStable(unique, func(i, j int) bool { return unique[i].score > unique[j].score })
	if len(unique) > limit {
		unique = unique[:limit]
	}
	return unique
}

// exact tries each title/artist candidate against the database lookup
func (p *Pipeline) exact(ctx context.Context, title, artist string) (lyric.Payload, bool) {
	if p.Database == nil {
		return lyric.Payload{}, false
	}

	for _, candidate := range matching.BuildGetCandidates(title, artist) {
		if ctx.Err() != nil {
			return lyric.Payload{}, false
		}
		payload, err := p.Database.Get(ctx, candidate.Title, candidate.Artist)
		if err != nil {
			p.logError("exact lookup", candidate.Title+" - "+candidate.Artist, err)
			continue
		}
		if payload.HasLyrics() {
			log.Debugf("%s %s %s - %s", logcolors.LogExactMatch, logcolors.Provider(p.Name), candidate.Title, candidate.Artist)
			return payload, true
		}
	}
	return lyric.Payload{}, false
}

// search runs every query against the database with bounded concurrency
// and keeps the best-scored item. Earlier queries win ties.
func (p *Pipeline) search(ctx context.Context, title, artist string) (lyric.Payload, bool) {
	if p.Database == nil {
		return lyric.Payload{}, false
	}

	queries := matching.BuildSearchQueries(title, artist)
	if len(queries) == 0 {
		return lyric.Payload{}, false
	}

	hits := make([]*searchHit, len(queries))
	sem := make(chan struct{}, orDefault(p.Parallelism, DefaultParallelism))

	jobs := make([]nursery.ConcurrentJob, 0, len(queries))
	for i, query := range queries {
		jobs = append(jobs, func(i int, query string) nursery.ConcurrentJob {
			return func(ctx context.Context, _ chan error) {
				select {
				case sem <- struct{}{}:
				case <-ctx.Done():
					return
				}
				defer func() { <-sem }()

				hits[i] = p.searchOne(ctx, query, title, artist)
			}
		}(i, query))
	}

	// Jobs never report errors; a failed query is simply absent
	nursery.RunConcurrentlyWithContext(ctx, jobs...)

	var best *searchHit
	for _, hit := range hits {
		if hit != nil && (best == nil || hit.score > best.score) {
			best = hit
		}
	}
	if best == nil {
		return lyric.Payload{}, false
	}

	log.Debugf("%s %s Fuzzy search best score %d", logcolors.LogBestMatch, logcolors.Provider(p.Name), best.score)
	return best.payload, true
}

func (p *Pipeline) searchOne(ctx context.Context, query, title, artist string) *searchHit {
	items, err := p.Database.Search(ctx, query)
	if err != nil {
		p.logError("search", query, err)
		return nil
	}

	var best *searchHit
	for _, item := range items {
		if !item.Payload.HasLyrics() {
			continue
		}
		score := matching.Score(title, artist, item.Title, item.Artist)
		log.Debugf("%s %s %s - %s (score: %d)", logcolors.LogMatch, logcolors.Provider(p.Name), item.Title, item.Artist, score)
		if best == nil || score > best.score {
			best = &searchHit{score: score, payload: item.Payload}
		}
	}
	return best
}

func (p *Pipeline) store(key string, payload lyric.Payload) {
	if p.Cache == nil {
		return
	}
	if err := p.Cache.Set(key, payload); err != nil {
		log.Warnf("%s %s Failed to persist %s: %v", logcolors.LogCache, logcolors.Provider(p.Name), key, err)
	}
}

func (p *Pipeline) record(stage string) {
	if p.Recorder != nil {
		p.Recorder.RecordStage(p.Name, stage)
	}
}

func (p *Pipeline) logError(stage, subject string, err error) {
	if errors.Is(err, transport.ErrNotFound) {
		log.Debugf("%s %s %s miss: %s", logcolors.LogFallback, logcolors.Provider(p.Name), stage, subject)
		return
	}
	log.Debugf("%s %s %s failed for %q: %v", logcolors.LogWarning, logcolors.Provider(p.Name), stage, subject, err)
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
