package qqmusic

import (
	"lyricsync-go/cache"
	"lyricsync-go/services/providers"
)

// NewProvider returns the "QQMusic" provider. The official catalogue is
// tried first; database (usually LRCLIB) backs the exact and search stages.
func NewProvider(settings providers.Settings, client *Client, database providers.LyricsDatabase) *providers.PipelineProvider {
	pipeline := settings.NewPipeline(providers.SourceQQMusic, cache.NamespaceQQMusic, client, database)
	return providers.NewPipelineProvider(providers.SourceQQMusic, pipeline)
}
