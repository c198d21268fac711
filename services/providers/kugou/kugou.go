package kugou

import (
	"lyricsync-go/cache"
	"lyricsync-go/services/providers"
)

// NewProvider returns the "Kugou" provider. Kugou's catalogue is the
// official source; database backs the exact and search stages.
func NewProvider(settings providers.Settings, client *Client, database providers.LyricsDatabase) *providers.PipelineProvider {
	pipeline := settings.NewPipeline(providers.SourceKugou, cache.NamespaceKugou, client, database)
	return providers.NewPipelineProvider(providers.SourceKugou, pipeline)
}
