package netease

import (
	"lyricsync-go/cache"
	"lyricsync-go/services/providers"
)

// NewProvider returns the "Netease" provider backed by the official
// catalogue, with database for the exact and search stages.
func NewProvider(settings providers.Settings, client *Client, database providers.LyricsDatabase) *providers.PipelineProvider {
	pipeline := settings.NewPipeline(providers.SourceNetease, cache.NamespaceNetease, client, database)
	return providers.NewPipelineProvider(providers.SourceNetease, pipeline)
}
