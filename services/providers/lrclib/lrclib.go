package lrclib

import (
	"lyricsync-go/cache"
	"lyricsync-go/services/providers"
)

// NewProvider returns the "LrcLib" provider: exact lookup then fuzzy search
// against LRCLIB, cached in the lrclib-lyrics namespace.
func NewProvider(settings providers.Settings, client *Client) *providers.PipelineProvider {
	pipeline := settings.NewPipeline(providers.SourceLrcLib, cache.NamespaceLrcLib, nil, client)
	return providers.NewPipelineProvider(providers.SourceLrcLib, pipeline)
}

// NewGenericProvider returns the "*" provider that closes every route. It
// runs the same stages as NewProvider with its own cache namespace.
func NewGenericProvider(settings providers.Settings, client *Client) *providers.PipelineProvider {
	pipeline := settings.NewPipeline(providers.SourceWildcard, cache.NamespaceGeneric, nil, client)
	return providers.NewPipelineProvider(providers.SourceWildcard, pipeline)
}
