package scraper

import (
	"net/http"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/usecase/pipeline"
)

// ScraperFactory creates the fetcher for each source kind.
// It provides a centralized way to instantiate fetchers with consistent configuration.
type ScraperFactory struct {
	client  *http.Client
	newsCfg NewsAPIConfig
}

// NewScraperFactory creates a new ScraperFactory with the given HTTP client.
// The HTTP client should be configured with appropriate timeouts and security settings.
func NewScraperFactory(client *http.Client, newsCfg NewsAPIConfig) *ScraperFactory {
	return &ScraperFactory{client: client, newsCfg: newsCfg}
}

// CreateFetchers creates and returns a map of all available fetchers keyed by
// source kind. This map is used by the pipeline to route each descriptor to
// the matching fetcher.
func (f *ScraperFactory) CreateFetchers() map[string]pipeline.SourceFetcher {
	return map[string]pipeline.SourceFetcher{
		entity.SourceKindRSS:    NewRSSFetcher(f.client),
		entity.SourceKindSearch: NewNewsAPIFetcher(f.client, f.newsCfg),
	}
}
