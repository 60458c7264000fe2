// Package scraper provides fetchers for the sources the pipeline pulls
// candidate articles from: RSS/Atom feeds and a news-search aggregator.
// All fetchers share the same reliability patterns: retry with backoff
// wrapped around a named circuit breaker.
package scraper

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/resilience/circuitbreaker"
	"outbreak-feed/internal/resilience/retry"
	"outbreak-feed/internal/usecase/pipeline"

	"github.com/mmcdole/gofeed"
	"github.com/sony/gobreaker"
)

// userAgent identifies the crawler to feed hosts.
const userAgent = "OutbreakFeedBot"

// RSSFetcher implements SourceFetcher for feed sources using gofeed.
// It includes circuit breaker and retry logic for improved reliability.
type RSSFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewRSSFetcher creates a new RSSFetcher with the given HTTP client.
// It automatically configures circuit breaker and retry logic.
func NewRSSFetcher(client *http.Client) *RSSFetcher {
	return &RSSFetcher{
		client:         client,
		circuitBreaker: circuitbreaker.New(circuitbreaker.FeedFetchConfig()),
		retryConfig:    retry.FeedFetchConfig(),
	}
}

// Fetch retrieves and parses the feed named by the source descriptor.
// Returns normalized items with HTML already stripped from content.
func (f *RSSFetcher) Fetch(ctx context.Context, src entity.FetchSource) ([]pipeline.FeedItem, error) {
	var items []pipeline.FeedItem

	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		cbResult, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, src.URL)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("feed fetch circuit breaker open, request rejected",
					slog.String("service", "feed-fetch"),
					slog.String("source", src.Name),
					slog.String("state", f.circuitBreaker.State().String()))
				return err
			}
			return err
		}

		items = cbResult.([]pipeline.FeedItem)
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	return items, nil
}

// doFetch performs the actual feed fetch without retry or circuit breaker.
func (f *RSSFetcher) doFetch(ctx context.Context, feedURL string) ([]pipeline.FeedItem, error) {
	fp := gofeed.NewParser()
	fp.UserAgent = userAgent
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	items := make([]pipeline.FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		pubAt := time.Now()
		if it.PublishedParsed != nil {
			pubAt = *it.PublishedParsed
		}

		// Content preferred, Description as fallback
		content := it.Content
		if content == "" {
			content = it.Description
		}

		items = append(items, pipeline.FeedItem{
			Title:       strings.TrimSpace(it.Title),
			URL:         it.Link,
			Content:     StripHTML(content),
			PublishedAt: pubAt,
		})
	}

	return items, nil
}
