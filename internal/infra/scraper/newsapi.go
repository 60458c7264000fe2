package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/resilience/circuitbreaker"
	"outbreak-feed/internal/resilience/retry"
	"outbreak-feed/internal/usecase/pipeline"

	"github.com/sony/gobreaker"
)

// NewsAPIConfig holds the news-search aggregator settings.
type NewsAPIConfig struct {
	// APIKey authenticates requests. Empty means the search source is
	// unavailable; feed sources still run.
	APIKey string

	// BaseURL is the search endpoint.
	// Default: https://newsapi.org/v2/everything
	BaseURL string

	// DaysBack bounds the search window. A disease-agnostic query over a
	// short recent window surfaces many diseases in one fetch.
	// Default: 7
	DaysBack int

	// PageSize is the number of results per request, capped at the
	// provider maximum of 100.
	// Default: 100
	PageSize int
}

// DefaultNewsAPIConfig returns production defaults for the aggregator.
func DefaultNewsAPIConfig() NewsAPIConfig {
	return NewsAPIConfig{
		BaseURL:  "https://newsapi.org/v2/everything",
		DaysBack: 7,
		PageSize: 100,
	}
}

// LoadNewsAPIConfigFromEnv loads aggregator settings from environment
// variables, falling back to defaults for anything unset or invalid.
//
// Environment variables:
//   - NEWS_API_KEY: API key (no default; unset disables search sources)
//   - NEWS_API_BASE_URL: endpoint override, mainly for tests
//   - NEWS_API_DAYS_BACK: integer (default: 7)
//   - NEWS_API_PAGE_SIZE: integer (default: 100)
func LoadNewsAPIConfigFromEnv() NewsAPIConfig {
	cfg := DefaultNewsAPIConfig()
	cfg.APIKey = os.Getenv("NEWS_API_KEY")

	if val := os.Getenv("NEWS_API_BASE_URL"); val != "" {
		cfg.BaseURL = val
	}
	if val := os.Getenv("NEWS_API_DAYS_BACK"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			cfg.DaysBack = parsed
		}
	}
	if val := os.Getenv("NEWS_API_PAGE_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			cfg.PageSize = parsed
		}
	}
	if cfg.PageSize > 100 {
		cfg.PageSize = 100
	}

	return cfg
}

// NewsAPIFetcher implements SourceFetcher for news-search sources.
// One query returns articles across many outlets, so a single descriptor
// covers diseases no curated feed mentions.
type NewsAPIFetcher struct {
	client         *http.Client
	cfg            NewsAPIConfig
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewNewsAPIFetcher creates a NewsAPIFetcher with the given HTTP client.
func NewNewsAPIFetcher(client *http.Client, cfg NewsAPIConfig) *NewsAPIFetcher {
	return &NewsAPIFetcher{
		client:         client,
		cfg:            cfg,
		circuitBreaker: circuitbreaker.New(circuitbreaker.SearchAPIConfig()),
		retryConfig:    retry.DefaultConfig(),
	}
}

// IsConfigured returns whether an API key is available.
func (f *NewsAPIFetcher) IsConfigured() bool {
	return f.cfg.APIKey != ""
}

// Fetch runs the source's query against the aggregator for the source's
// language. An unconfigured fetcher returns an error so the per-source
// boundary logs the gap instead of silently dropping coverage.
func (f *NewsAPIFetcher) Fetch(ctx context.Context, src entity.FetchSource) ([]pipeline.FeedItem, error) {
	if !f.IsConfigured() {
		return nil, errors.New("news search API key not configured")
	}

	var items []pipeline.FeedItem

	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		cbResult, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doSearch(ctx, src)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("news search circuit breaker open, request rejected",
					slog.String("service", "news-search"),
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

// newsAPIResponse mirrors the aggregator's JSON result shape.
type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		URL         string `json:"url"`
		Title       string `json:"title"`
		PublishedAt string `json:"publishedAt"`
		Content     string `json:"content"`
		Description string `json:"description"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// doSearch performs one search request without retry or circuit breaker.
func (f *NewsAPIFetcher) doSearch(ctx context.Context, src entity.FetchSource) ([]pipeline.FeedItem, error) {
	language := src.Language
	if language == "" {
		language = "en"
	}

	now := time.Now()
	params := url.Values{
		"q":        {src.Query},
		"from":     {now.AddDate(0, 0, -f.cfg.DaysBack).Format("2006-01-02")},
		"to":       {now.Format("2006-01-02")},
		"language": {language},
		"pageSize": {strconv.Itoa(f.cfg.PageSize)},
		"sortBy":   {"publishedAt"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-Api-Key", f.cfg.APIKey)
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    "news search request failed",
		}
	}

	var result newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if result.Status != "ok" {
		return nil, fmt.Errorf("news search status %q: %s", result.Status, result.Message)
	}

	items := make([]pipeline.FeedItem, 0, len(result.Articles))
	for _, a := range result.Articles {
		if a.URL == "" || a.Title == "" {
			continue
		}
		// The aggregator keeps placeholders for withdrawn articles
		if a.Title == "[Removed]" || a.URL == "https://removed.com" {
			continue
		}

		pubAt := time.Now()
		if a.PublishedAt != "" {
			if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
				pubAt = t
			}
		}

		content := a.Content
		if content == "" {
			content = a.Description
		}

		items = append(items, pipeline.FeedItem{
			Title:       a.Title,
			URL:         a.URL,
			Content:     StripHTML(content),
			Source:      a.Source.Name,
			PublishedAt: pubAt,
		})
	}

	return items, nil
}
