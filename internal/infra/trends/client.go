package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"outbreak-feed/internal/observability/metrics"
	"outbreak-feed/internal/resilience/retry"
)

// maxResponseSize bounds how much of a provider response is read.
const maxResponseSize = 4 << 20

// ClientConfig holds the HTTP provider settings.
type ClientConfig struct {
	// BaseURL is the interest bridge endpoint root.
	BaseURL string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
}

// LoadClientConfig reads the provider settings from the environment.
func LoadClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL: os.Getenv("TRENDS_BASE_URL"),
		Timeout: 30 * time.Second,
	}
}

// Client is the JSON-over-HTTP interest provider.
type Client struct {
	client *http.Client
	config ClientConfig
}

// NewClient creates the HTTP provider.
func NewClient(client *http.Client, cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{client: client, config: cfg}
}

// FromEnv builds the configured provider, or the noop provider when no
// bridge URL is present.
func FromEnv(client *http.Client) Provider {
	cfg := LoadClientConfig()
	if cfg.BaseURL == "" {
		slog.Warn("TRENDS_BASE_URL not set, trends collection disabled")
		return NewNoOp()
	}
	return NewClient(client, cfg)
}

// interestOverTimeResponse is the bridge's series shape: one entry per date,
// with per-term scores.
type interestOverTimeResponse struct {
	Points []struct {
		Date   string         `json:"date"`
		Scores map[string]int `json:"scores"`
	} `json:"points"`
}

type interestByRegionResponse struct {
	Regions map[string]int `json:"regions"`
}

// InterestOverTime implements Provider.
func (c *Client) InterestOverTime(ctx context.Context, terms []string, timeframe string) (map[string][]Point, error) {
	params := url.Values{}
	params.Set("terms", strings.Join(terms, ","))
	params.Set("timeframe", timeframe)

	var decoded interestOverTimeResponse
	if err := c.get(ctx, "/interest_over_time", params, &decoded); err != nil {
		metrics.RecordTrendsError("over_time")
		return nil, fmt.Errorf("InterestOverTime: %w", err)
	}

	series := make(map[string][]Point, len(terms))
	for _, p := range decoded.Points {
		date, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			continue
		}
		for term, score := range p.Scores {
			series[term] = append(series[term], Point{Date: date, Score: score})
		}
	}
	return series, nil
}

// InterestByRegion implements Provider.
func (c *Client) InterestByRegion(ctx context.Context, term string, timeframe string) (map[string]int, error) {
	params := url.Values{}
	params.Set("term", term)
	params.Set("timeframe", timeframe)

	var decoded interestByRegionResponse
	if err := c.get(ctx, "/interest_by_region", params, &decoded); err != nil {
		metrics.RecordTrendsError("by_region")
		return nil, fmt.Errorf("InterestByRegion: %w", err)
	}
	return decoded.Regions, nil
}

// ResetSession implements Provider. The bridge rotates its upstream session;
// a failure here is logged by the caller and the next group proceeds anyway.
func (c *Client) ResetSession(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/reset", nil)
	if err != nil {
		return fmt.Errorf("ResetSession: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ResetSession: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ResetSession: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.config.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "outbreak-feed/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	// Typed so the collector's retry policy recognizes 429 and 5xx.
	if resp.StatusCode == http.StatusTooManyRequests {
		return &retry.HTTPError{StatusCode: resp.StatusCode, Message: "provider throttled"}
	}
	if resp.StatusCode != http.StatusOK {
		return &retry.HTTPError{StatusCode: resp.StatusCode, Message: "unexpected status"}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
