package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"outbreak-feed/internal/observability/metrics"
	"outbreak-feed/internal/resilience/circuitbreaker"
	"outbreak-feed/internal/resilience/retry"
)

const defaultBaseURL = "https://api.opencagedata.com/geocode/v1/json"

// maxResponseSize bounds how much of a geocoding response is read.
const maxResponseSize = 1 << 20

// OpenCageConfig holds the tunables of the HTTP geocoder.
type OpenCageConfig struct {
	// BaseURL is the geocoding endpoint. Override in tests; defaults to
	// the OpenCage API.
	BaseURL string

	// APIKey authenticates requests.
	APIKey string

	// CallInterval is the fixed delay enforced between consecutive calls.
	// The free quota allows one request per second.
	CallInterval time.Duration

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration
}

// LoadOpenCageConfig reads the geocoder settings from the environment.
func LoadOpenCageConfig() OpenCageConfig {
	cfg := OpenCageConfig{
		BaseURL:      defaultBaseURL,
		APIKey:       os.Getenv("GEOCODER_API_KEY"),
		CallInterval: time.Second,
		Timeout:      10 * time.Second,
	}
	if base := os.Getenv("GEOCODER_BASE_URL"); base != "" {
		cfg.BaseURL = base
	}
	if raw := os.Getenv("GEOCODER_CALL_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.CallInterval = d
		} else {
			slog.Warn("invalid GEOCODER_CALL_INTERVAL, using default",
				slog.String("value", raw),
				slog.Duration("default", cfg.CallInterval))
		}
	}
	return cfg
}

// OpenCage is the HTTP geocoding client. Every call waits on the shared rate
// limiter first, so concurrent resolvers cannot exceed the provider quota.
type OpenCage struct {
	client         *http.Client
	limiter        *rate.Limiter
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         OpenCageConfig
}

// NewOpenCage creates the HTTP geocoder.
func NewOpenCage(client *http.Client, cfg OpenCageConfig) *OpenCage {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.CallInterval <= 0 {
		cfg.CallInterval = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &OpenCage{
		client:         client,
		limiter:        rate.NewLimiter(rate.Every(cfg.CallInterval), 1),
		circuitBreaker: circuitbreaker.New(circuitbreaker.GeocoderConfig()),
		retryConfig:    retry.GeocoderConfig(),
		config:         cfg,
	}
}

// FromEnv builds the configured geocoder, or the noop client when no API key
// is present.
func FromEnv(client *http.Client) Geocoder {
	cfg := LoadOpenCageConfig()
	if cfg.APIKey == "" {
		slog.Warn("GEOCODER_API_KEY not set, geocoding disabled")
		return NewNoOp()
	}
	return NewOpenCage(client, cfg)
}

// openCageResponse mirrors the provider's JSON shape, reduced to the fields
// the resolver consumes.
type openCageResponse struct {
	Results []struct {
		Geometry struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"geometry"`
		Components struct {
			Country     string `json:"country"`
			CountryCode string `json:"ISO_3166-1_alpha-2"`
		} `json:"components"`
		Confidence int `json:"confidence"`
	} `json:"results"`
	Status struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"status"`
}

// Geocode resolves one place query. The limiter wait counts against the
// caller's context, so a cancelled run does not keep queueing quota.
func (g *OpenCage) Geocode(ctx context.Context, query string) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("Geocode: rate limiter: %w", err)
	}

	var result *Result
	retryErr := retry.WithBackoff(ctx, g.retryConfig, func() error {
		cbResult, err := g.circuitBreaker.Execute(func() (interface{}, error) {
			return g.doGeocode(ctx, query)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("geocoder circuit breaker open, request rejected",
					slog.String("state", g.circuitBreaker.State().String()))
				return fmt.Errorf("geocoder unavailable: circuit breaker open")
			}
			return err
		}
		result, _ = cbResult.(*Result)
		return nil
	})
	if retryErr != nil {
		return nil, fmt.Errorf("Geocode: %w", retryErr)
	}
	return result, nil
}

func (g *OpenCage) doGeocode(ctx context.Context, query string) (*Result, error) {
	requestID := uuid.New().String()

	params := url.Values{}
	params.Set("q", query)
	params.Set("key", g.config.APIKey)
	params.Set("limit", "1")
	params.Set("no_annotations", "1")

	reqCtx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, g.config.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("doGeocode: %w", err)
	}
	req.Header.Set("User-Agent", "outbreak-feed/1.0")

	start := time.Now()
	resp, err := g.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		metrics.RecordGeocodeRequest(false, duration)
		return nil, fmt.Errorf("doGeocode: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		metrics.RecordGeocodeRequest(false, duration)
		return nil, fmt.Errorf("doGeocode: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.RecordGeocodeRequest(false, duration)
		return nil, fmt.Errorf("doGeocode: status %d", resp.StatusCode)
	}

	var decoded openCageResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		metrics.RecordGeocodeRequest(false, duration)
		return nil, fmt.Errorf("doGeocode: decode: %w", err)
	}

	metrics.RecordGeocodeRequest(true, duration)

	if len(decoded.Results) == 0 {
		slog.Debug("geocoder found nothing",
			slog.String("request_id", requestID),
			slog.String("query", query))
		return nil, nil
	}

	hit := decoded.Results[0]
	return &Result{
		Latitude:    hit.Geometry.Lat,
		Longitude:   hit.Geometry.Lng,
		CountryName: hit.Components.Country,
		CountryCode: strings.ToUpper(hit.Components.CountryCode),
		Confidence:  hit.Confidence,
	}, nil
}
