package taxonomy

import (
	"fmt"
	"os"
	"time"

	"outbreak-feed/internal/domain/entity"
)

// Config holds the locations of the two published reference tables.
// There are no defaults for the URLs: a run without a taxonomy cannot
// classify anything, so missing configuration is an error, not a fallback.
type Config struct {
	// HumanURL is the CSV export URL of the human disease table.
	HumanURL string

	// VeterinaryURL is the CSV export URL of the veterinary disease table.
	VeterinaryURL string

	// Timeout is the per-request timeout for table downloads.
	// Default: 30s
	Timeout time.Duration
}

// Validate checks that both table URLs are present and safe to fetch.
func (c *Config) Validate() error {
	if c.HumanURL == "" {
		return fmt.Errorf("TAXONOMY_HUMAN_URL not set")
	}
	if c.VeterinaryURL == "" {
		return fmt.Errorf("TAXONOMY_VETERINARY_URL not set")
	}
	if err := entity.ValidateURL(c.HumanURL); err != nil {
		return fmt.Errorf("invalid TAXONOMY_HUMAN_URL: %w", err)
	}
	if err := entity.ValidateURL(c.VeterinaryURL); err != nil {
		return fmt.Errorf("invalid TAXONOMY_VETERINARY_URL: %w", err)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}

// LoadConfigFromEnv loads table locations from environment variables.
//
// Environment variables:
//   - TAXONOMY_HUMAN_URL: CSV export URL of the human table (required)
//   - TAXONOMY_VETERINARY_URL: CSV export URL of the veterinary table (required)
//   - TAXONOMY_FETCH_TIMEOUT: duration string, e.g. "30s" (default: 30s)
func LoadConfigFromEnv() (Config, error) {
	cfg := Config{
		HumanURL:      os.Getenv("TAXONOMY_HUMAN_URL"),
		VeterinaryURL: os.Getenv("TAXONOMY_VETERINARY_URL"),
		Timeout:       30 * time.Second,
	}

	if val := os.Getenv("TAXONOMY_FETCH_TIMEOUT"); val != "" {
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid TAXONOMY_FETCH_TIMEOUT: %v (expected format: '30s', '1m')", err)
		}
		cfg.Timeout = parsed
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
