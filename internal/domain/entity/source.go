package entity

import (
	"fmt"
	"strings"
	"time"
)

// Kinds of fetch source.
const (
	SourceKindRSS    = "rss"
	SourceKindSearch = "search"
)

// FetchSource describes one place the fetcher pulls candidate articles from:
// a syndicated feed identified by URL, or a query against a news-search
// aggregator. Sources come from the YAML source list plus built-in defaults;
// the pipeline adds per-language search sources each run as the language
// rotation dictates.
type FetchSource struct {
	Name     string `yaml:"name"`
	Kind     string `yaml:"kind"`
	URL      string `yaml:"url,omitempty"`
	Query    string `yaml:"query,omitempty"`
	Language string `yaml:"language,omitempty"`
}

// Validate checks the descriptor fields. An empty kind is treated as rss for
// backward compatibility with older source lists.
func (s *FetchSource) Validate() error {
	if s.Kind == "" {
		s.Kind = SourceKindRSS
	}

	if strings.TrimSpace(s.Name) == "" {
		return &ValidationError{Field: "name", Message: "source name is required"}
	}

	switch s.Kind {
	case SourceKindRSS:
		if err := ValidateURL(s.URL); err != nil {
			return fmt.Errorf("source %s: %w", s.Name, err)
		}
	case SourceKindSearch:
		if strings.TrimSpace(s.Query) == "" {
			return &ValidationError{Field: "query", Message: "search sources require a query"}
		}
	default:
		return fmt.Errorf("invalid kind: %s (must be rss or search)", s.Kind)
	}

	return nil
}

// NewsSource is a row of the news_sources lookup table joining articles to the
// provider they came from.
type NewsSource struct {
	ID            int64
	Name          string
	LastCrawledAt *time.Time
}
