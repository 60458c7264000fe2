// Package taxonomy loads the disease reference tables the pipeline matches
// articles against. The tables are published spreadsheet exports fetched as
// CSV at the start of a run; every later stage shares the loaded copy.
package taxonomy

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/resilience/retry"
)

// Column headers expected in both tables, matched case-insensitively.
const (
	colDisease      = "disease"
	colPathogen     = "pathogen"
	colCategory     = "outbreak category"
	colPathogenType = "pathogentype"
	colKeywords     = "keywords"
)

// maxTableBytes caps a single table download. The real tables are a few
// hundred rows; anything near this limit is a misconfigured URL.
const maxTableBytes = 5 << 20

// Loader fetches and parses the reference tables.
type Loader struct {
	client      *http.Client
	cfg         Config
	retryConfig retry.Config
}

// NewLoader creates a Loader using the given HTTP client.
func NewLoader(client *http.Client, cfg Config) *Loader {
	return &Loader{
		client:      client,
		cfg:         cfg,
		retryConfig: retry.DefaultConfig(),
	}
}

// Load fetches both tables. Any failure is returned to the caller, which is
// expected to abort the run: without a taxonomy nothing downstream can
// classify, and there is no built-in fallback table.
func (l *Loader) Load(ctx context.Context) (*entity.Taxonomy, error) {
	human, err := l.fetchTable(ctx, l.cfg.HumanURL, entity.DiseaseTypeHuman)
	if err != nil {
		return nil, fmt.Errorf("Load: human table: %w", err)
	}

	veterinary, err := l.fetchTable(ctx, l.cfg.VeterinaryURL, entity.DiseaseTypeVeterinary)
	if err != nil {
		return nil, fmt.Errorf("Load: veterinary table: %w", err)
	}

	slog.Info("taxonomy loaded",
		slog.Int("human_entries", len(human)),
		slog.Int("veterinary_entries", len(veterinary)))

	return &entity.Taxonomy{Human: human, Veterinary: veterinary}, nil
}

// fetchTable downloads and parses one table, retrying transient failures.
func (l *Loader) fetchTable(ctx context.Context, url string, tableType entity.DiseaseType) ([]entity.TaxonomyEntry, error) {
	var entries []entity.TaxonomyEntry

	retryErr := retry.WithBackoff(ctx, l.retryConfig, func() error {
		result, err := l.doFetch(ctx, url, tableType)
		if err != nil {
			return err
		}
		entries = result
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	return entries, nil
}

func (l *Loader) doFetch(ctx context.Context, url string, tableType entity.DiseaseType) ([]entity.TaxonomyEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "OutbreakFeedBot")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    "taxonomy table fetch failed",
		}
	}

	return parseTable(io.LimitReader(resp.Body, maxTableBytes), tableType)
}

// parseTable decodes one CSV table. The first row is the header; column order
// is not assumed. Rows with an empty disease cell are skipped.
func parseTable(r io.Reader, tableType entity.DiseaseType) ([]entity.TaxonomyEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty table")
	}

	columns := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colDisease, colPathogen, colCategory, colPathogenType, colKeywords} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	entries := make([]entity.TaxonomyEntry, 0, len(records)-1)
	for _, record := range records[1:] {
		disease := strings.TrimSpace(cell(record, columns[colDisease]))
		if disease == "" {
			continue
		}

		entry := entity.TaxonomyEntry{
			Disease:      disease,
			Pathogen:     strings.TrimSpace(cell(record, columns[colPathogen])),
			Category:     strings.TrimSpace(cell(record, columns[colCategory])),
			PathogenType: strings.TrimSpace(cell(record, columns[colPathogenType])),
			Keywords:     splitKeywords(cell(record, columns[colKeywords])),
			Type:         tableType,
		}
		if tableType == entity.DiseaseTypeVeterinary && crossesSpecies(entry) {
			entry.Type = entity.DiseaseTypeZoonotic
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

// cell returns the field at idx, tolerating rows shorter than the header.
func cell(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return record[idx]
}

// splitKeywords splits a keyword cell on commas and semicolons, trimming
// whitespace and dropping empties.
func splitKeywords(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	})

	keywords := make([]string, 0, len(fields))
	for _, f := range fields {
		if kw := strings.TrimSpace(f); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}

// crossesSpecies reports whether a veterinary row is flagged as infecting
// humans too. The tables mark this in the category, the pathogen type, or a
// keyword, so all three are checked.
func crossesSpecies(entry entity.TaxonomyEntry) bool {
	if containsZoonotic(entry.Category) || containsZoonotic(entry.PathogenType) {
		return true
	}
	for _, kw := range entry.Keywords {
		if containsZoonotic(kw) {
			return true
		}
	}
	return false
}

func containsZoonotic(s string) bool {
	return strings.Contains(strings.ToLower(s), "zoono")
}
