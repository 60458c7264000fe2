// Package trends collects search-interest scores for the tracked disease
// set. Diseases are queried in small groups with fixed pauses between
// requests because the upstream provider throttles aggressively; a group
// that keeps failing is skipped, never fatal. The regional pass resolves
// provider region names against the countries table before storage.
package trends

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/infra/trends"
	"outbreak-feed/internal/observability/metrics"
	"outbreak-feed/internal/repository"
	"outbreak-feed/internal/resilience/retry"
)

// Config holds the collector tunables.
type Config struct {
	// Diseases is the tracked term list.
	Diseases []string

	// GroupSize is how many terms share one provider request.
	GroupSize int

	// Timeframe is the provider's window syntax.
	Timeframe string

	// RequestDelay is the pause between consecutive provider requests.
	RequestDelay time.Duration

	// UpsertBatchSize bounds one storage statement.
	UpsertBatchSize int

	// Retry is the per-group retry policy.
	Retry retry.Config
}

// DefaultConfig returns production defaults: the 20 tracked diseases in
// groups of 5 over a one-month window, 2s between requests.
func DefaultConfig() Config {
	return Config{
		Diseases: []string{
			"Dengue", "Cholera", "Measles", "Malaria", "Ebola",
			"Mpox", "Influenza", "COVID-19", "Zika", "Yellow Fever",
			"Typhoid", "Hepatitis A", "Meningitis", "Polio", "Rabies",
			"Lassa Fever", "Chikungunya", "Leptospirosis", "Diphtheria", "Plague",
		},
		GroupSize:       5,
		Timeframe:       "today 1-m",
		RequestDelay:    2 * time.Second,
		UpsertBatchSize: 100,
		Retry:           retry.TrendsConfig(),
	}
}

// Result summarizes one collection run.
type Result struct {
	GroupsTried    int           `json:"groups_tried"`
	GroupsFailed   int           `json:"groups_failed"`
	ScoresStored   int           `json:"scores_stored"`
	RegionalStored int           `json:"regional_stored"`
	Duration       time.Duration `json:"duration"`
}

// Service is the trends collection stage.
type Service struct {
	provider    trends.Provider
	trendsRepo  repository.TrendsRepository
	countryRepo repository.CountryRepository
	regionMap   map[string]string
	cfg         Config
}

// NewService creates the collector. countryRepo may be nil when the regional
// pass is never used.
func NewService(provider trends.Provider, trendsRepo repository.TrendsRepository, countryRepo repository.CountryRepository, cfg Config) (*Service, error) {
	if cfg.GroupSize <= 0 {
		cfg.GroupSize = DefaultConfig().GroupSize
	}
	if cfg.UpsertBatchSize <= 0 {
		cfg.UpsertBatchSize = DefaultConfig().UpsertBatchSize
	}
	if cfg.Timeframe == "" {
		cfg.Timeframe = DefaultConfig().Timeframe
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = retry.TrendsConfig()
	}
	regionMap, err := loadRegionMap()
	if err != nil {
		return nil, fmt.Errorf("NewService: %w", err)
	}
	return &Service{
		provider:    provider,
		trendsRepo:  trendsRepo,
		countryRepo: countryRepo,
		regionMap:   regionMap,
		cfg:         cfg,
	}, nil
}

// Collect runs the interest-over-time pass for every disease group and, when
// withRegions is set, the per-disease regional pass. Group failures are
// isolated; the returned error is only a context cancellation.
func (s *Service) Collect(ctx context.Context, withRegions bool) (*Result, error) {
	start := time.Now()
	result := &Result{}
	defer func() { result.Duration = time.Since(start) }()

	for _, group := range s.groups() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.GroupsTried++

		series, err := s.fetchGroup(ctx, group)
		if err != nil {
			result.GroupsFailed++
			slog.Warn("trend group failed, skipping",
				slog.Any("group", group),
				slog.Any("error", err))
			continue
		}

		stored, err := s.storeSeries(ctx, series)
		if err != nil {
			slog.Warn("failed to store trend scores", slog.Any("error", err))
		}
		result.ScoresStored += stored

		s.pause(ctx)
	}

	if withRegions {
		stored := s.collectRegions(ctx, result)
		result.RegionalStored = stored
	}

	slog.Info("trends collection completed",
		slog.Int("groups_tried", result.GroupsTried),
		slog.Int("groups_failed", result.GroupsFailed),
		slog.Int("scores_stored", result.ScoresStored),
		slog.Int("regional_stored", result.RegionalStored),
		slog.Duration("duration", result.Duration))

	return result, nil
}

// groups splits the disease list into provider-request groups.
func (s *Service) groups() [][]string {
	var out [][]string
	for i := 0; i < len(s.cfg.Diseases); i += s.cfg.GroupSize {
		end := i + s.cfg.GroupSize
		if end > len(s.cfg.Diseases) {
			end = len(s.cfg.Diseases)
		}
		out = append(out, s.cfg.Diseases[i:end])
	}
	return out
}

// fetchGroup queries one group with the throttle-aware retry policy: a long
// flat pause and a session reset between attempts.
func (s *Service) fetchGroup(ctx context.Context, group []string) (map[string][]trends.Point, error) {
	var series map[string][]trends.Point
	err := retry.WithBackoff(ctx, s.cfg.Retry, func() error {
		got, err := s.provider.InterestOverTime(ctx, group, s.cfg.Timeframe)
		if err != nil {
			if resetErr := s.provider.ResetSession(ctx); resetErr != nil {
				slog.Debug("session reset failed", slog.Any("error", resetErr))
			}
			return err
		}
		series = got
		return nil
	})
	return series, err
}

// storeSeries converts one group's series into rows and upserts them in
// bounded batches.
func (s *Service) storeSeries(ctx context.Context, series map[string][]trends.Point) (int, error) {
	var rows []*entity.TrendScore
	for disease, points := range series {
		for _, p := range points {
			rows = append(rows, &entity.TrendScore{
				Disease: disease,
				Date:    p.Date,
				Score:   p.Score,
			})
		}
	}

	stored := 0
	for start := 0; start < len(rows); start += s.cfg.UpsertBatchSize {
		end := start + s.cfg.UpsertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := s.trendsRepo.UpsertScores(ctx, rows[start:end]); err != nil {
			return stored, fmt.Errorf("storeSeries: %w", err)
		}
		stored += end - start
	}
	metrics.RecordTrendScores("over_time", stored)
	return stored, nil
}

// collectRegions runs the per-disease regional pass. Today's date stamps the
// rows; the provider reports a current-window aggregate, not a series.
func (s *Service) collectRegions(ctx context.Context, result *Result) int {
	stored := 0
	today := time.Now().Truncate(24 * time.Hour)

	for _, disease := range s.cfg.Diseases {
		if err := ctx.Err(); err != nil {
			return stored
		}

		regions, err := s.provider.InterestByRegion(ctx, disease, s.cfg.Timeframe)
		if err != nil {
			result.GroupsFailed++
			slog.Warn("regional trend query failed, skipping disease",
				slog.String("disease", disease),
				slog.Any("error", err))
			s.pause(ctx)
			continue
		}

		var rows []*entity.RegionTrendScore
		for region, score := range regions {
			if score <= 0 {
				continue
			}
			name := s.normalizeRegion(region)
			row := &entity.RegionTrendScore{
				Disease: disease,
				Region:  name,
				Date:    today,
				Score:   score,
			}
			if s.countryRepo != nil {
				if country, err := s.countryRepo.GetByName(ctx, name); err == nil && country != nil {
					row.CountryID = &country.ID
				}
			}
			rows = append(rows, row)
		}

		for start := 0; start < len(rows); start += s.cfg.UpsertBatchSize {
			end := start + s.cfg.UpsertBatchSize
			if end > len(rows) {
				end = len(rows)
			}
			if err := s.trendsRepo.UpsertRegionScores(ctx, rows[start:end]); err != nil {
				slog.Warn("failed to store regional trend scores",
					slog.String("disease", disease),
					slog.Any("error", err))
				break
			}
			stored += end - start
		}

		s.pause(ctx)
	}

	metrics.RecordTrendScores("by_region", stored)
	return stored
}

// pause sleeps the inter-request delay, returning early on cancellation.
func (s *Service) pause(ctx context.Context) {
	if s.cfg.RequestDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(s.cfg.RequestDelay):
	}
}
