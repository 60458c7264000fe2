package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/repository"
)

// trendDateLayout is the canonical date key for trend rows. Dates are stored
// as text so both drivers compare them identically in the unique constraint.
const trendDateLayout = "2006-01-02"

type TrendsRepo struct{ db *sql.DB }

func NewTrendsRepo(db *sql.DB) repository.TrendsRepository {
	return &TrendsRepo{db: db}
}

// UpsertScores writes interest scores in one statement, updating on
// (disease_name, date) conflicts. Callers batch to keep statements bounded.
func (repo *TrendsRepo) UpsertScores(ctx context.Context, scores []*entity.TrendScore) error {
	if len(scores) == 0 {
		return nil
	}

	values := make([]string, len(scores))
	args := make([]any, 0, len(scores)*3)
	for i, score := range scores {
		base := i * 3
		values[i] = fmt.Sprintf("($%d, $%d, $%d)", base+1, base+2, base+3)
		args = append(args, score.Disease, score.Date.Format(trendDateLayout), score.Score)
	}
	query := `INSERT INTO disease_trends (disease_name, date, trend_score) VALUES ` +
		strings.Join(values, ", ") +
		` ON CONFLICT (disease_name, date) DO UPDATE SET trend_score = EXCLUDED.trend_score`

	if _, err := repo.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("UpsertScores: %w", err)
	}
	return nil
}

// UpsertRegionScores writes per-region scores, updating on
// (disease_name, region, date) conflicts.
func (repo *TrendsRepo) UpsertRegionScores(ctx context.Context, scores []*entity.RegionTrendScore) error {
	if len(scores) == 0 {
		return nil
	}

	values := make([]string, len(scores))
	args := make([]any, 0, len(scores)*5)
	for i, score := range scores {
		base := i * 5
		values[i] = fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5)
		args = append(args, score.Disease, score.Region, score.CountryID,
			score.Date.Format(trendDateLayout), score.Score)
	}
	query := `INSERT INTO disease_trends_regions (disease_name, region, country_id, date, trend_score) VALUES ` +
		strings.Join(values, ", ") +
		` ON CONFLICT (disease_name, region, date) DO UPDATE SET
       trend_score = EXCLUDED.trend_score,
       country_id  = EXCLUDED.country_id`

	if _, err := repo.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("UpsertRegionScores: %w", err)
	}
	return nil
}
