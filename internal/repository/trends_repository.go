package repository

import (
	"context"

	"outbreak-feed/internal/domain/entity"
)

type TrendsRepository interface {
	// UpsertScores writes interest scores, updating on (disease, date)
	// conflicts. Callers batch to keep statements bounded.
	UpsertScores(ctx context.Context, scores []*entity.TrendScore) error
	// UpsertRegionScores writes per-region scores, updating on
	// (disease, region, date) conflicts.
	UpsertRegionScores(ctx context.Context, scores []*entity.RegionTrendScore) error
}
