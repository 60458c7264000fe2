package repository

import (
	"context"

	"outbreak-feed/internal/domain/entity"
)

// DiseaseRepository covers the disease aggregate: diseases plus the pathogen,
// category and keyword rows linked to them. Link operations are idempotent
// upserts on their composite keys, so re-running the chain is safe.
type DiseaseRepository interface {
	// GetByName looks a disease up by canonical name. Returns (nil, nil)
	// when no row exists.
	GetByName(ctx context.Context, name string) (*entity.Disease, error)
	Create(ctx context.Context, disease *entity.Disease) (int64, error)
	// UpdateDescription replaces the free-text description. Used by the
	// shared OTHER record to accumulate detected disease names.
	UpdateDescription(ctx context.Context, id int64, description string) error

	GetPathogenByName(ctx context.Context, name string) (*entity.Pathogen, error)
	CreatePathogen(ctx context.Context, pathogen *entity.Pathogen) (int64, error)
	GetCategoryByName(ctx context.Context, name string) (*entity.OutbreakCategory, error)
	CreateCategory(ctx context.Context, category *entity.OutbreakCategory) (int64, error)

	LinkPathogen(ctx context.Context, diseaseID, pathogenID int64, isPrimary bool) error
	LinkCategory(ctx context.Context, diseaseID, categoryID int64) error
	// HasCategory reports whether the disease has at least one category
	// link. Existing diseases only get a category backfilled when they have
	// none.
	HasCategory(ctx context.Context, diseaseID int64) (bool, error)
	AddKeywords(ctx context.Context, diseaseID int64, keywords []string) error
}
