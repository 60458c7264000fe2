package repository

import (
	"context"
	"time"

	"outbreak-feed/internal/domain/entity"
)

type SourceRepository interface {
	// EnsureByName returns the ID of the named source, creating the row on
	// first encounter.
	EnsureByName(ctx context.Context, name string) (*entity.NewsSource, error)
	TouchCrawledAt(ctx context.Context, id int64, t time.Time) error
}
