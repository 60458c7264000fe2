package repository

import (
	"context"

	"outbreak-feed/internal/domain/entity"
)

type ArticleRepository interface {
	// Upsert inserts the article or, when a row with the same URL already
	// exists, updates it in place. Returns the row ID either way so re-runs
	// never duplicate articles.
	Upsert(ctx context.Context, article *entity.Article) (int64, error)
	// ExistsByURLBatch checks URL existence in one round trip to avoid an
	// N+1 query per candidate article.
	ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error)
}
