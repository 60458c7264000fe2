package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/repository"
)

type SourceRepo struct{ db *sql.DB }

func NewSourceRepo(db *sql.DB) repository.SourceRepository {
	return &SourceRepo{db: db}
}

// EnsureByName returns the named source, inserting the row on first
// encounter. The no-op DO UPDATE makes RETURNING fire on the existing row.
func (repo *SourceRepo) EnsureByName(ctx context.Context, name string) (*entity.NewsSource, error) {
	const query = `
INSERT INTO news_sources (name)
VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name, last_crawled_at`
	var source entity.NewsSource
	err := repo.db.QueryRowContext(ctx, query, name).
		Scan(&source.ID, &source.Name, &source.LastCrawledAt)
	if err != nil {
		return nil, fmt.Errorf("EnsureByName: %w", err)
	}
	return &source, nil
}

func (repo *SourceRepo) TouchCrawledAt(ctx context.Context, id int64, t time.Time) error {
	const query = `UPDATE news_sources SET last_crawled_at = $1 WHERE id = $2`
	res, err := repo.db.ExecContext(ctx, query, t, id)
	if err != nil {
		return fmt.Errorf("TouchCrawledAt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("TouchCrawledAt: no rows affected")
	}
	return nil
}
