package sqlite

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
// encounter.
func (repo *SourceRepo) EnsureByName(ctx context.Context, name string) (*entity.NewsSource, error) {
	const insert = `INSERT OR IGNORE INTO news_sources (name) VALUES (?)`
	if _, err := repo.db.ExecContext(ctx, insert, name); err != nil {
		return nil, fmt.Errorf("EnsureByName: ExecContext: %w", err)
	}

	const query = `
SELECT id, name, last_crawled_at
FROM news_sources
WHERE name = ?
LIMIT 1`
	var source entity.NewsSource
	err := repo.db.QueryRowContext(ctx, query, name).
		Scan(&source.ID, &source.Name, &source.LastCrawledAt)
	if err != nil {
		return nil, fmt.Errorf("EnsureByName: Scan: %w", err)
	}
	return &source, nil
}

func (repo *SourceRepo) TouchCrawledAt(ctx context.Context, id int64, t time.Time) error {
	const query = `UPDATE news_sources SET last_crawled_at = ? WHERE id = ?`
	res, err := repo.db.ExecContext(ctx, query, t, id)
	if err != nil {
		return fmt.Errorf("TouchCrawledAt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("TouchCrawledAt: no rows affected")
	}
	return nil
}
