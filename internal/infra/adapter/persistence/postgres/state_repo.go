package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"outbreak-feed/internal/repository"
)

type StateRepo struct{ db *sql.DB }

func NewStateRepo(db *sql.DB) repository.StateRepository {
	return &StateRepo{db: db}
}

// GetCounter returns the stored value for key, or 0 when the key has never
// been written.
func (repo *StateRepo) GetCounter(ctx context.Context, key string) (int64, error) {
	const query = `SELECT counter_value FROM pipeline_state WHERE key = $1`
	var value int64
	err := repo.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("GetCounter: %w", err)
	}
	return value, nil
}

func (repo *StateRepo) SetCounter(ctx context.Context, key string, value int64) error {
	const query = `
INSERT INTO pipeline_state (key, counter_value, updated_at)
VALUES ($1, $2, CURRENT_TIMESTAMP)
ON CONFLICT (key) DO UPDATE SET
       counter_value = EXCLUDED.counter_value,
       updated_at    = CURRENT_TIMESTAMP`
	if _, err := repo.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("SetCounter: %w", err)
	}
	return nil
}
