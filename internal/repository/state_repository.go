package repository

import "context"

// StateRepository persists tiny cross-run pipeline state, currently just the
// language rotation counter.
type StateRepository interface {
	// GetCounter returns the stored value for key, or 0 when the key has
	// never been written.
	GetCounter(ctx context.Context, key string) (int64, error)
	SetCounter(ctx context.Context, key string, value int64) error
}
