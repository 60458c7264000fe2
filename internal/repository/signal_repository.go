package repository

import (
	"context"
	"time"

	"outbreak-feed/internal/domain/entity"
)

type SignalRepository interface {
	// ExistsRecent reports whether a signal for the disease and country was
	// detected at or after since. A non-nil city narrows the check to rows
	// with that exact city, so two different cities in one country may both
	// carry live signals.
	ExistsRecent(ctx context.Context, diseaseID, countryID int64, city *string, since time.Time) (bool, error)
	Create(ctx context.Context, signal *entity.OutbreakSignal) (int64, error)
}
