// Package trends provides the search-interest provider client used by the
// trends collector. There is no official API for the underlying interest
// data, so the HTTP implementation targets a self-hosted JSON bridge
// (TRENDS_BASE_URL) behind a stable interface; a noop implementation stands
// in when no bridge is configured.
package trends

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when no interest provider is configured.
var ErrUnavailable = errors.New("trends provider not configured")

// Point is one interest datapoint, scored 0-100.
type Point struct {
	Date  time.Time
	Score int
}

// Provider serves search-interest queries. Implementations throttle hard;
// callers space their requests and isolate failures per query group.
type Provider interface {
	// InterestOverTime returns the interest series per term for one group
	// of terms over the given timeframe (provider syntax, e.g. "today 1-m").
	InterestOverTime(ctx context.Context, terms []string, timeframe string) (map[string][]Point, error)

	// InterestByRegion returns per-region interest for a single term,
	// keyed by the provider's region name.
	InterestByRegion(ctx context.Context, term string, timeframe string) (map[string]int, error)

	// ResetSession tears down provider session state after throttling
	// errors so the next group starts clean.
	ResetSession(ctx context.Context) error
}
