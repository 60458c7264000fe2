// Package geocoder provides the external forward-geocoding client used by
// the location resolver. The HTTP implementation follows the OpenCage response
// shape and enforces a fixed inter-call delay to respect the provider's
// quota; a noop implementation stands in when no API key is configured.
package geocoder

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when no geocoding provider is configured. The
// location resolver treats it like any provider failure and falls through to
// the approximate-coordinates tier.
var ErrUnavailable = errors.New("geocoder not configured")

// Result is one forward-geocoding hit.
type Result struct {
	Latitude    float64
	Longitude   float64
	CountryName string
	// CountryCode is the ISO 3166-1 alpha-2 code, upper case.
	CountryCode string
	// Confidence is the provider's 0-10 precision score.
	Confidence int
}

// Geocoder resolves a free-text place query to coordinates and a structured
// country component. A (nil, nil) return means the provider answered but
// found nothing.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*Result, error)
}
