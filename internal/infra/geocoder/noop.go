package geocoder

import "context"

// NoOp is the stand-in Geocoder used when no API key is configured. Every
// call fails with ErrUnavailable, pushing the resolver to its static
// approximate-coordinates tier.
type NoOp struct{}

// NewNoOp creates a NoOp geocoder.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Geocode implements Geocoder by always failing.
func (n *NoOp) Geocode(_ context.Context, _ string) (*Result, error) {
	return nil, ErrUnavailable
}
