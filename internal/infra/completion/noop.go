package completion

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned by the noop client for every request.
var ErrNotConfigured = errors.New("completion provider not configured")

// NoOp is the stand-in Completer used when no AI provider is configured.
// Every call fails with ErrNotConfigured, which callers treat as "stage
// disabled" rather than an outage.
type NoOp struct{}

// NewNoOp creates a NoOp completion client.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Name implements Completer.
func (n *NoOp) Name() string { return ProviderNoop }

// Complete implements Completer by always failing.
func (n *NoOp) Complete(_ context.Context, _ Request) (string, error) {
	return "", ErrNotConfigured
}
