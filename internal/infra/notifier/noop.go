package notifier

import (
	"context"

	"outbreak-feed/internal/domain/entity"
)

// NoOpNotifier is a no-operation implementation of the Notifier interface.
// It is used when alerting is disabled to avoid null checks in the code.
// This follows the Null Object pattern.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier instance.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// NotifyAlert does nothing and returns nil immediately.
// This allows the alerting feature to be disabled without changing the code flow.
func (n *NoOpNotifier) NotifyAlert(ctx context.Context, alert entity.SignalAlert) error {
	// No-op: intentionally does nothing
	return nil
}
