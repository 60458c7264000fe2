// Package notifier provides abstraction for sending outbreak signal alerts.
// It defines the Notifier interface which allows different delivery mechanisms
// (Discord, Slack, email, etc.) to be used interchangeably through dependency
// injection.
//
// The package includes implementations for Discord and Slack webhooks and a
// no-op notifier for when alerting is disabled.
package notifier

import (
	"context"

	"outbreak-feed/internal/domain/entity"
)

// Notifier is an interface for delivering outbreak signal alerts.
// Implementations should handle rate limiting, retries, and error logging internally.
type Notifier interface {
	// NotifyAlert sends one outbreak signal alert. The alert carries the
	// denormalized disease, place and article fields a message needs.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - alert: The signal alert to deliver
	//
	// Returns:
	//   - error: Non-nil if the delivery failed after all retry attempts
	//
	// Implementations should:
	//   - Generate a unique request ID for tracing
	//   - Apply rate limiting to prevent API abuse
	//   - Retry transient failures with exponential backoff
	//   - Log all attempts with the request ID for debugging
	//   - Respect context cancellation
	NotifyAlert(ctx context.Context, alert entity.SignalAlert) error
}
