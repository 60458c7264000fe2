// Package completion provides the AI completion clients used by the
// classification and translation stages. It includes adapters for Claude
// (Anthropic) and OpenAI with circuit breaker and retry reliability patterns,
// request-ID logging and Prometheus metrics.
package completion

import "context"

// Request is one completion call: a system instruction plus the user prompt.
type Request struct {
	// System carries the instruction block (output grammar, taxonomy
	// context). Empty means no system message.
	System string

	// Prompt is the user message body.
	Prompt string

	// MaxTokens bounds the response size. Zero falls back to the
	// provider's configured default.
	MaxTokens int
}

// Completer is a single-shot AI completion client. Implementations handle
// their own reliability (retries, circuit breaking) and observability; the
// caller only sees the final text or error.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)

	// Name identifies the provider in logs and metrics.
	Name() string
}
