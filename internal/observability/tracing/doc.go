// Package tracing provides OpenTelemetry tracing integration.
//
// Spans are created around pipeline stages and HTTP requests so a slow run
// can be broken down by stage (fetch, classify, resolve, store).
//
// Example usage:
//
//	import "outbreak-feed/internal/observability/tracing"
//
//	func runStage(ctx context.Context) {
//	    ctx, span := tracing.GetTracer().Start(ctx, "pipeline.classify")
//	    defer span.End()
//	    // ... stage work ...
//	}
//
// Exporter wiring (OTLP, Jaeger) is left to the deployment; without a
// configured SDK the spans are no-ops.
package tracing
