package worker

import (
	"fmt"
	"log/slog"
	"time"

	"outbreak-feed/internal/pkg/config"
)

// WorkerConfig holds the operational settings for the worker binary: the two
// cron schedules, the run timeout, and the port for the health and trigger
// surface.
//
// Loading is fail-open: an invalid environment value falls back to the
// default with a warning and a metric, never a startup failure. A
// surveillance worker that refuses to start over one bad variable misses
// outbreaks; one running on defaults does not.
type WorkerConfig struct {
	// PipelineCronSchedule triggers ingestion runs.
	// Default: every 2 hours.
	PipelineCronSchedule string

	// TrendsCronSchedule triggers search-interest collection.
	// Default: daily at 04:15.
	TrendsCronSchedule string

	// Timezone is the IANA timezone for both schedules.
	Timezone string

	// NotifyMaxConcurrent bounds concurrent notification sends.
	NotifyMaxConcurrent int

	// RunTimeout bounds a single pipeline run.
	RunTimeout time.Duration

	// HealthPort serves liveness/readiness probes and the run trigger.
	HealthPort int
}

// DefaultConfig returns production defaults: ingestion every 2 hours and the
// trends pass once per day in a quiet hour, both in UTC.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		PipelineCronSchedule: "0 */2 * * *",
		TrendsCronSchedule:   "15 4 * * *",
		Timezone:             "UTC",
		NotifyMaxConcurrent:  10,
		RunTimeout:           30 * time.Minute,
		HealthPort:           9091,
	}
}

// Validate checks every field and aggregates the failures.
func (c *WorkerConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.PipelineCronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("pipeline cron schedule: %w", err))
	}
	if err := config.ValidateCronSchedule(c.TrendsCronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("trends cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateIntRange(c.NotifyMaxConcurrent, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("notify max concurrent: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.RunTimeout); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}
	return nil
}

// LoadConfigFromEnv loads the worker configuration from environment
// variables, falling back per field to the default when a value fails
// validation. The returned configuration is always valid; the error result
// exists only for call-site symmetry and is always nil.
//
// Environment variables:
//   - PIPELINE_CRON_SCHEDULE (default "0 */2 * * *")
//   - TRENDS_CRON_SCHEDULE   (default "15 4 * * *")
//   - WORKER_TIMEZONE        (default "UTC")
//   - NOTIFY_MAX_CONCURRENT  (default 10, range 1-50)
//   - RUN_TIMEOUT            (default 30m, range 1m-4h)
//   - WORKER_HEALTH_PORT     (default 9091, range 1024-65535)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	load := func(field string, result config.ConfigLoadResult) config.ConfigLoadResult {
		if result.FallbackApplied {
			fallbackApplied = true
			metrics.RecordValidationError(field)
			metrics.RecordFallback(field, "default")
			for _, warning := range result.Warnings {
				logger.Warn("Configuration fallback applied",
					slog.String("field", field),
					slog.String("warning", warning))
			}
		}
		return result
	}

	result := load("pipeline_cron_schedule",
		config.LoadEnvWithFallback("PIPELINE_CRON_SCHEDULE", cfg.PipelineCronSchedule, config.ValidateCronSchedule))
	cfg.PipelineCronSchedule = result.Value.(string)

	result = load("trends_cron_schedule",
		config.LoadEnvWithFallback("TRENDS_CRON_SCHEDULE", cfg.TrendsCronSchedule, config.ValidateCronSchedule))
	cfg.TrendsCronSchedule = result.Value.(string)

	result = load("timezone",
		config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone))
	cfg.Timezone = result.Value.(string)

	result = load("notify_max_concurrent",
		config.LoadEnvInt("NOTIFY_MAX_CONCURRENT", cfg.NotifyMaxConcurrent, func(v int) error {
			return config.ValidateIntRange(v, 1, 50)
		}))
	cfg.NotifyMaxConcurrent = result.Value.(int)

	result = load("run_timeout",
		config.LoadEnvDuration("RUN_TIMEOUT", cfg.RunTimeout, func(d time.Duration) error {
			return config.ValidateDuration(d, 1*time.Minute, 4*time.Hour)
		}))
	cfg.RunTimeout = result.Value.(time.Duration)

	result = load("health_port",
		config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
			return config.ValidateIntRange(v, 1024, 65535)
		}))
	cfg.HealthPort = result.Value.(int)

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
