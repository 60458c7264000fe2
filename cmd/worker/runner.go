package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	workerPkg "outbreak-feed/internal/infra/worker"
	"outbreak-feed/internal/observability/slo"
	"outbreak-feed/internal/usecase/pipeline"
	trendsUC "outbreak-feed/internal/usecase/trends"
)

// ErrRunInProgress is returned when a run is triggered while another is
// already active.
var ErrRunInProgress = errors.New("a run is already in progress")

// jobRunner executes the two worker jobs. Each job is single-flight: the cron
// schedule and the HTTP trigger share the same lock, so a manual trigger
// during a scheduled run is rejected rather than queued.
type jobRunner struct {
	logger  *slog.Logger
	cfg     *workerPkg.WorkerConfig
	metrics *workerPkg.WorkerMetrics

	pipeline *pipeline.Service
	trends   *trendsUC.Service

	pipelineMu sync.Mutex
	trendsMu   sync.Mutex

	// Run history for the SLO gauges, guarded by pipelineMu.
	runs        []bool
	lastSuccess time.Time
}

// sloWindow is how many recent runs the success-ratio gauge covers.
const sloWindow = 20

func newJobRunner(logger *slog.Logger, p *pipeline.Service, t *trendsUC.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) *jobRunner {
	return &jobRunner{
		logger:   logger,
		cfg:      cfg,
		metrics:  metrics,
		pipeline: p,
		trends:   t,
	}
}

// RunPipeline executes one ingestion run under the run timeout. It returns
// ErrRunInProgress when another pipeline run holds the lock. The returned
// stats describe how far the run got even when err is non-nil.
func (r *jobRunner) RunPipeline(ctx context.Context) (*pipeline.RunStats, error) {
	if !r.pipelineMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer r.pipelineMu.Unlock()

	started := time.Now()
	r.metrics.RecordJobRun(workerPkg.JobPipeline, "started")
	r.logger.Info("pipeline run started")

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.RunTimeout)
	defer cancel()

	stats, err := r.pipeline.Run(runCtx)
	elapsed := time.Since(started)
	r.metrics.RecordJobDuration(workerPkg.JobPipeline, elapsed.Seconds())
	r.updateSLO(err == nil, elapsed)
	if err != nil {
		r.metrics.RecordJobRun(workerPkg.JobPipeline, "failure")
		r.logger.Error("pipeline run failed", slog.Any("error", err), slog.Duration("duration", elapsed))
		return stats, err
	}

	r.metrics.RecordJobRun(workerPkg.JobPipeline, "success")
	r.metrics.RecordLastSuccess(workerPkg.JobPipeline)
	r.logger.Info("pipeline run completed",
		slog.String("run_id", stats.RunID),
		slog.Int("sources", stats.Sources),
		slog.Int64("sources_failed", stats.SourcesFailed),
		slog.Int64("fetched", stats.Fetched),
		slog.Int64("duplicated", stats.Duplicated),
		slog.Int("matches", stats.Matches),
		slog.Int64("signals_created", stats.SignalsCreated),
		slog.Duration("duration", elapsed),
	)
	return stats, nil
}

// updateSLO feeds the run outcome into the SLO gauges. Called with
// pipelineMu held.
func (r *jobRunner) updateSLO(success bool, elapsed time.Duration) {
	r.runs = append(r.runs, success)
	if len(r.runs) > sloWindow {
		r.runs = r.runs[len(r.runs)-sloWindow:]
	}
	var succeeded int
	for _, ok := range r.runs {
		if ok {
			succeeded++
		}
	}
	slo.UpdateRunSuccessRatio(float64(succeeded) / float64(len(r.runs)))
	slo.UpdateRunDuration(elapsed)

	if success {
		r.lastSuccess = time.Now()
	}
	if !r.lastSuccess.IsZero() {
		slo.UpdateFreshness(time.Since(r.lastSuccess))
	}
}

// RunPipelineScheduled is the cron entry point for ingestion runs.
func (r *jobRunner) RunPipelineScheduled() {
	if _, err := r.RunPipeline(context.Background()); errors.Is(err, ErrRunInProgress) {
		r.logger.Warn("scheduled pipeline run skipped, previous run still active")
	}
}

// RunTrends executes one search-interest collection under the run timeout.
func (r *jobRunner) RunTrends(ctx context.Context) (*trendsUC.Result, error) {
	if !r.trendsMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer r.trendsMu.Unlock()

	started := time.Now()
	r.metrics.RecordJobRun(workerPkg.JobTrends, "started")
	r.logger.Info("trends collection started")

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.RunTimeout)
	defer cancel()

	withRegions := os.Getenv("TRENDS_WITH_REGIONS") == "true"
	result, err := r.trends.Collect(runCtx, withRegions)
	elapsed := time.Since(started)
	r.metrics.RecordJobDuration(workerPkg.JobTrends, elapsed.Seconds())
	if err != nil {
		r.metrics.RecordJobRun(workerPkg.JobTrends, "failure")
		r.logger.Error("trends collection failed", slog.Any("error", err), slog.Duration("duration", elapsed))
		return result, err
	}

	r.metrics.RecordJobRun(workerPkg.JobTrends, "success")
	r.metrics.RecordLastSuccess(workerPkg.JobTrends)
	r.logger.Info("trends collection completed",
		slog.Int("groups_tried", result.GroupsTried),
		slog.Int("groups_failed", result.GroupsFailed),
		slog.Int("scores_stored", result.ScoresStored),
		slog.Int("regional_stored", result.RegionalStored),
		slog.Duration("duration", elapsed),
	)
	return result, nil
}

// RunTrendsScheduled is the cron entry point for trends collection.
func (r *jobRunner) RunTrendsScheduled() {
	if _, err := r.RunTrends(context.Background()); errors.Is(err, ErrRunInProgress) {
		r.logger.Warn("scheduled trends collection skipped, previous run still active")
	}
}
