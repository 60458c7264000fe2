// The worker runs the ingestion pipeline and the search-interest collector on
// cron schedules, exposes Prometheus metrics and health endpoints, and accepts
// manual run triggers over HTTP.
package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	pgRepo "outbreak-feed/internal/infra/adapter/persistence/postgres"
	sqliteRepo "outbreak-feed/internal/infra/adapter/persistence/sqlite"
	"outbreak-feed/internal/infra/completion"
	"outbreak-feed/internal/infra/db"
	"outbreak-feed/internal/infra/fetcher"
	"outbreak-feed/internal/infra/geocoder"
	"outbreak-feed/internal/infra/notifier"
	"outbreak-feed/internal/infra/scraper"
	"outbreak-feed/internal/infra/sources"
	"outbreak-feed/internal/infra/taxonomy"
	trendsInfra "outbreak-feed/internal/infra/trends"
	workerPkg "outbreak-feed/internal/infra/worker"
	"outbreak-feed/internal/repository"
	"outbreak-feed/internal/usecase/classify"
	"outbreak-feed/internal/usecase/locate"
	"outbreak-feed/internal/usecase/notify"
	"outbreak-feed/internal/usecase/pipeline"
	signalUC "outbreak-feed/internal/usecase/signal"
	"outbreak-feed/internal/usecase/translate"
	trendsUC "outbreak-feed/internal/usecase/trends"
)

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("pipeline_schedule", workerConfig.PipelineCronSchedule),
		slog.String("trends_schedule", workerConfig.TrendsCronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("notify_max_concurrent", workerConfig.NotifyMaxConcurrent),
		slog.Duration("run_timeout", workerConfig.RunTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	notifyService := setupNotifyService(logger, workerConfig.NotifyMaxConcurrent)

	runner, err := buildRunner(logger, database, notifyService, workerConfig, workerMetrics)
	if err != nil {
		logger.Error("failed to build services", slog.Any("error", err))
		os.Exit(1)
	}

	startMetricsServer(ctx, logger, notifyService, runner)

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	scheduler, err := startCronWorker(logger, runner, workerConfig, healthServer)
	if err != nil {
		logger.Error("failed to start scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("shutdown signal received")
	healthServer.SetReady(false)

	// Stop scheduling new runs and let the in-flight one drain.
	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
		logger.Info("in-flight jobs drained")
	case <-time.After(workerConfig.RunTimeout):
		logger.Warn("drain timeout reached, exiting with job still running")
	}
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the configured store and applies migrations.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database, db.Driver()); err != nil {
		logger.Error("migrations failed", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// repos bundles the per-driver repository implementations.
type repos struct {
	articles  repository.ArticleRepository
	sources   repository.SourceRepository
	state     repository.StateRepository
	diseases  repository.DiseaseRepository
	countries repository.CountryRepository
	signals   repository.SignalRepository
	trends    repository.TrendsRepository
}

func buildRepos(database *sql.DB) repos {
	if db.Driver() == db.DriverSQLite {
		return repos{
			articles:  sqliteRepo.NewArticleRepo(database),
			sources:   sqliteRepo.NewSourceRepo(database),
			state:     sqliteRepo.NewStateRepo(database),
			diseases:  sqliteRepo.NewDiseaseRepo(database),
			countries: sqliteRepo.NewCountryRepo(database),
			signals:   sqliteRepo.NewSignalRepo(database),
			trends:    sqliteRepo.NewTrendsRepo(database),
		}
	}
	return repos{
		articles:  pgRepo.NewArticleRepo(database),
		sources:   pgRepo.NewSourceRepo(database),
		state:     pgRepo.NewStateRepo(database),
		diseases:  pgRepo.NewDiseaseRepo(database),
		countries: pgRepo.NewCountryRepo(database),
		signals:   pgRepo.NewSignalRepo(database),
		trends:    pgRepo.NewTrendsRepo(database),
	}
}

// buildRunner wires the pipeline service and the trends collector with all
// their dependencies.
func buildRunner(logger *slog.Logger, database *sql.DB, notifyService notify.Service, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) (*jobRunner, error) {
	r := buildRepos(database)
	httpClient := createHTTPClient()

	sourceList, err := sources.Load()
	if err != nil {
		return nil, fmt.Errorf("load source list: %w", err)
	}
	logger.Info("source list loaded", slog.Int("sources", len(sourceList)))

	taxonomyCfg, err := taxonomy.LoadConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("taxonomy configuration: %w", err)
	}
	taxonomyLoader := taxonomy.NewLoader(httpClient, taxonomyCfg)

	scraperFactory := scraper.NewScraperFactory(createFetchHTTPClient(), scraper.LoadNewsAPIConfigFromEnv())
	fetchers := scraperFactory.CreateFetchers()

	completer := completion.FromEnv()
	classifier := classify.NewService(completer)
	translator := translate.NewService(completer)

	resolver, err := locate.NewResolver(geocoder.FromEnv(httpClient))
	if err != nil {
		return nil, fmt.Errorf("location resolver: %w", err)
	}
	processor := signalUC.NewProcessor(r.diseases, r.countries, r.signals, resolver, signalUC.DefaultConfig())

	contentFetcher, contentCfg := setupContentFetcher(logger)

	pipelineCfg := pipeline.DefaultConfig()
	pipelineCfg.NotifyHighSeverity = os.Getenv("NOTIFY_HIGH_SEVERITY") == "true"
	if contentCfg.Enabled {
		pipelineCfg.ContentParallelism = contentCfg.Parallelism
		pipelineCfg.ContentThreshold = contentCfg.Threshold
	}

	pipelineService := pipeline.NewService(
		taxonomyLoader,
		fetchers,
		sourceList,
		r.articles,
		r.sources,
		r.state,
		contentFetcher,
		translator,
		classifier,
		processor,
		notifyService,
		pipelineCfg,
	)

	trendsCollector, err := trendsUC.NewService(trendsInfra.FromEnv(httpClient), r.trends, r.countries, trendsUC.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("trends collector: %w", err)
	}

	return newJobRunner(logger, pipelineService, trendsCollector, cfg, metrics), nil
}

// setupContentFetcher loads the full-text fetch configuration and creates the
// readability fetcher when enabled. A nil fetcher disables the upgrade stage.
func setupContentFetcher(logger *slog.Logger) (pipeline.ContentFetcher, fetcher.ContentFetchConfig) {
	contentCfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Error("failed to load content fetch configuration", slog.Any("error", err))
		logger.Warn("content fetching disabled due to configuration error")
		contentCfg = fetcher.DefaultConfig()
		contentCfg.Enabled = false
	}
	if !contentCfg.Enabled {
		logger.Info("content fetching disabled")
		return nil, contentCfg
	}
	logger.Info("content fetching enabled",
		slog.Int("threshold", contentCfg.Threshold),
		slog.Int("parallelism", contentCfg.Parallelism),
		slog.Duration("timeout", contentCfg.Timeout))
	return fetcher.NewReadabilityFetcher(contentCfg), contentCfg
}

// setupNotifyService assembles the enabled alert channels behind one service.
func setupNotifyService(logger *slog.Logger, maxConcurrent int) notify.Service {
	var channels []notify.Channel

	discordConfig := loadDiscordConfig(logger)
	if discordConfig.Enabled {
		channels = append(channels, notify.NewDiscordChannel(discordConfig))
		logger.Info("Discord channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Discord channel disabled")
	}

	slackConfig := loadSlackConfig(logger)
	if slackConfig.Enabled {
		channels = append(channels, notify.NewSlackChannel(slackConfig))
		logger.Info("Slack channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Slack channel disabled")
	}

	svc := notify.NewService(channels, maxConcurrent)
	logger.Info("notification service initialized",
		slog.Int("channels", len(channels)),
		slog.Int("max_concurrent", maxConcurrent))
	return svc
}

// createHTTPClient creates an HTTP client with timeouts and connection pooling.
// TLS 1.2+ is enforced.
func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// createFetchHTTPClient creates the client the feed and search fetchers share.
// It has a shorter timeout so one slow source cannot stall the fetch stage.
func createFetchHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 15 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// loadDiscordConfig loads Discord configuration from environment variables.
//
// Environment variables:
//   - DISCORD_ENABLED: Boolean flag to enable Discord notifications (default: false)
//   - DISCORD_WEBHOOK_URL: Discord webhook URL (required if enabled)
func loadDiscordConfig(logger *slog.Logger) notifier.DiscordConfig {
	enabled := os.Getenv("DISCORD_ENABLED") == "true"
	webhookURL := os.Getenv("DISCORD_WEBHOOK_URL")

	if !enabled {
		return notifier.DiscordConfig{Enabled: false}
	}

	if webhookURL == "" {
		logger.Warn("Discord webhook URL is empty, disabling notifications")
		return notifier.DiscordConfig{Enabled: false}
	}

	u, err := url.Parse(webhookURL)
	if err != nil {
		logger.Warn("invalid Discord webhook URL format, disabling notifications", slog.Any("error", err))
		return notifier.DiscordConfig{Enabled: false}
	}

	if u.Scheme != "https" {
		logger.Warn("Discord webhook URL must use HTTPS, disabling notifications")
		return notifier.DiscordConfig{Enabled: false}
	}

	if u.Host != "discord.com" {
		logger.Warn("invalid Discord webhook host, disabling notifications", slog.String("host", u.Host))
		return notifier.DiscordConfig{Enabled: false}
	}

	if !strings.HasPrefix(u.Path, "/api/webhooks/") {
		logger.Warn("invalid Discord webhook path, disabling notifications", slog.String("path", u.Path))
		return notifier.DiscordConfig{Enabled: false}
	}

	return notifier.DiscordConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    30 * time.Second,
	}
}

// loadSlackConfig loads Slack configuration from environment variables.
//
// Environment variables:
//   - SLACK_ENABLED: Boolean flag to enable Slack notifications (default: false)
//   - SLACK_WEBHOOK_URL: Slack webhook URL (required if enabled)
func loadSlackConfig(logger *slog.Logger) notifier.SlackConfig {
	enabled := os.Getenv("SLACK_ENABLED") == "true"
	webhookURL := os.Getenv("SLACK_WEBHOOK_URL")

	if !enabled {
		return notifier.SlackConfig{Enabled: false}
	}

	if webhookURL == "" {
		logger.Warn("Slack webhook URL is empty, disabling notifications")
		return notifier.SlackConfig{Enabled: false}
	}

	u, err := url.Parse(webhookURL)
	if err != nil {
		logger.Warn("invalid Slack webhook URL format, disabling notifications", slog.Any("error", err))
		return notifier.SlackConfig{Enabled: false}
	}

	if u.Scheme != "https" {
		logger.Warn("Slack webhook URL must use HTTPS, disabling notifications")
		return notifier.SlackConfig{Enabled: false}
	}

	if u.Host != "hooks.slack.com" {
		logger.Warn("invalid Slack webhook host, disabling notifications", slog.String("host", u.Host))
		return notifier.SlackConfig{Enabled: false}
	}

	if !strings.HasPrefix(u.Path, "/services/") {
		logger.Warn("invalid Slack webhook path, disabling notifications", slog.String("path", u.Path))
		return notifier.SlackConfig{Enabled: false}
	}

	return notifier.SlackConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    30 * time.Second,
	}
}

// startCronWorker schedules the two jobs and marks the worker ready.
func startCronWorker(logger *slog.Logger, runner *jobRunner, cfg *workerPkg.WorkerConfig, healthServer *workerPkg.HealthServer) (*cron.Cron, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	if _, err := c.AddFunc(cfg.PipelineCronSchedule, runner.RunPipelineScheduled); err != nil {
		return nil, fmt.Errorf("pipeline schedule: %w", err)
	}
	if _, err := c.AddFunc(cfg.TrendsCronSchedule, runner.RunTrendsScheduled); err != nil {
		return nil, fmt.Errorf("trends schedule: %w", err)
	}
	c.Start()

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.String("pipeline_schedule", cfg.PipelineCronSchedule),
		slog.String("trends_schedule", cfg.TrendsCronSchedule),
		slog.String("timezone", cfg.Timezone))
	return c, nil
}
