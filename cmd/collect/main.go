// collect runs one ingestion pass from the command line: fetch, dedup,
// translate, classify and store, then print the run summary. Useful for
// backfills and for checking a source list change before deploying it.
package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"outbreak-feed/internal/domain/entity"
	pgRepo "outbreak-feed/internal/infra/adapter/persistence/postgres"
	sqliteRepo "outbreak-feed/internal/infra/adapter/persistence/sqlite"
	"outbreak-feed/internal/infra/completion"
	"outbreak-feed/internal/infra/db"
	"outbreak-feed/internal/infra/fetcher"
	"outbreak-feed/internal/infra/geocoder"
	"outbreak-feed/internal/infra/scraper"
	"outbreak-feed/internal/infra/sources"
	"outbreak-feed/internal/infra/taxonomy"
	"outbreak-feed/internal/repository"
	"outbreak-feed/internal/usecase/classify"
	"outbreak-feed/internal/usecase/locate"
	"outbreak-feed/internal/usecase/pipeline"
	signalUC "outbreak-feed/internal/usecase/signal"
	"outbreak-feed/internal/usecase/translate"
)

func main() {
	var (
		sourcesFlag   = flag.String("sources", "", "comma-separated source names to run (default: all)")
		languagesFlag = flag.String("languages", "", "comma-separated language codes for search sources (default: rotation)")
		dryRun        = flag.Bool("dry-run", false, "classify but skip signal inserts")
		output        = flag.String("output", "text", "output format: json or text")
	)
	flag.Parse()

	if *output != "json" && *output != "text" {
		fmt.Fprintf(os.Stderr, "invalid --output %q (must be json or text)\n", *output)
		os.Exit(2)
	}

	logLevel := slog.LevelWarn
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database := db.Open()
	defer database.Close()
	if err := db.MigrateUp(database, db.Driver()); err != nil {
		fatal("migrations failed: %v", err)
	}

	svc, err := buildPipeline(logger, database, *sourcesFlag, *languagesFlag, *dryRun)
	if err != nil {
		fatal("%v", err)
	}

	stats, runErr := svc.Run(ctx)
	if stats != nil {
		printStats(*output, stats, *dryRun)
	}
	if runErr != nil {
		fatal("run failed: %v", runErr)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func buildPipeline(logger *slog.Logger, database *sql.DB, sourcesFlag, languagesFlag string, dryRun bool) (*pipeline.Service, error) {
	sourceList, err := sources.Load()
	if err != nil {
		return nil, fmt.Errorf("load source list: %w", err)
	}
	if sourcesFlag != "" {
		sourceList, err = filterSources(sourceList, sourcesFlag)
		if err != nil {
			return nil, err
		}
	}

	httpClient := newHTTPClient(30 * time.Second)

	taxonomyCfg, err := taxonomy.LoadConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("taxonomy configuration: %w", err)
	}

	fetchers := scraper.NewScraperFactory(newHTTPClient(15*time.Second), scraper.LoadNewsAPIConfigFromEnv()).CreateFetchers()

	completer := completion.FromEnv()

	var processor pipeline.SignalProcessor
	if dryRun {
		processor = dryRunProcessor{logger: logger}
	} else {
		r := buildRepos(database)
		resolver, err := locate.NewResolver(geocoder.FromEnv(httpClient))
		if err != nil {
			return nil, fmt.Errorf("location resolver: %w", err)
		}
		processor = signalUC.NewProcessor(r.diseases, r.countries, r.signals, resolver, signalUC.DefaultConfig())
	}

	var contentFetcher pipeline.ContentFetcher
	contentCfg, err := fetcher.LoadConfigFromEnv()
	if err != nil {
		logger.Warn("content fetching disabled due to configuration error", slog.Any("error", err))
	} else if contentCfg.Enabled {
		contentFetcher = fetcher.NewReadabilityFetcher(contentCfg)
	}

	pipelineCfg := pipeline.DefaultConfig()
	if languagesFlag != "" {
		langs := splitTrim(languagesFlag)
		pipelineCfg.Languages = langs
		pipelineCfg.LanguagesPerRun = len(langs)
	}

	r := buildRepos(database)
	return pipeline.NewService(
		taxonomy.NewLoader(httpClient, taxonomyCfg),
		fetchers,
		sourceList,
		r.articles,
		r.sources,
		r.state,
		contentFetcher,
		translate.NewService(completer),
		classify.NewService(completer),
		processor,
		nil,
		pipelineCfg,
	), nil
}

// dryRunProcessor logs each classification match instead of persisting a
// signal, so a run can be inspected without touching the signal table.
type dryRunProcessor struct {
	logger *slog.Logger
}

func (p dryRunProcessor) ProcessMatches(ctx context.Context, articles []*entity.Article, matches []entity.ClassificationMatch, tax *entity.Taxonomy) (*signalUC.Result, error) {
	for _, m := range matches {
		p.logger.Info("dry-run match",
			slog.String("disease", m.Disease),
			slog.String("country", m.Country),
			slog.String("city", m.City))
	}
	return &signalUC.Result{}, nil
}

func filterSources(list []entity.FetchSource, names string) ([]entity.FetchSource, error) {
	wanted := make(map[string]bool)
	for _, name := range splitTrim(names) {
		wanted[name] = true
	}
	var out []entity.FetchSource
	for _, src := range list {
		if wanted[src.Name] {
			out = append(out, src)
			delete(wanted, src.Name)
		}
	}
	if len(wanted) > 0 {
		var missing []string
		for name := range wanted {
			missing = append(missing, name)
		}
		return nil, fmt.Errorf("unknown sources: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// repos bundles the per-driver repository implementations.
type repos struct {
	articles  repository.ArticleRepository
	sources   repository.SourceRepository
	state     repository.StateRepository
	diseases  repository.DiseaseRepository
	countries repository.CountryRepository
	signals   repository.SignalRepository
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
		}
	}
	return repos{
		articles:  pgRepo.NewArticleRepo(database),
		sources:   pgRepo.NewSourceRepo(database),
		state:     pgRepo.NewStateRepo(database),
		diseases:  pgRepo.NewDiseaseRepo(database),
		countries: pgRepo.NewCountryRepo(database),
		signals:   pgRepo.NewSignalRepo(database),
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
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

func splitTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printStats(format string, stats *pipeline.RunStats, dryRun bool) {
	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(stats)
		return
	}

	fmt.Printf("run %s (%s)\n", stats.RunID, stats.Duration.Round(time.Millisecond))
	fmt.Printf("  languages:        %s\n", strings.Join(stats.Languages, ", "))
	fmt.Printf("  sources:          %d (%d failed)\n", stats.Sources, stats.SourcesFailed)
	fmt.Printf("  fetched:          %d\n", stats.Fetched)
	fmt.Printf("  duplicated:       %d\n", stats.Duplicated)
	fmt.Printf("  stored:           %d\n", stats.ArticlesStored)
	fmt.Printf("  translated:       %d\n", stats.Translated)
	fmt.Printf("  matches:          %d\n", stats.Matches)
	if dryRun {
		fmt.Println("  signals:          skipped (dry run)")
	} else {
		fmt.Printf("  signals created:  %d (%d duplicate, %d no location)\n",
			stats.SignalsCreated, stats.SkippedDuplicate, stats.SkippedNoLocation)
	}
}
