// trends runs one search-interest collection from the command line and
// prints the collection summary.
package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pgRepo "outbreak-feed/internal/infra/adapter/persistence/postgres"
	sqliteRepo "outbreak-feed/internal/infra/adapter/persistence/sqlite"
	"outbreak-feed/internal/infra/db"
	trendsInfra "outbreak-feed/internal/infra/trends"
	"outbreak-feed/internal/repository"
	trendsUC "outbreak-feed/internal/usecase/trends"
)

func main() {
	var (
		regions = flag.Bool("regions", false, "include the per-country regional pass")
		output  = flag.String("output", "text", "output format: json or text")
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
		fmt.Fprintf(os.Stderr, "migrations failed: %v\n", err)
		os.Exit(1)
	}

	var trendsRepo repository.TrendsRepository
	var countryRepo repository.CountryRepository
	if db.Driver() == db.DriverSQLite {
		trendsRepo = sqliteRepo.NewTrendsRepo(database)
		countryRepo = sqliteRepo.NewCountryRepo(database)
	} else {
		trendsRepo = pgRepo.NewTrendsRepo(database)
		countryRepo = pgRepo.NewCountryRepo(database)
	}

	httpClient := &http.Client{
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

	collector, err := trendsUC.NewService(trendsInfra.FromEnv(httpClient), trendsRepo, countryRepo, trendsUC.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "trends collector: %v\n", err)
		os.Exit(1)
	}

	result, runErr := collector.Collect(ctx, *regions)
	if result != nil {
		printResult(*output, result, *regions)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "collection failed: %v\n", runErr)
		os.Exit(1)
	}
}

func printResult(format string, result *trendsUC.Result, regions bool) {
	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
		return
	}

	fmt.Printf("trends collection (%s)\n", result.Duration.Round(time.Millisecond))
	fmt.Printf("  groups:          %d (%d failed)\n", result.GroupsTried, result.GroupsFailed)
	fmt.Printf("  scores stored:   %d\n", result.ScoresStored)
	if regions {
		fmt.Printf("  regional stored: %d\n", result.RegionalStored)
	}
}
