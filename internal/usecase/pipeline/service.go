// Package pipeline orchestrates one ingestion run: load the disease taxonomy,
// pull candidate articles from every configured source, deduplicate by URL,
// translate and classify the survivors, and hand the classification matches to
// the signal processor. Stage failures degrade (a run with zero signals is
// still a valid run); only a missing taxonomy or context cancellation aborts.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/observability/tracing"
	"outbreak-feed/internal/pkg/requestid"
	"outbreak-feed/internal/repository"
	"outbreak-feed/internal/usecase/notify"
	"outbreak-feed/internal/usecase/signal"
)

// TaxonomyLoader loads the disease reference tables at run start.
type TaxonomyLoader interface {
	Load(ctx context.Context) (*entity.Taxonomy, error)
}

// Translator English-normalizes non-English articles in place and returns
// how many were translated. Translation failures fall back to the original
// text, so there is no error path.
type Translator interface {
	TranslateAll(ctx context.Context, articles []*entity.Article) int
}

// Classifier runs the batched disease classification over the article set.
type Classifier interface {
	ClassifyBatch(ctx context.Context, articles []*entity.Article, tax *entity.Taxonomy) ([]entity.ClassificationMatch, error)
}

// ContentFetcher retrieves full article text for thin feed entries.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (string, error)
}

// SignalProcessor resolves locations and persists outbreak signals for the
// parsed classification matches.
type SignalProcessor interface {
	ProcessMatches(ctx context.Context, articles []*entity.Article, matches []entity.ClassificationMatch, tax *entity.Taxonomy) (*signal.Result, error)
}

// Config holds the tunables of a pipeline run.
type Config struct {
	// Languages is the full rotation set for search sources.
	Languages []string

	// LanguagesPerRun is how many languages one run covers.
	LanguagesPerRun int

	// FetchParallelism bounds concurrent source fetches.
	FetchParallelism int

	// ContentParallelism bounds concurrent full-text upgrades.
	ContentParallelism int

	// ContentThreshold is the minimum feed content length (in characters)
	// below which the full article text is fetched.
	ContentThreshold int

	// NotifyHighSeverity widens alert dispatch to high-severity signals in
	// addition to critical ones.
	NotifyHighSeverity bool
}

// DefaultConfig returns production defaults for a run.
func DefaultConfig() Config {
	return Config{
		Languages:          []string{"en", "es", "fr", "pt", "ar", "zh"},
		LanguagesPerRun:    2,
		FetchParallelism:   4,
		ContentParallelism: 10,
		ContentThreshold:   1500,
	}
}

// Service wires the run stages together.
type Service struct {
	Taxonomy       TaxonomyLoader
	Fetchers       map[string]SourceFetcher
	Sources        []entity.FetchSource
	ArticleRepo    repository.ArticleRepository
	SourceRepo     repository.SourceRepository
	StateRepo      repository.StateRepository
	ContentFetcher ContentFetcher
	Translator     Translator
	Classifier     Classifier
	Signals        SignalProcessor
	NotifyService  notify.Service
	cfg            Config
}

// NewService creates a pipeline Service with the provided dependencies.
// ContentFetcher, Translator and NotifyService may be nil to disable the
// corresponding stage; Taxonomy, Classifier and Signals are required.
func NewService(
	taxonomy TaxonomyLoader,
	fetchers map[string]SourceFetcher,
	sources []entity.FetchSource,
	articleRepo repository.ArticleRepository,
	sourceRepo repository.SourceRepository,
	stateRepo repository.StateRepository,
	contentFetcher ContentFetcher,
	translator Translator,
	classifier Classifier,
	signals SignalProcessor,
	notifyService notify.Service,
	cfg Config,
) *Service {
	return &Service{
		Taxonomy:       taxonomy,
		Fetchers:       fetchers,
		Sources:        sources,
		ArticleRepo:    articleRepo,
		SourceRepo:     sourceRepo,
		StateRepo:      stateRepo,
		ContentFetcher: contentFetcher,
		Translator:     translator,
		Classifier:     classifier,
		Signals:        signals,
		NotifyService:  notifyService,
		cfg:            cfg,
	}
}

// RunStats summarizes one run for logs, metrics and the trigger endpoint.
type RunStats struct {
	RunID             string                   `json:"run_id"`
	Languages         []string                 `json:"languages"`
	Sources           int                      `json:"sources"`
	SourcesFailed     int64                    `json:"sources_failed"`
	Fetched           int64                    `json:"fetched"`
	Duplicated        int64                    `json:"duplicated"`
	Unique            int                      `json:"unique"`
	Translated        int                      `json:"translated"`
	ArticlesStored    int64                    `json:"articles_stored"`
	Matches           int                      `json:"matches"`
	SignalsCreated    int64                    `json:"signals_created"`
	SkippedDuplicate  int64                    `json:"skipped_duplicate"`
	SkippedNoLocation int64                    `json:"skipped_no_location"`
	StartedAt         time.Time                `json:"started_at"`
	Duration          time.Duration            `json:"duration"`
	StageDurations    map[string]time.Duration `json:"stage_durations"`
}

// Run executes one full ingestion run. The returned stats are valid even when
// err is non-nil, describing how far the run got.
func (s *Service) Run(ctx context.Context) (*RunStats, error) {
	runID := requestid.New()
	ctx = requestid.WithRequestID(ctx, runID)
	ctx, span := tracing.GetTracer().Start(ctx, "pipeline.run")
	defer span.End()
	logger := slog.Default().With(slog.String("run_id", runID))

	stats := &RunStats{
		RunID:          runID,
		StartedAt:      time.Now(),
		StageDurations: make(map[string]time.Duration),
	}
	defer func() { stats.Duration = time.Since(stats.StartedAt) }()

	// Stage 1: taxonomy. The only stage whose failure aborts the run.
	tax, err := s.stageTaxonomy(ctx, stats)
	if err != nil {
		return stats, fmt.Errorf("Run: %w", err)
	}

	// Stage 2: language rotation and source expansion.
	stats.Languages = s.selectLanguages(ctx)
	sources := s.expandSources(stats.Languages)
	stats.Sources = len(sources)

	// Stage 3: fetch.
	fetchStart := time.Now()
	fetchCtx, fetchSpan := tracing.GetTracer().Start(ctx, "pipeline.fetch")
	articles := s.fetchAll(fetchCtx, sources, stats)
	fetchSpan.End()
	stats.StageDurations["fetch"] = time.Since(fetchStart)
	stats.Fetched = int64(len(articles))

	// Stage 4: dedup.
	dedupStart := time.Now()
	unique := s.dedupByURL(ctx, articles, stats)
	stats.StageDurations["dedup"] = time.Since(dedupStart)
	stats.Unique = len(unique)

	if len(unique) == 0 {
		logger.Info("run finished with no new articles",
			slog.Int("sources", stats.Sources),
			slog.Int64("fetched", stats.Fetched),
			slog.Int64("duplicated", stats.Duplicated))
		return stats, nil
	}

	// Stage 5: content enhancement for thin items.
	enhanceStart := time.Now()
	s.enhanceAll(ctx, unique)
	stats.StageDurations["enhance"] = time.Since(enhanceStart)

	// Stage 6: translation.
	if s.Translator != nil {
		translateStart := time.Now()
		stats.Translated = s.Translator.TranslateAll(ctx, unique)
		stats.StageDurations["translate"] = time.Since(translateStart)
	}

	// Stage 7: store articles. Unconditional: a run that classifies nothing
	// still lands the news.
	storeStart := time.Now()
	stored := s.storeArticles(ctx, unique, stats)
	stats.StageDurations["store"] = time.Since(storeStart)

	if len(stored) == 0 {
		logger.Warn("no articles could be stored, skipping classification")
		return stats, nil
	}

	// Stage 8: classification. One batched call; failure degrades to a
	// news-only run.
	classifyStart := time.Now()
	classifyCtx, classifySpan := tracing.GetTracer().Start(ctx, "pipeline.classify")
	matches, err := s.Classifier.ClassifyBatch(classifyCtx, stored, tax)
	classifySpan.End()
	stats.StageDurations["classify"] = time.Since(classifyStart)
	if err != nil {
		logger.Warn("classification failed, continuing news-only",
			slog.Int("articles", len(stored)),
			slog.Any("error", err))
		matches = nil
	}
	stats.Matches = len(matches)

	// Stage 9: signals. The classification is already paid for, so a caller
	// disconnect must not cancel these writes.
	if len(matches) > 0 {
		signalStart := time.Now()
		safeCtx := context.WithoutCancel(ctx)
		result, err := s.Signals.ProcessMatches(safeCtx, stored, matches, tax)
		stats.StageDurations["signals"] = time.Since(signalStart)
		if err != nil {
			logger.Warn("signal processing incomplete", slog.Any("error", err))
		}
		if result != nil {
			stats.SignalsCreated = result.Created
			stats.SkippedDuplicate = result.SkippedDuplicate
			stats.SkippedNoLocation = result.SkippedNoLocation
			s.notifySignals(safeCtx, result)
		}
	}

	stats.Duration = time.Since(stats.StartedAt)
	logger.Info("run completed",
		slog.Any("languages", stats.Languages),
		slog.Int("sources", stats.Sources),
		slog.Int64("sources_failed", stats.SourcesFailed),
		slog.Int64("fetched", stats.Fetched),
		slog.Int64("duplicated", stats.Duplicated),
		slog.Int("unique", stats.Unique),
		slog.Int("translated", stats.Translated),
		slog.Int64("articles_stored", stats.ArticlesStored),
		slog.Int("matches", stats.Matches),
		slog.Int64("signals_created", stats.SignalsCreated),
		slog.Int64("skipped_duplicate", stats.SkippedDuplicate),
		slog.Int64("skipped_no_location", stats.SkippedNoLocation),
		slog.Duration("duration", stats.Duration),
	)

	return stats, nil
}

func (s *Service) stageTaxonomy(ctx context.Context, stats *RunStats) (*entity.Taxonomy, error) {
	start := time.Now()
	tax, err := s.Taxonomy.Load(ctx)
	stats.StageDurations["taxonomy"] = time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}
	return tax, nil
}

// expandSources returns the effective source list for a run: feed sources
// unchanged, each search source cloned once per selected language.
func (s *Service) expandSources(languages []string) []entity.FetchSource {
	out := make([]entity.FetchSource, 0, len(s.Sources))
	for _, src := range s.Sources {
		if src.Kind != entity.SourceKindSearch {
			out = append(out, src)
			continue
		}
		for _, lang := range languages {
			clone := src
			clone.Language = lang
			out = append(out, clone)
		}
	}
	return out
}

// notifySignals dispatches alerts for newly created critical signals, plus
// high-severity ones when the run is configured for them.
func (s *Service) notifySignals(ctx context.Context, result *signal.Result) {
	if s.NotifyService == nil {
		return
	}
	for _, created := range result.Signals {
		severity := created.Signal.SeverityAssessment
		if severity != entity.SeverityCritical &&
			!(s.cfg.NotifyHighSeverity && severity == entity.SeverityHigh) {
			continue
		}
		alert := entity.SignalAlert{
			DiseaseName:  created.DiseaseName,
			CountryName:  created.CountryName,
			City:         created.Signal.City,
			Severity:     created.Signal.SeverityAssessment,
			Confidence:   created.Signal.ConfidenceScore,
			CaseCount:    created.Signal.CaseCountMentioned,
			ArticleURL:   created.ArticleURL,
			ArticleTitle: created.ArticleTitle,
		}
		if err := s.NotifyService.NotifySignal(ctx, alert); err != nil {
			slog.Warn("failed to dispatch signal alert",
				slog.String("disease", created.DiseaseName),
				slog.String("country", created.CountryName),
				slog.Any("error", err))
		}
	}
}
