// Package signal turns classification matches into persisted outbreak
// signals. It owns the resolve-or-create chain for diseases, pathogens,
// categories and countries, the trailing dedup window that keeps one live
// signal per disease and place, and the severity bucketing.
package signal

import (
	"context"
	"log/slog"
	"time"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/observability/metrics"
	"outbreak-feed/internal/repository"
)

// Location is a resolved place: the canonical country plus coordinates. City
// coordinates are used when the resolver found the city, country centroid
// coordinates otherwise.
type Location struct {
	CountryName string
	CountryCode string
	Continent   string
	Latitude    float64
	Longitude   float64
}

// LocationResolver resolves free-text country and city mentions to canonical
// locations. A (nil, nil) return means the place could not be resolved and
// the match should be skipped.
type LocationResolver interface {
	Resolve(ctx context.Context, country, city string) (*Location, error)
}

// CreatedSignal pairs a stored signal with the denormalized names an alert
// needs, so notification channels never query the store.
type CreatedSignal struct {
	Signal       *entity.OutbreakSignal
	DiseaseName  string
	CountryName  string
	ArticleURL   string
	ArticleTitle string
}

// Result summarizes one ProcessMatches call.
type Result struct {
	Created           int64
	SkippedDuplicate  int64
	SkippedNoLocation int64
	SkippedNoDisease  int64
	Signals           []CreatedSignal
}

// Config holds the processor tunables.
type Config struct {
	// DedupWindow is how far back ExistsRecent looks when suppressing
	// repeat signals for the same disease and place.
	DedupWindow time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		DedupWindow: 7 * 24 * time.Hour,
	}
}

// Processor implements the signal stage of the pipeline.
type Processor struct {
	DiseaseRepo repository.DiseaseRepository
	CountryRepo repository.CountryRepository
	SignalRepo  repository.SignalRepository
	Locations   LocationResolver
	cfg         Config
}

// NewProcessor creates a Processor. All dependencies are required.
func NewProcessor(
	diseaseRepo repository.DiseaseRepository,
	countryRepo repository.CountryRepository,
	signalRepo repository.SignalRepository,
	locations LocationResolver,
	cfg Config,
) *Processor {
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = DefaultConfig().DedupWindow
	}
	return &Processor{
		DiseaseRepo: diseaseRepo,
		CountryRepo: countryRepo,
		SignalRepo:  signalRepo,
		Locations:   locations,
		cfg:         cfg,
	}
}

// ProcessMatches walks the matches of one run and persists a signal for each
// that survives location resolution and the dedup window. Failures on one
// match are logged and do not stop the others; the first error is returned
// alongside the partial result so the caller can flag the run as incomplete.
func (p *Processor) ProcessMatches(
	ctx context.Context,
	articles []*entity.Article,
	matches []entity.ClassificationMatch,
	tax *entity.Taxonomy,
) (*Result, error) {
	result := &Result{}
	var firstErr error
	keep := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	// Per-run caches so one run touching the same disease or country many
	// times resolves it once.
	diseases := make(map[string]*entity.Disease)
	countries := make(map[string]*entity.Country)

	since := time.Now().Add(-p.cfg.DedupWindow)

	for i := range matches {
		m := &matches[i]

		if m.ArticleIndex < 0 || m.ArticleIndex >= len(articles) {
			slog.Warn("match references unknown article, skipping",
				slog.Int("article_index", m.ArticleIndex),
				slog.String("disease", m.Disease))
			result.SkippedNoDisease++
			metrics.RecordSignalSkipped(metrics.SkipNoDisease)
			continue
		}
		article := articles[m.ArticleIndex]

		if m.Disease == "" {
			result.SkippedNoDisease++
			metrics.RecordSignalSkipped(metrics.SkipNoDisease)
			continue
		}

		disease, err := p.resolveDisease(ctx, m, tax, diseases)
		if err != nil {
			slog.Warn("failed to resolve disease",
				slog.String("disease", m.Disease),
				slog.Any("error", err))
			keep(err)
			continue
		}

		loc, err := p.Locations.Resolve(ctx, m.Country, m.City)
		if err != nil {
			slog.Warn("location resolution failed",
				slog.String("country", m.Country),
				slog.String("city", m.City),
				slog.Any("error", err))
			keep(err)
			continue
		}
		if loc == nil {
			result.SkippedNoLocation++
			metrics.RecordSignalSkipped(metrics.SkipNoLocation)
			continue
		}

		country, err := p.resolveCountry(ctx, loc, countries)
		if err != nil {
			slog.Warn("failed to resolve country",
				slog.String("country", loc.CountryName),
				slog.Any("error", err))
			keep(err)
			continue
		}

		var city *string
		if m.City != "" {
			c := m.City
			city = &c
		}

		exists, err := p.SignalRepo.ExistsRecent(ctx, disease.ID, country.ID, city, since)
		if err != nil {
			slog.Warn("dedup window check failed",
				slog.Int64("disease_id", disease.ID),
				slog.Int64("country_id", country.ID),
				slog.Any("error", err))
			keep(err)
			continue
		}
		if exists {
			result.SkippedDuplicate++
			metrics.RecordSignalSkipped(metrics.SkipDuplicate)
			continue
		}

		detectedAt := article.PublishedAt
		if detectedAt.IsZero() {
			detectedAt = time.Now()
		}

		sig := &entity.OutbreakSignal{
			ArticleID:           article.ID,
			DiseaseID:           disease.ID,
			CountryID:           country.ID,
			City:                city,
			Latitude:            loc.Latitude,
			Longitude:           loc.Longitude,
			ConfidenceScore:     m.Confidence,
			CaseCountMentioned:  m.CaseCount,
			SeverityAssessment:  entity.SeverityForConfidence(m.Confidence),
			DetectedAt:          detectedAt,
			DetectedDiseaseName: m.DetectedDiseaseName,
		}
		id, err := p.SignalRepo.Create(ctx, sig)
		if err != nil {
			slog.Warn("failed to create signal",
				slog.String("disease", disease.Name),
				slog.String("country", country.Name),
				slog.Any("error", err))
			keep(err)
			continue
		}
		sig.ID = id

		result.Created++
		metrics.RecordSignalCreated(sig.SeverityAssessment)
		result.Signals = append(result.Signals, CreatedSignal{
			Signal:       sig,
			DiseaseName:  disease.Name,
			CountryName:  country.Name,
			ArticleURL:   article.URL,
			ArticleTitle: article.Title,
		})

		slog.Info("outbreak signal created",
			slog.Int64("signal_id", sig.ID),
			slog.String("disease", disease.Name),
			slog.String("country", country.Name),
			slog.String("severity", sig.SeverityAssessment),
			slog.Float64("confidence", sig.ConfidenceScore))
	}

	return result, firstErr
}

// resolveCountry returns the stored country row for a resolved location,
// creating it on first encounter.
func (p *Processor) resolveCountry(ctx context.Context, loc *Location, cache map[string]*entity.Country) (*entity.Country, error) {
	if c, ok := cache[loc.CountryName]; ok {
		return c, nil
	}

	country, err := p.CountryRepo.GetByName(ctx, loc.CountryName)
	if err != nil {
		return nil, err
	}
	if country == nil {
		continent := loc.Continent
		if continent == "" {
			continent = entity.ContinentUnknown
		}
		country = &entity.Country{
			Name:      loc.CountryName,
			Code:      loc.CountryCode,
			Continent: continent,
		}
		id, err := p.CountryRepo.Create(ctx, country)
		if err != nil {
			return nil, err
		}
		country.ID = id
	}

	cache[loc.CountryName] = country
	return country, nil
}
