package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/observability/metrics"
)

// FeedItem is one raw item as returned by a source fetcher, before it becomes
// an Article. Source carries the publisher name when the fetcher knows it
// (search APIs do); it is empty for plain feeds.
type FeedItem struct {
	Title       string
	URL         string
	Content     string
	Source      string
	PublishedAt time.Time
}

// SourceFetcher retrieves the current items of one configured source.
// Implementations exist per source kind (feed, search API).
type SourceFetcher interface {
	Fetch(ctx context.Context, src entity.FetchSource) ([]FeedItem, error)
}

// fetchAll pulls every source in parallel and returns the combined articles.
// A failing source is logged, counted and skipped; it never aborts the run.
func (s *Service) fetchAll(ctx context.Context, sources []entity.FetchSource, stats *RunStats) []*entity.Article {
	var (
		mu       sync.Mutex
		articles []*entity.Article
	)

	fetchSem := make(chan struct{}, s.cfg.FetchParallelism)
	eg, egCtx := errgroup.WithContext(ctx)

	for _, source := range sources {
		src := source
		eg.Go(func() error {
			fetchSem <- struct{}{}
			defer func() { <-fetchSem }()

			fetched, err := s.fetchSource(egCtx, src)
			if err != nil {
				atomic.AddInt64(&stats.SourcesFailed, 1)
				metrics.RecordFetchError(src.Name, "fetch_failed")
				slog.Warn("source fetch failed",
					slog.String("source", src.Name),
					slog.String("kind", src.Kind),
					slog.String("language", src.Language),
					slog.Any("error", err))
				// Continue with other sources even if one fails
				return nil
			}

			mu.Lock()
			articles = append(articles, fetched...)
			mu.Unlock()
			return nil
		})
	}

	// Workers only return nil, so Wait can only surface a context error.
	if err := eg.Wait(); err != nil {
		slog.Warn("fetch stage interrupted", slog.Any("error", err))
	}

	return articles
}

// fetchSource fetches one source and converts its items to articles tagged
// with the persisted source row ID.
func (s *Service) fetchSource(ctx context.Context, src entity.FetchSource) ([]*entity.Article, error) {
	fetcher, ok := s.Fetchers[src.Kind]
	if !ok {
		return nil, fmt.Errorf("no fetcher registered for source kind %q", src.Kind)
	}

	start := time.Now()
	items, err := fetcher.Fetch(ctx, src)
	duration := time.Since(start)
	if err != nil {
		return nil, err
	}

	metrics.RecordFetchDuration(src.Name, duration)
	metrics.RecordArticlesFetched(src.Name, len(items))

	if len(items) == 0 {
		slog.Info("source returned no items", slog.String("source", src.Name))
		return nil, nil
	}

	row, err := s.SourceRepo.EnsureByName(ctx, src.Name)
	if err != nil {
		return nil, fmt.Errorf("ensure source row: %w", err)
	}

	safeCtx := context.WithoutCancel(ctx)
	if err := s.SourceRepo.TouchCrawledAt(safeCtx, row.ID, time.Now()); err != nil {
		slog.Warn("failed to update source crawl timestamp",
			slog.Int64("source_id", row.ID),
			slog.Any("error", err))
	}

	language := src.Language
	if language == "" {
		language = "en"
	}

	articles := make([]*entity.Article, 0, len(items))
	for _, item := range items {
		publisher := item.Source
		if publisher == "" {
			publisher = src.Name
		}
		articles = append(articles, &entity.Article{
			SourceID:    row.ID,
			Title:       item.Title,
			URL:         item.URL,
			Content:     item.Content,
			Source:      publisher,
			Language:    language,
			PublishedAt: item.PublishedAt,
			CreatedAt:   time.Now(),
		})
	}

	slog.Info("source fetched",
		slog.String("source", src.Name),
		slog.String("language", language),
		slog.Int("items", len(items)),
		slog.Duration("duration", duration))

	return articles, nil
}

// dedupByURL drops articles whose URL was already seen in this run or already
// exists in the database. The existence check runs as one batch query; if it
// fails the run proceeds unfiltered, because the URL-unique upsert still
// prevents duplicate rows and coverage beats the wasted classification cost.
func (s *Service) dedupByURL(ctx context.Context, articles []*entity.Article, stats *RunStats) []*entity.Article {
	seen := make(map[string]bool, len(articles))
	unique := make([]*entity.Article, 0, len(articles))
	for _, a := range articles {
		if a.URL == "" || seen[a.URL] {
			stats.Duplicated++
			continue
		}
		seen[a.URL] = true
		unique = append(unique, a)
	}

	if len(unique) == 0 {
		return unique
	}

	urls := make([]string, 0, len(unique))
	for _, a := range unique {
		urls = append(urls, a.URL)
	}

	existsMap, err := s.ArticleRepo.ExistsByURLBatch(ctx, urls)
	if err != nil {
		metrics.RecordFetchError("dedup", "batch_check_failed")
		slog.Warn("URL batch check failed, proceeding unfiltered",
			slog.Int("candidates", len(unique)),
			slog.Any("error", err))
		return unique
	}

	fresh := make([]*entity.Article, 0, len(unique))
	for _, a := range unique {
		if existsMap[a.URL] {
			stats.Duplicated++
			continue
		}
		fresh = append(fresh, a)
	}

	if dropped := len(unique) - len(fresh); dropped > 0 {
		metrics.RecordArticlesDeduplicated(dropped)
	}

	return fresh
}

// enhanceAll upgrades thin feed entries to full article text in parallel.
// Failures fall back to the feed content; this stage never drops an article.
func (s *Service) enhanceAll(ctx context.Context, articles []*entity.Article) {
	if s.ContentFetcher == nil {
		return
	}

	contentSem := make(chan struct{}, s.cfg.ContentParallelism)
	var wg sync.WaitGroup

	for _, article := range articles {
		a := article
		if len(a.Content) >= s.cfg.ContentThreshold {
			metrics.RecordContentFetchSkipped()
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			contentSem <- struct{}{}
			defer func() { <-contentSem }()

			start := time.Now()
			fetched, err := s.ContentFetcher.FetchContent(ctx, a.URL)
			duration := time.Since(start)
			if err != nil {
				metrics.RecordContentFetchFailed(duration)
				slog.Debug("content fetch failed, keeping feed content",
					slog.String("url", a.URL),
					slog.Any("error", err))
				return
			}

			// Only an upgrade counts; a thinner page keeps the feed text.
			if len(fetched) > len(a.Content) {
				a.Content = fetched
				metrics.RecordContentFetchSuccess(duration)
			} else {
				metrics.RecordContentFetchSkipped()
			}
		}()
	}

	wg.Wait()
}

// storeArticles upserts every article and returns those that received a row
// ID. Articles that fail to store are dropped from classification, since a
// signal row needs an article row to reference.
func (s *Service) storeArticles(ctx context.Context, articles []*entity.Article, stats *RunStats) []*entity.Article {
	stored := make([]*entity.Article, 0, len(articles))
	for _, a := range articles {
		id, err := s.ArticleRepo.Upsert(ctx, a)
		if err != nil {
			slog.Warn("failed to store article",
				slog.String("url", a.URL),
				slog.Any("error", err))
			continue
		}
		a.ID = id
		stored = append(stored, a)
		stats.ArticlesStored++
		metrics.RecordArticleStored()
	}
	return stored
}
