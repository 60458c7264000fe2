// Package translate English-normalizes non-English articles before
// classification. Articles are batched per language into one completion call;
// a failed batch keeps the original text, so translation never drops an
// article or fails the run.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/infra/completion"
	"outbreak-feed/internal/observability/metrics"
	"outbreak-feed/internal/utils/text"
)

// perItemLimit caps how much of one article body goes into a translation
// batch. Classification reads a capped excerpt anyway, so translating more
// would only burn tokens.
const perItemLimit = 2000

const systemPrompt = `You translate news snippets to English. You receive a JSON array of strings in a source language. Respond with a JSON array of the same length containing only the English translations, in the same order. No commentary, no markdown.`

// Service is the translation stage.
type Service struct {
	completer completion.Completer
}

// NewService creates the translation service.
func NewService(completer completion.Completer) *Service {
	return &Service{completer: completer}
}

// TranslateAll translates every article that needs it, grouped by language,
// and returns how many received a translation. Failures are per-batch: the
// affected articles keep their original text and classification proceeds on
// it.
func (s *Service) TranslateAll(ctx context.Context, articles []*entity.Article) int {
	byLanguage := make(map[string][]*entity.Article)
	for _, a := range articles {
		if !a.NeedsTranslation() {
			continue
		}
		byLanguage[a.Language] = append(byLanguage[a.Language], a)
	}
	if len(byLanguage) == 0 {
		return 0
	}

	translated := 0
	for language, batch := range byLanguage {
		n, err := s.translateBatch(ctx, language, batch)
		translated += n
		if err != nil {
			if errors.Is(err, completion.ErrNotConfigured) {
				slog.Debug("translation disabled, keeping original text",
					slog.String("language", language),
					slog.Int("articles", len(batch)))
				return translated
			}
			slog.Warn("translation batch failed, keeping original text",
				slog.String("language", language),
				slog.Int("articles", len(batch)),
				slog.Any("error", err))
		}
	}
	return translated
}

// translateBatch translates one language's articles in a single call.
func (s *Service) translateBatch(ctx context.Context, language string, batch []*entity.Article) (int, error) {
	items := make([]string, 0, len(batch))
	for _, a := range batch {
		body := text.TruncateRunes(a.Content, perItemLimit)
		items = append(items, a.Title+"\n"+body)
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return 0, fmt.Errorf("translateBatch: %w", err)
	}

	raw, err := s.completer.Complete(ctx, completion.Request{
		System: systemPrompt,
		Prompt: fmt.Sprintf("Source language: %s\n%s", language, payload),
	})
	if err != nil {
		metrics.RecordTranslation(false)
		return 0, fmt.Errorf("translateBatch: %w", err)
	}

	var translations []string
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	if err := json.Unmarshal([]byte(cleaned), &translations); err != nil {
		metrics.RecordTranslation(false)
		return 0, fmt.Errorf("translateBatch: decode response: %w", err)
	}
	if len(translations) != len(batch) {
		metrics.RecordTranslation(false)
		return 0, fmt.Errorf("translateBatch: got %d translations for %d articles", len(translations), len(batch))
	}

	count := 0
	for i, a := range batch {
		t := strings.TrimSpace(translations[i])
		if t == "" {
			continue
		}
		a.OriginalText = a.Content
		a.TranslatedText = t
		count++
	}
	metrics.RecordTranslation(true)

	slog.Info("translation batch completed",
		slog.String("language", language),
		slog.Int("articles", len(batch)),
		slog.Int("translated", count))

	return count, nil
}
