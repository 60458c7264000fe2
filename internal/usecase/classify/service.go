// Package classify implements the batched AI classification stage: it renders
// the taxonomy-plus-articles prompt, runs one completion call for the whole
// batch, and parses the pipe-delimited match lines defensively. Malformed
// lines are dropped individually; only a failed call loses the batch, and the
// pipeline degrades that to a news-only run.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/infra/completion"
	"outbreak-feed/internal/observability/metrics"
)

// Service runs the classification stage against a completion provider.
type Service struct {
	completer completion.Completer
}

// NewService creates the classification service.
func NewService(completer completion.Completer) *Service {
	return &Service{completer: completer}
}

// ClassifyBatch classifies every article in one completion call and returns
// the parsed matches. An empty batch short-circuits to no matches. Provider
// failure is returned as an error so the pipeline can log the degradation;
// unparsable individual lines are dropped silently.
func (s *Service) ClassifyBatch(ctx context.Context, articles []*entity.Article, tax *entity.Taxonomy) ([]entity.ClassificationMatch, error) {
	if len(articles) == 0 {
		return nil, nil
	}

	prompt := BuildPrompt(articles, tax)

	start := time.Now()
	raw, err := s.completer.Complete(ctx, completion.Request{
		System: systemPrompt,
		Prompt: prompt,
	})
	duration := time.Since(start)

	if err != nil {
		metrics.RecordClassificationCall(s.completer.Name(), false, duration)
		return nil, fmt.Errorf("ClassifyBatch: %w", err)
	}
	metrics.RecordClassificationCall(s.completer.Name(), true, duration)

	lines, err := decodeLines(raw)
	if err != nil {
		// The call succeeded but the envelope is not JSON we recognize.
		// That loses the batch the same way a failed call would.
		return nil, fmt.Errorf("ClassifyBatch: decode response: %w", err)
	}

	matches := make([]entity.ClassificationMatch, 0, len(lines))
	for _, line := range lines {
		m, ok := ParseLine(line, len(articles))
		if !ok {
			slog.Debug("dropped unparsable match line", slog.String("line", line))
			continue
		}
		matches = append(matches, m)
	}

	metrics.RecordClassificationMatches(len(matches))
	slog.Info("classification batch parsed",
		slog.String("provider", s.completer.Name()),
		slog.Int("articles", len(articles)),
		slog.Int("lines", len(lines)),
		slog.Int("matches", len(matches)),
		slog.Duration("duration", duration))

	return matches, nil
}

// decodeLines extracts the match lines from the model response. Accepted
// shapes: a bare JSON array of strings, or an object wrapping one (models
// drift between the two); markdown code fences are stripped first.
func decodeLines(raw string) ([]string, error) {
	cleaned := stripCodeFence(raw)

	var lines []string
	if err := json.Unmarshal([]byte(cleaned), &lines); err == nil {
		return lines, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &wrapped); err != nil {
		return nil, fmt.Errorf("response is neither a JSON array nor an object")
	}
	for _, v := range wrapped {
		trimmed := strings.TrimSpace(string(v))
		if !strings.HasPrefix(trimmed, "[") {
			continue
		}
		if err := json.Unmarshal(v, &lines); err == nil {
			return lines, nil
		}
	}
	return nil, fmt.Errorf("response object contains no string array")
}

// stripCodeFence removes a surrounding markdown code fence, with or without
// a language tag.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line ("json" etc.).
		if !strings.Contains(s[:idx], "[") && !strings.Contains(s[:idx], "{") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
