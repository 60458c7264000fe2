package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// rotationKey is the pipeline_state row holding the language rotation cursor.
const rotationKey = "language_rotation"

// selectLanguages picks the languages this run will query search sources in,
// wrapping around the configured set so that successive runs cover all of it.
// The cursor is persisted across runs; when state is unavailable the hour of
// day stands in so replicas without state still spread the rotation.
func (s *Service) selectLanguages(ctx context.Context) []string {
	languages := s.cfg.Languages
	if len(languages) == 0 {
		return []string{"en"}
	}

	n := s.cfg.LanguagesPerRun
	if n <= 0 {
		n = 1
	}
	if n >= len(languages) {
		return languages
	}

	counter, err := s.StateRepo.GetCounter(ctx, rotationKey)
	if err != nil {
		counter = fallbackCounter(time.Now(), len(languages), n)
		slog.Warn("rotation state unavailable, deriving cursor from clock",
			slog.Int64("counter", counter),
			slog.Any("error", err))
	}

	selected := make([]string, 0, n)
	for i := 0; i < n; i++ {
		idx := (counter + int64(i)) % int64(len(languages))
		selected = append(selected, languages[idx])
	}

	if err := s.StateRepo.SetCounter(ctx, rotationKey, counter+int64(n)); err != nil {
		slog.Warn("failed to advance rotation cursor", slog.Any("error", err))
	}

	return selected
}

// fallbackCounter maps the hour of day onto the rotation cycle: the day is
// split into one slot per full rotation pass, and each slot advances the
// cursor by the per-run count.
func fallbackCounter(now time.Time, total, perRun int) int64 {
	passes := (total + perRun - 1) / perRun
	slotHours := 24 / passes
	if slotHours < 1 {
		slotHours = 1
	}
	return int64(now.Hour() / slotHours * perRun)
}
