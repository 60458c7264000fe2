// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as Article, Disease, Country and
// OutbreakSignal, along with their validation rules and domain-specific errors.
package entity

import "time"

// Article represents a normalized news item flowing through the pipeline.
// It is created by the fetcher, enriched in place by the translator and
// classifier, and upserted once by URL so that re-runs never duplicate rows.
type Article struct {
	ID             int64
	SourceID       int64
	Title          string
	URL            string
	Content        string
	Source         string
	Language       string
	OriginalText   string
	TranslatedText string
	PublishedAt    time.Time
	CreatedAt      time.Time
}

// Text returns the text to feed into classification: the English translation
// when one exists, otherwise the plain content.
func (a *Article) Text() string {
	if a.TranslatedText != "" {
		return a.TranslatedText
	}
	return a.Content
}

// NeedsTranslation reports whether the article carries non-English text that
// has not been translated yet.
func (a *Article) NeedsTranslation() bool {
	return a.Language != "" && a.Language != "en" && a.TranslatedText == "" && a.Content != ""
}
