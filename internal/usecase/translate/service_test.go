package translate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/infra/completion"
)

type stubCompleter struct {
	response string
	err      error
	lastReq  completion.Request
	calls    int
}

func (s *stubCompleter) Complete(_ context.Context, req completion.Request) (string, error) {
	s.calls++
	s.lastReq = req
	return s.response, s.err
}

func (s *stubCompleter) Name() string { return "stub" }

func TestTranslateAllFillsTranslatedText(t *testing.T) {
	articles := []*entity.Article{
		{Title: "Brote de dengue", Content: "Aumentan los casos en Jalisco.", Language: "es"},
		{Title: "Outbreak news", Content: "Cases rising.", Language: "en"},
	}
	stub := &stubCompleter{response: `["Dengue outbreak\nCases rising in Jalisco."]`}
	svc := NewService(stub)

	n := svc.TranslateAll(context.Background(), articles)
	if n != 1 {
		t.Fatalf("TranslateAll = %d, want 1", n)
	}
	if articles[0].TranslatedText != "Dengue outbreak\nCases rising in Jalisco." {
		t.Errorf("TranslatedText = %q", articles[0].TranslatedText)
	}
	if articles[0].OriginalText != "Aumentan los casos en Jalisco." {
		t.Errorf("OriginalText not preserved: %q", articles[0].OriginalText)
	}
	if articles[1].TranslatedText != "" {
		t.Error("English article should not be translated")
	}
	if stub.calls != 1 {
		t.Errorf("completer called %d times, want 1", stub.calls)
	}
}

func TestTranslateAllFailureKeepsOriginal(t *testing.T) {
	articles := []*entity.Article{
		{Title: "Brote", Content: "Contenido original.", Language: "es"},
	}
	svc := NewService(&stubCompleter{err: errors.New("api down")})

	n := svc.TranslateAll(context.Background(), articles)
	if n != 0 {
		t.Fatalf("TranslateAll = %d, want 0", n)
	}
	if articles[0].TranslatedText != "" {
		t.Error("failed translation must not set TranslatedText")
	}
	if articles[0].Content != "Contenido original." {
		t.Error("original content must survive a failed translation")
	}
}

func TestTranslateAllCountMismatchKeepsOriginal(t *testing.T) {
	articles := []*entity.Article{
		{Title: "a", Content: "x", Language: "fr"},
		{Title: "b", Content: "y", Language: "fr"},
	}
	svc := NewService(&stubCompleter{response: `["only one translation"]`})

	if n := svc.TranslateAll(context.Background(), articles); n != 0 {
		t.Fatalf("TranslateAll = %d, want 0 on count mismatch", n)
	}
}

func TestTranslateAllNotConfiguredStopsEarly(t *testing.T) {
	articles := []*entity.Article{
		{Title: "a", Content: "x", Language: "fr"},
		{Title: "b", Content: "y", Language: "es"},
	}
	stub := &stubCompleter{err: completion.ErrNotConfigured}
	svc := NewService(stub)

	if n := svc.TranslateAll(context.Background(), articles); n != 0 {
		t.Fatalf("TranslateAll = %d, want 0", n)
	}
	if stub.calls != 1 {
		t.Errorf("expected one probe call before giving up, got %d", stub.calls)
	}
}

func TestTranslateAllTruncatesBodyOnRuneBoundary(t *testing.T) {
	articles := []*entity.Article{
		{Title: "速報", Content: strings.Repeat("感染症の流行が拡大しています。", perItemLimit), Language: "ja"},
	}
	stub := &stubCompleter{response: `["Breaking: outbreak spreading"]`}
	svc := NewService(stub)

	if n := svc.TranslateAll(context.Background(), articles); n != 1 {
		t.Fatalf("TranslateAll = %d, want 1", n)
	}
	if !utf8.ValidString(stub.lastReq.Prompt) {
		t.Error("translation prompt contains invalid UTF-8 after truncation")
	}
	// A split rune would be coerced to U+FFFD by the JSON encoder.
	if strings.Contains(stub.lastReq.Prompt, "�") {
		t.Error("body truncation split a multi-byte character")
	}
}

func TestTranslateAllNothingToDo(t *testing.T) {
	stub := &stubCompleter{}
	svc := NewService(stub)

	articles := []*entity.Article{
		{Title: "a", Content: "x", Language: "en"},
		{Title: "b", Content: "", Language: "es"},
		{Title: "c", Content: "y", Language: "es", TranslatedText: "already done"},
	}
	if n := svc.TranslateAll(context.Background(), articles); n != 0 {
		t.Fatalf("TranslateAll = %d, want 0", n)
	}
	if stub.calls != 0 {
		t.Errorf("completer called %d times, want 0", stub.calls)
	}
}
