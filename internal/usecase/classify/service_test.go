package classify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/infra/completion"
)

// stubCompleter returns a canned response and records the request it saw.
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

func testTaxonomy() *entity.Taxonomy {
	return &entity.Taxonomy{
		Human: []entity.TaxonomyEntry{
			{Disease: "Dengue", Pathogen: "Dengue virus", Category: "Vector-borne", PathogenType: "virus", Keywords: []string{"dengue", "DENV"}, Type: entity.DiseaseTypeHuman},
			{Disease: "Cholera", Pathogen: "Vibrio cholerae", Category: "Waterborne", PathogenType: "bacteria", Keywords: []string{"cholera"}, Type: entity.DiseaseTypeHuman},
		},
		Veterinary: []entity.TaxonomyEntry{
			{Disease: "Avian Influenza", Pathogen: "H5N1", Category: "Zoonotic", PathogenType: "virus", Keywords: []string{"bird flu"}, Type: entity.DiseaseTypeZoonotic},
		},
	}
}

func testArticles() []*entity.Article {
	return []*entity.Article{
		{Title: "Mexico: Dengue cases rise in Jalisco", Content: "Officials report 42 dengue cases.", PublishedAt: time.Now()},
		{Title: "Market news", Content: "Stocks were mixed on Friday.", PublishedAt: time.Now()},
	}
}

func TestClassifyBatchParsesMatches(t *testing.T) {
	stub := &stubCompleter{
		response: `["0|Dengue|null|human|Mexico|Jalisco|42|null|0.8"]`,
	}
	svc := NewService(stub)

	matches, err := svc.ClassifyBatch(context.Background(), testArticles(), testTaxonomy())
	if err != nil {
		t.Fatalf("ClassifyBatch returned error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}

	m := matches[0]
	if m.ArticleIndex != 0 || m.Disease != "Dengue" || m.Country != "Mexico" || m.City != "Jalisco" {
		t.Errorf("unexpected match: %+v", m)
	}
	if m.CaseCount == nil || *m.CaseCount != 42 {
		t.Errorf("CaseCount = %v, want 42", m.CaseCount)
	}
	if m.Confidence != 0.8 {
		t.Errorf("Confidence = %v, want 0.8", m.Confidence)
	}
}

func TestClassifyBatchDropsMalformedLineKeepsRest(t *testing.T) {
	// One well-formed line plus one line missing its trailing fields must
	// yield exactly one match: not zero, and no crash.
	stub := &stubCompleter{
		response: `["0|Dengue|null|human|Mexico|Jalisco|42|null|0.8", "1|Cholera|Haiti|null|120|8"]`,
	}
	svc := NewService(stub)

	matches, err := svc.ClassifyBatch(context.Background(), testArticles(), testTaxonomy())
	if err != nil {
		t.Fatalf("ClassifyBatch returned error: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want exactly 1", len(matches))
	}
	if matches[0].Disease != "Dengue" {
		t.Errorf("surviving match disease = %q, want Dengue", matches[0].Disease)
	}
}

func TestClassifyBatchAcceptsWrappedAndFencedResponses(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{
			name:     "object wrapping the array",
			response: `{"matches": ["0|Dengue|null|human|Mexico|null|null|null|0.7"]}`,
		},
		{
			name:     "markdown fenced array",
			response: "```json\n[\"0|Dengue|null|human|Mexico|null|null|null|0.7\"]\n```",
		},
		{
			name:     "fence without language tag",
			response: "```\n[\"0|Dengue|null|human|Mexico|null|null|null|0.7\"]\n```",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&stubCompleter{response: tt.response})
			matches, err := svc.ClassifyBatch(context.Background(), testArticles(), testTaxonomy())
			if err != nil {
				t.Fatalf("ClassifyBatch returned error: %v", err)
			}
			if len(matches) != 1 {
				t.Fatalf("got %d matches, want 1", len(matches))
			}
		})
	}
}

func TestClassifyBatchProviderFailure(t *testing.T) {
	svc := NewService(&stubCompleter{err: errors.New("api down")})

	matches, err := svc.ClassifyBatch(context.Background(), testArticles(), testTaxonomy())
	if err == nil {
		t.Fatal("expected error from failed provider")
	}
	if matches != nil {
		t.Errorf("got %d matches, want none", len(matches))
	}
}

func TestClassifyBatchUnparsableEnvelope(t *testing.T) {
	svc := NewService(&stubCompleter{response: "No outbreaks found this week."})

	if _, err := svc.ClassifyBatch(context.Background(), testArticles(), testTaxonomy()); err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}

func TestClassifyBatchEmptyBatchSkipsCall(t *testing.T) {
	stub := &stubCompleter{}
	svc := NewService(stub)

	matches, err := svc.ClassifyBatch(context.Background(), nil, testTaxonomy())
	if err != nil {
		t.Fatalf("ClassifyBatch returned error: %v", err)
	}
	if matches != nil {
		t.Errorf("expected no matches for empty batch")
	}
	if stub.calls != 0 {
		t.Errorf("completer called %d times for empty batch, want 0", stub.calls)
	}
}

func TestBuildPromptContainsTaxonomyAndArticles(t *testing.T) {
	articles := testArticles()
	prompt := BuildPrompt(articles, testTaxonomy())

	for _, want := range []string{"Dengue", "Vibrio cholerae", "Avian Influenza", "bird flu"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing taxonomy content %q", want)
		}
	}
	if !strings.Contains(prompt, "0 => Title: Mexico: Dengue cases rise in Jalisco") {
		t.Errorf("prompt missing first article entry")
	}
	if !strings.Contains(prompt, "1 => Title: Market news") {
		t.Errorf("prompt missing second article entry")
	}
}

func TestBuildPromptCapsExcerptAndPrefersTranslation(t *testing.T) {
	long := strings.Repeat("x", excerptLimit*2)
	articles := []*entity.Article{
		{Title: "t", Content: long},
		{Title: "u", Content: "texto original", TranslatedText: "translated text", Language: "es"},
	}
	prompt := BuildPrompt(articles, testTaxonomy())

	if strings.Contains(prompt, strings.Repeat("x", excerptLimit+1)) {
		t.Error("excerpt not capped to the character budget")
	}
	if !strings.Contains(prompt, "translated text") {
		t.Error("prompt does not prefer translated text")
	}
	if strings.Contains(prompt, "texto original") {
		t.Error("prompt leaked the untranslated text")
	}
}

func TestBuildPromptTruncatesExcerptOnRuneBoundary(t *testing.T) {
	articles := []*entity.Article{
		{Title: "感染症の流行", Content: strings.Repeat("感染症の流行が拡大しています。", excerptLimit)},
	}

	prompt := BuildPrompt(articles, testTaxonomy())
	if !utf8.ValidString(prompt) {
		t.Error("prompt contains invalid UTF-8 after excerpt truncation")
	}
	// A split rune would surface as a \x escape once the entry is quoted.
	if strings.Contains(prompt, `\x`) {
		t.Error("excerpt truncation split a multi-byte character")
	}
}
