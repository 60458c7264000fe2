package classify

import (
	"fmt"
	"strings"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/infra/scraper"
	"outbreak-feed/internal/utils/text"
)

// excerptLimit caps how much article text one batch entry contributes to the
// prompt, bounding token cost across large batches.
const excerptLimit = 1200

// systemPrompt fixes the output grammar. The micro-format is deliberately
// rigid: one pipe-delimited line per match, the literal string null for any
// absent optional field, so the parser can stay small and lossy-by-line.
const systemPrompt = `You are a disease outbreak surveillance analyst. You receive a reference taxonomy of tracked diseases and a batch of news articles. Identify every article that reports a disease outbreak, case, or death event.

Output a JSON array of strings, nothing else. Each string is one detected match in exactly this format:

id|disease|detected_disease_name|disease_type|country|city|case_count|mortality_count|confidence

Field rules:
- id: the numeric id of the article, as given in the batch.
- disease: the disease name exactly as written in the taxonomy. If the disease is not listed in the taxonomy, use the literal word OTHER.
- detected_disease_name: only when disease is OTHER, the disease name as mentioned in the article; otherwise null.
- disease_type: human, veterinary or zoonotic; null when unsure.
- country: the country where the event is occurring, in English; null if no country is identifiable.
- city: the city or region mentioned; null if none.
- case_count: the number of cases mentioned as a plain integer; null if none.
- mortality_count: the number of deaths mentioned as a plain integer; null if none.
- confidence: your confidence that this is a genuine current outbreak report, 0.0 to 1.0.

One line per (disease, place) pair: an article reporting the same disease in two countries yields two lines sharing the id. Articles with no outbreak content yield no lines. Never invent diseases, places or counts that the article does not mention.`

// BuildPrompt renders the user prompt for one classification batch: both
// taxonomy tables verbatim, then the articles as "id => Title ... Content"
// entries. Article ids are batch positions, which the parser maps back.
func BuildPrompt(articles []*entity.Article, tax *entity.Taxonomy) string {
	var b strings.Builder

	b.WriteString("## Disease taxonomy (human)\n")
	b.WriteString("Disease | Pathogen | Outbreak Category | PathogenType | Keywords\n")
	writeTaxonomyTable(&b, tax.Human)

	b.WriteString("\n## Disease taxonomy (veterinary)\n")
	b.WriteString("Disease | Pathogen | Outbreak Category | PathogenType | Keywords\n")
	writeTaxonomyTable(&b, tax.Veterinary)

	b.WriteString("\n## Articles\n[\n")
	for i, article := range articles {
		excerpt := text.TruncateRunes(scraper.StripHTML(article.Text()), excerptLimit)
		fmt.Fprintf(&b, "%q", fmt.Sprintf("%d => Title: %s | Content: %s", i, article.Title, excerpt))
		if i < len(articles)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("]\n")

	return b.String()
}

func writeTaxonomyTable(b *strings.Builder, entries []entity.TaxonomyEntry) {
	for _, e := range entries {
		fmt.Fprintf(b, "%s | %s | %s | %s | %s\n",
			e.Disease, e.Pathogen, e.Category, e.PathogenType,
			strings.Join(e.Keywords, ", "))
	}
}
