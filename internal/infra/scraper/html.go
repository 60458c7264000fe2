package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML reduces an HTML fragment to whitespace-normalized plain text.
// Feed entries routinely carry markup in their descriptions; everything
// downstream (translation, classification) wants prose. Script and style
// bodies are dropped, entities decoded, whitespace collapsed.
func StripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}

	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}
