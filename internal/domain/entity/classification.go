package entity

// DiseaseType classifies which taxonomy a disease belongs to.
type DiseaseType string

const (
	DiseaseTypeHuman      DiseaseType = "human"
	DiseaseTypeVeterinary DiseaseType = "veterinary"
	DiseaseTypeZoonotic   DiseaseType = "zoonotic"
)

// DiseaseOther is the sentinel disease name used when the classifier finds a
// disease that exists in neither taxonomy table. The free-text name travels in
// DetectedDiseaseName instead of polluting the taxonomy with fabricated rows.
const DiseaseOther = "OTHER"

// ClassificationMatch is one (article, disease, place) extraction produced by
// the classifier. Matches are ephemeral: they only exist between the
// classification and storage stages of a run. An article may yield any number
// of matches, one per country or city mentioned, and an article with zero
// matches is still stored but produces no signals.
type ClassificationMatch struct {
	// ArticleIndex is the per-batch id the prompt assigned to the article.
	ArticleIndex int

	Disease             string
	DetectedDiseaseName string
	DiseaseType         DiseaseType
	Country             string
	City                string
	CaseCount           *int
	MortalityCount      *int
	Confidence          float64
}

// IsOther reports whether the match carries the unlisted-disease sentinel.
func (m *ClassificationMatch) IsOther() bool {
	return m.Disease == DiseaseOther
}
