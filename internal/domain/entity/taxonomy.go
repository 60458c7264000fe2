package entity

import "strings"

// TaxonomyEntry is one row of a disease reference table: the canonical disease
// name plus the pathogen, outbreak category, pathogen type and match keywords
// associated with it.
type TaxonomyEntry struct {
	Disease      string
	Pathogen     string
	Category     string
	PathogenType string
	Keywords     []string
	Type         DiseaseType
}

// Taxonomy is the pair of reference tables (human and veterinary) loaded once
// per run and shared read-only across the pipeline stages.
type Taxonomy struct {
	Human      []TaxonomyEntry
	Veterinary []TaxonomyEntry
}

// Find looks up a disease by name, first exact and then case-insensitive,
// searching the human table before the veterinary one. A hit in the
// veterinary table keeps its veterinary (or zoonotic) type so the caller can
// route it correctly.
func (t *Taxonomy) Find(disease string) (*TaxonomyEntry, bool) {
	for i := range t.Human {
		if t.Human[i].Disease == disease {
			return &t.Human[i], true
		}
	}
	for i := range t.Veterinary {
		if t.Veterinary[i].Disease == disease {
			return &t.Veterinary[i], true
		}
	}
	folded := strings.ToLower(strings.TrimSpace(disease))
	for i := range t.Human {
		if strings.ToLower(t.Human[i].Disease) == folded {
			return &t.Human[i], true
		}
	}
	for i := range t.Veterinary {
		if strings.ToLower(t.Veterinary[i].Disease) == folded {
			return &t.Veterinary[i], true
		}
	}
	return nil, false
}

// Size returns the total number of entries across both tables.
func (t *Taxonomy) Size() int {
	return len(t.Human) + len(t.Veterinary)
}
