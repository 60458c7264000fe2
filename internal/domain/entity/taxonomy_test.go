package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testTaxonomy() *Taxonomy {
	return &Taxonomy{
		Human: []TaxonomyEntry{
			{Disease: "Dengue", Pathogen: "Dengue virus", Category: "Vector-borne", Type: DiseaseTypeHuman},
			{Disease: "Cholera", Pathogen: "Vibrio cholerae", Category: "Waterborne", Type: DiseaseTypeHuman},
		},
		Veterinary: []TaxonomyEntry{
			{Disease: "Avian Influenza", Pathogen: "H5N1", Category: "Respiratory", Type: DiseaseTypeZoonotic},
			{Disease: "Foot and Mouth Disease", Pathogen: "FMDV", Category: "Livestock", Type: DiseaseTypeVeterinary},
		},
	}
}

func TestTaxonomy_Find_Exact(t *testing.T) {
	tax := testTaxonomy()

	entry, ok := tax.Find("Dengue")
	assert.True(t, ok)
	assert.Equal(t, "Dengue virus", entry.Pathogen)
	assert.Equal(t, DiseaseTypeHuman, entry.Type)
}

func TestTaxonomy_Find_CaseInsensitive(t *testing.T) {
	tax := testTaxonomy()

	entry, ok := tax.Find("cholera")
	assert.True(t, ok)
	assert.Equal(t, "Cholera", entry.Disease)
}

func TestTaxonomy_Find_VeterinaryKeepsType(t *testing.T) {
	tax := testTaxonomy()

	entry, ok := tax.Find("Avian Influenza")
	assert.True(t, ok)
	assert.Equal(t, DiseaseTypeZoonotic, entry.Type)

	entry, ok = tax.Find("foot and mouth disease")
	assert.True(t, ok)
	assert.Equal(t, DiseaseTypeVeterinary, entry.Type)
}

func TestTaxonomy_Find_Miss(t *testing.T) {
	tax := testTaxonomy()

	entry, ok := tax.Find("Unlisted Fever")
	assert.False(t, ok)
	assert.Nil(t, entry)
}

func TestTaxonomy_Size(t *testing.T) {
	assert.Equal(t, 4, testTaxonomy().Size())
	assert.Equal(t, 0, (&Taxonomy{}).Size())
}
