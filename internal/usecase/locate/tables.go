package locate

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/countries.yaml
var countriesYAML []byte

//go:embed data/collisions.yaml
var collisionsYAML []byte

// CountryEntry is one row of the canonical-country table: the canonical name,
// ISO code, continent, an approximate centroid and the free-text aliases that
// resolve to it.
type CountryEntry struct {
	Name      string   `yaml:"name"`
	Code      string   `yaml:"code"`
	Continent string   `yaml:"continent"`
	Lat       float64  `yaml:"lat"`
	Lng       float64  `yaml:"lng"`
	Aliases   []string `yaml:"aliases"`
}

// CollisionRule suppresses a whole-word country match when the input also
// matches one of the longer colliding names ("Sudan" inside "South Sudan").
type CollisionRule struct {
	Country string   `yaml:"country"`
	Unless  []string `yaml:"unless"`
}

type countriesFile struct {
	Countries []CountryEntry `yaml:"countries"`
}

type collisionsFile struct {
	Collisions []CollisionRule `yaml:"collisions"`
}

// Table is the loaded canonical-country reference: lookup maps over names,
// aliases and ISO codes, plus the collision rules for containment matching.
type Table struct {
	entries []CountryEntry

	// byExact maps canonical names and aliases, case preserved.
	byExact map[string]*CountryEntry
	// byFolded maps the same keys lower-cased.
	byFolded map[string]*CountryEntry
	// byCode maps upper-case ISO alpha-2 codes.
	byCode map[string]*CountryEntry

	collisions map[string][]string
}

// LoadTable parses the embedded reference data. Called once at startup; an
// error here is a build defect, not a runtime condition.
func LoadTable() (*Table, error) {
	var cf countriesFile
	if err := yaml.Unmarshal(countriesYAML, &cf); err != nil {
		return nil, fmt.Errorf("LoadTable: countries: %w", err)
	}
	if len(cf.Countries) == 0 {
		return nil, fmt.Errorf("LoadTable: countries table is empty")
	}

	var xf collisionsFile
	if err := yaml.Unmarshal(collisionsYAML, &xf); err != nil {
		return nil, fmt.Errorf("LoadTable: collisions: %w", err)
	}

	t := &Table{
		entries:    cf.Countries,
		byExact:    make(map[string]*CountryEntry, len(cf.Countries)*2),
		byFolded:   make(map[string]*CountryEntry, len(cf.Countries)*2),
		byCode:     make(map[string]*CountryEntry, len(cf.Countries)),
		collisions: make(map[string][]string, len(xf.Collisions)),
	}

	for i := range t.entries {
		e := &t.entries[i]
		t.byExact[e.Name] = e
		t.byFolded[strings.ToLower(e.Name)] = e
		t.byCode[strings.ToUpper(e.Code)] = e
		for _, alias := range e.Aliases {
			t.byExact[alias] = e
			t.byFolded[strings.ToLower(alias)] = e
		}
	}

	for _, rule := range xf.Collisions {
		if _, ok := t.byExact[rule.Country]; !ok {
			return nil, fmt.Errorf("LoadTable: collision rule for unknown country %q", rule.Country)
		}
		t.collisions[rule.Country] = rule.Unless
	}

	return t, nil
}

// Len returns the number of canonical countries.
func (t *Table) Len() int { return len(t.entries) }

// MatchExact returns the entry whose canonical name or alias equals the
// input, case significant.
func (t *Table) MatchExact(input string) *CountryEntry {
	return t.byExact[strings.TrimSpace(input)]
}

// MatchFolded returns the entry whose canonical name or alias equals the
// input ignoring case.
func (t *Table) MatchFolded(input string) *CountryEntry {
	return t.byFolded[strings.ToLower(strings.TrimSpace(input))]
}

// MatchByCode returns the entry for an ISO alpha-2 code.
func (t *Table) MatchByCode(code string) *CountryEntry {
	return t.byCode[strings.ToUpper(strings.TrimSpace(code))]
}

// MatchContained scans the input for a whole-word occurrence of any canonical
// name or alias, honoring the collision rules: a hit is discarded when the
// input also contains one of its registered longer colliders. Longer matches
// win so "South Sudan floods" resolves to South Sudan, never Sudan.
func (t *Table) MatchContained(input string) *CountryEntry {
	folded := " " + strings.ToLower(strings.TrimSpace(input)) + " "

	var best *CountryEntry
	bestLen := 0
	for key, entry := range t.byFolded {
		if len(key) <= bestLen {
			continue
		}
		if !containsWord(folded, key) {
			continue
		}
		if t.excludedByCollision(entry.Name, folded) {
			continue
		}
		best = entry
		bestLen = len(key)
	}
	return best
}

// excludedByCollision reports whether a whole-word hit for country must be
// suppressed because the input also names one of its colliders.
func (t *Table) excludedByCollision(country, foldedInput string) bool {
	for _, collider := range t.collisions[country] {
		if containsWord(foldedInput, strings.ToLower(collider)) {
			return true
		}
	}
	return false
}

// containsWord reports whether needle occurs in padded on word boundaries.
// padded must be lower case with leading and trailing spaces.
func containsWord(padded, needle string) bool {
	start := 0
	for {
		idx := strings.Index(padded[start:], needle)
		if idx < 0 {
			return false
		}
		idx += start
		before := padded[idx-1]
		after := padded[idx+len(needle)]
		if isBoundary(before) && isBoundary(after) {
			return true
		}
		start = idx + 1
	}
}

func isBoundary(c byte) bool {
	switch c {
	case ' ', ',', '.', ';', ':', '(', ')', '\'', '"', '-', '/':
		return true
	default:
		return false
	}
}
