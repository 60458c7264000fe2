package classify

import (
	"strconv"
	"strings"

	"outbreak-feed/internal/domain/entity"
	"outbreak-feed/internal/observability/metrics"
)

// nullSentinel is the literal the grammar uses for an absent optional field.
const nullSentinel = "null"

// defaultConfidence stands in when the confidence field is absent or does
// not parse. 0.5 keeps such matches in the low severity tier.
const defaultConfidence = 0.5

// Field counts the parser accepts. Earlier grammar versions lacked the
// detected-disease-name and disease-type fields; the newer fields are
// right-aligned after id and disease, so older outputs still parse.
const (
	arityLegacy  = 7 // id|disease|country|city|cases|deaths|confidence
	arityNoType  = 8 // + detected_disease_name
	arityCurrent = 9 // + disease_type
)

// ParseLine parses one delimited match line. The bool result reports whether
// the line produced a usable match; malformed lines are dropped, never fatal,
// because one bad line must not cost the rest of a paid batch.
func ParseLine(line string, articleCount int) (entity.ClassificationMatch, bool) {
	var m entity.ClassificationMatch

	fields := strings.Split(line, "|")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	switch len(fields) {
	case arityLegacy:
		// Insert the two missing optional fields after disease.
		fields = []string{
			fields[0], fields[1], nullSentinel, nullSentinel,
			fields[2], fields[3], fields[4], fields[5], fields[6],
		}
	case arityNoType:
		fields = []string{
			fields[0], fields[1], fields[2], nullSentinel,
			fields[3], fields[4], fields[5], fields[6], fields[7],
		}
	case arityCurrent:
	default:
		metrics.RecordClassificationLineDropped("arity")
		return m, false
	}

	index, err := strconv.Atoi(fields[0])
	if err != nil || index < 0 || index >= articleCount {
		metrics.RecordClassificationLineDropped("unknown_id")
		return m, false
	}

	disease := cleanField(fields[1])
	if disease == "" {
		metrics.RecordClassificationLineDropped("empty_disease")
		return m, false
	}

	m.ArticleIndex = index
	m.Disease = disease
	m.DetectedDiseaseName = cleanField(fields[2])
	m.DiseaseType = parseDiseaseType(cleanField(fields[3]))
	m.Country = cleanField(fields[4])
	m.City = cleanField(fields[5])
	m.CaseCount = parseCount(fields[6])
	m.MortalityCount = parseCount(fields[7])
	m.Confidence = parseConfidence(fields[8])

	return m, true
}

// cleanField normalizes one field value, mapping the null sentinel (and the
// empty string) to absence.
func cleanField(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, nullSentinel) {
		return ""
	}
	return s
}

func parseDiseaseType(s string) entity.DiseaseType {
	switch strings.ToLower(s) {
	case string(entity.DiseaseTypeHuman):
		return entity.DiseaseTypeHuman
	case string(entity.DiseaseTypeVeterinary):
		return entity.DiseaseTypeVeterinary
	case string(entity.DiseaseTypeZoonotic):
		return entity.DiseaseTypeZoonotic
	default:
		return ""
	}
}

// parseCount parses a nullable integer field. Thousands separators appear in
// model output often enough to be worth stripping.
func parseCount(s string) *int {
	s = cleanField(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func parseConfidence(s string) float64 {
	s = cleanField(s)
	if s == "" {
		return defaultConfidence
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultConfidence
	}
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
