package signal

import (
	"strings"

	"outbreak-feed/internal/domain/entity"
)

// categorySeverity maps outbreak category names to the severity stamped on
// disease and category rows created from the taxonomy. Lookup is
// case-insensitive on the trimmed name. Categories outside the table get
// medium, the bucket most tracked diseases fall into.
var categorySeverity = map[string]string{
	"viral hemorrhagic fever":     entity.SeverityCritical,
	"hemorrhagic fever":           entity.SeverityCritical,
	"emerging infectious disease": entity.SeverityCritical,
	"respiratory":                 entity.SeverityHigh,
	"respiratory infection":       entity.SeverityHigh,
	"vector-borne":                entity.SeverityHigh,
	"zoonotic":                    entity.SeverityHigh,
	"waterborne":                  entity.SeverityMedium,
	"foodborne":                   entity.SeverityMedium,
	"vaccine-preventable":         entity.SeverityMedium,
	"sexually transmitted":        entity.SeverityLow,
	"parasitic":                   entity.SeverityLow,
}

// severityForCategory returns the severity tier associated with an outbreak
// category name.
func severityForCategory(name string) string {
	if severity, ok := categorySeverity[strings.ToLower(strings.TrimSpace(name))]; ok {
		return severity
	}
	return entity.SeverityMedium
}
