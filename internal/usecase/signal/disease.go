package signal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"outbreak-feed/internal/domain/entity"
)

// otherDescriptionLimit caps how long the OTHER record's accumulated name
// list may grow.
const otherDescriptionLimit = 2000

// resolveDisease returns the stored disease row for a match, creating the
// disease and its pathogen, category and keyword links on first encounter.
// Matches carrying the unlisted-disease sentinel share a single record that
// accumulates the detected names.
func (p *Processor) resolveDisease(
	ctx context.Context,
	m *entity.ClassificationMatch,
	tax *entity.Taxonomy,
	cache map[string]*entity.Disease,
) (*entity.Disease, error) {
	if m.IsOther() {
		return p.ensureOtherDisease(ctx, m.DetectedDiseaseName, cache)
	}

	key := strings.ToLower(m.Disease)
	if d, ok := cache[key]; ok {
		return d, nil
	}

	entry, _ := tax.Find(m.Disease)

	disease, err := p.DiseaseRepo.GetByName(ctx, m.Disease)
	if err != nil {
		return nil, fmt.Errorf("resolveDisease: %w", err)
	}

	if disease == nil {
		disease, err = p.createDisease(ctx, m, entry)
		if err != nil {
			return nil, fmt.Errorf("resolveDisease: %w", err)
		}
	} else if entry != nil {
		// An existing disease only gets a category backfilled when it has
		// none, so curated links are never overwritten.
		hasCategory, err := p.DiseaseRepo.HasCategory(ctx, disease.ID)
		if err != nil {
			return nil, fmt.Errorf("resolveDisease: %w", err)
		}
		if !hasCategory && entry.Category != "" {
			if err := p.linkCategory(ctx, disease.ID, entry.Category); err != nil {
				slog.Warn("failed to backfill disease category",
					slog.String("disease", disease.Name),
					slog.String("category", entry.Category),
					slog.Any("error", err))
			}
		}
	}

	cache[key] = disease
	return disease, nil
}

// createDisease inserts a new disease row and links the pathogen, category
// and keywords its taxonomy entry names. Link failures are logged but do not
// fail the creation: a disease without links still anchors signals.
func (p *Processor) createDisease(ctx context.Context, m *entity.ClassificationMatch, entry *entity.TaxonomyEntry) (*entity.Disease, error) {
	diseaseType := m.DiseaseType
	if entry != nil && entry.Type != "" {
		diseaseType = entry.Type
	}
	if diseaseType == "" {
		diseaseType = entity.DiseaseTypeHuman
	}

	category := ""
	if entry != nil {
		category = entry.Category
	}

	disease := &entity.Disease{
		Name:          m.Disease,
		SeverityLevel: severityForCategory(category),
		ColorCode:     colorForName(m.Disease),
		DiseaseType:   diseaseType,
	}
	id, err := p.DiseaseRepo.Create(ctx, disease)
	if err != nil {
		return nil, err
	}
	disease.ID = id

	if entry == nil {
		return disease, nil
	}

	if entry.Pathogen != "" {
		if err := p.linkPathogen(ctx, id, entry); err != nil {
			slog.Warn("failed to link pathogen",
				slog.String("disease", disease.Name),
				slog.String("pathogen", entry.Pathogen),
				slog.Any("error", err))
		}
	}
	if entry.Category != "" {
		if err := p.linkCategory(ctx, id, entry.Category); err != nil {
			slog.Warn("failed to link category",
				slog.String("disease", disease.Name),
				slog.String("category", entry.Category),
				slog.Any("error", err))
		}
	}
	if len(entry.Keywords) > 0 {
		if err := p.DiseaseRepo.AddKeywords(ctx, id, entry.Keywords); err != nil {
			slog.Warn("failed to add disease keywords",
				slog.String("disease", disease.Name),
				slog.Any("error", err))
		}
	}

	return disease, nil
}

// linkPathogen ensures the pathogen row exists and links it as the primary
// pathogen of the disease.
func (p *Processor) linkPathogen(ctx context.Context, diseaseID int64, entry *entity.TaxonomyEntry) error {
	pathogen, err := p.DiseaseRepo.GetPathogenByName(ctx, entry.Pathogen)
	if err != nil {
		return err
	}
	if pathogen == nil {
		pathogen = &entity.Pathogen{
			Name:         entry.Pathogen,
			PathogenType: entry.PathogenType,
		}
		id, err := p.DiseaseRepo.CreatePathogen(ctx, pathogen)
		if err != nil {
			return err
		}
		pathogen.ID = id
	}
	return p.DiseaseRepo.LinkPathogen(ctx, diseaseID, pathogen.ID, true)
}

// linkCategory ensures the category row exists and links the disease to it.
func (p *Processor) linkCategory(ctx context.Context, diseaseID int64, name string) error {
	category, err := p.DiseaseRepo.GetCategoryByName(ctx, name)
	if err != nil {
		return err
	}
	if category == nil {
		category = &entity.OutbreakCategory{
			Name:          name,
			ColorCode:     colorForName(name),
			SeverityLevel: severityForCategory(name),
		}
		id, err := p.DiseaseRepo.CreateCategory(ctx, category)
		if err != nil {
			return err
		}
		category.ID = id
	}
	return p.DiseaseRepo.LinkCategory(ctx, diseaseID, category.ID)
}

// ensureOtherDisease returns the shared record for unlisted diseases,
// creating it on first use and appending newly detected names to its
// description so analysts can see what fell outside the tracked set.
func (p *Processor) ensureOtherDisease(ctx context.Context, detectedName string, cache map[string]*entity.Disease) (*entity.Disease, error) {
	key := strings.ToLower(entity.DiseaseOther)

	disease, ok := cache[key]
	if !ok {
		var err error
		disease, err = p.DiseaseRepo.GetByName(ctx, entity.DiseaseOther)
		if err != nil {
			return nil, fmt.Errorf("ensureOtherDisease: %w", err)
		}
		if disease == nil {
			disease = &entity.Disease{
				Name:          entity.DiseaseOther,
				Description:   "Detected diseases outside the tracked set",
				SeverityLevel: entity.SeverityLow,
				ColorCode:     colorForName(entity.DiseaseOther),
				DiseaseType:   entity.DiseaseTypeHuman,
			}
			id, err := p.DiseaseRepo.Create(ctx, disease)
			if err != nil {
				return nil, fmt.Errorf("ensureOtherDisease: %w", err)
			}
			disease.ID = id
		}
		cache[key] = disease
	}

	name := strings.TrimSpace(detectedName)
	if name != "" && !strings.Contains(strings.ToLower(disease.Description), strings.ToLower(name)) {
		updated, trimmed := appendDetectedName(disease.Description, name, otherDescriptionLimit)
		if trimmed {
			slog.Warn("OTHER disease description at capacity, dropped oldest names",
				slog.String("detected", name))
		}
		if err := p.DiseaseRepo.UpdateDescription(ctx, disease.ID, updated); err != nil {
			slog.Warn("failed to update OTHER disease description",
				slog.String("detected", name),
				slog.Any("error", err))
		} else {
			disease.Description = updated
		}
	}

	return disease, nil
}

// appendDetectedName adds a newly detected name to the accumulated list,
// dropping the oldest leading entries once the list would exceed limit so the
// most recent detections always stay visible.
func appendDetectedName(description, name string, limit int) (string, bool) {
	updated := name
	if description != "" {
		updated = description + ", " + name
	}

	trimmed := false
	for len(updated) > limit {
		cut := strings.Index(updated, ", ")
		if cut < 0 {
			break
		}
		updated = updated[cut+2:]
		trimmed = true
	}
	return updated, trimmed
}
