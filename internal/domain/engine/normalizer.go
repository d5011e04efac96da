package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/remedia/remedia/internal/domain/repertory"
)

// Pathology tags that classify a case. AcuteImplyingTags mark presentations
// that behave acutely even without an explicit Acute tag.
var (
	acuteTag          = "acute"
	chronicTag        = "chronic"
	acuteImplyingTags = map[string]bool{
		"fever":  true,
		"injury": true,
		"sudden": true,
	}
)

// Normalizer resolves raw symptom entries into canonical weighted tuples and
// classifies the case as acute or chronic. Stage 1 of the pipeline.
type Normalizer struct {
	symptoms SymptomSource
	cfg      Config
}

func NewNormalizer(symptoms SymptomSource, cfg Config) *Normalizer {
	return &Normalizer{symptoms: symptoms, cfg: cfg}
}

// Normalize builds the case profile. Entries that cannot be resolved against
// reference data keep their text under a unique placeholder code; the case
// never loses information it cannot classify.
func (n *Normalizer) Normalize(ctx context.Context, in CaseInput) (*CaseProfile, error) {
	profile := &CaseProfile{
		PathologyTags: in.PathologyTags,
	}

	var err error
	if profile.Mental, err = n.resolveList(ctx, in.Mental, repertory.CategoryMental); err != nil {
		return nil, err
	}
	if profile.General, err = n.resolveList(ctx, in.General, repertory.CategoryGeneral); err != nil {
		return nil, err
	}
	if profile.Particular, err = n.resolveList(ctx, in.Particular, repertory.CategoryParticular); err != nil {
		return nil, err
	}
	if profile.Modalities, err = n.resolveList(ctx, in.Modalities, repertory.CategoryModality); err != nil {
		return nil, err
	}

	profile.IsAcute, profile.IsChronic = classifyTags(in.PathologyTags)
	return profile, nil
}

func (n *Normalizer) resolveList(ctx context.Context, entries []SymptomInput, category string) ([]CaseSymptom, error) {
	out := make([]CaseSymptom, 0, len(entries))
	for _, entry := range entries {
		text := strings.TrimSpace(entry.Text)
		if text == "" {
			continue
		}

		cs, err := n.resolveEntry(ctx, text, category)
		if err != nil {
			return nil, err
		}

		if entry.Weight > 0 {
			cs.Weight = entry.Weight
		} else {
			cs.Weight = n.cfg.CategoryWeight(category)
		}
		if category == repertory.CategoryModality {
			cs.Polarity = normalizePolarity(entry.Polarity)
		}
		out = append(out, cs)
	}
	return out, nil
}

func (n *Normalizer) resolveEntry(ctx context.Context, text, category string) (CaseSymptom, error) {
	// Pre-coded entries resolve directly.
	if sym, err := n.symptoms.GetByCode(ctx, text); err == nil {
		return CaseSymptom{Code: sym.Code, Name: sym.Name, Category: sym.Category}, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return CaseSymptom{}, fmt.Errorf("symptom lookup by code %q: %w", text, err)
	}

	// Name and synonym lookup, scoped to the declared category.
	if sym, err := n.symptoms.FindByName(ctx, text, category); err == nil {
		return CaseSymptom{Code: sym.Code, Name: sym.Name, Category: sym.Category}, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return CaseSymptom{}, fmt.Errorf("symptom lookup by name %q: %w", text, err)
	}

	// Unresolved text passes through under a unique placeholder code.
	return CaseSymptom{
		Code:        placeholderCode(),
		Name:        text,
		Category:    category,
		Placeholder: true,
	}, nil
}

func placeholderCode() string {
	return "UNR-" + strings.ToUpper(uuid.NewString()[:8])
}

func classifyTags(tags []string) (isAcute, isChronic bool) {
	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		switch {
		case t == acuteTag || acuteImplyingTags[t]:
			isAcute = true
		case t == chronicTag:
			isChronic = true
		}
	}
	return isAcute, isChronic
}

func normalizePolarity(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "better":
		return "better"
	default:
		return "worse"
	}
}
