package engine

import (
	"strings"

	"github.com/google/uuid"

	"github.com/remedia/remedia/internal/domain/repertory"
)

// Clinical applies case-level prescribing heuristics on top of the raw
// repertorization. Stage 5. It only ever writes ClinicalAdjustment; a case
// that triggers no rule leaves every score untouched.
type Clinical struct {
	cfg    Config
	scorer *Scorer
}

func NewClinical(cfg Config) *Clinical {
	return &Clinical{cfg: cfg, scorer: NewScorer(cfg)}
}

// Adjust mutates the scores in place, restores the score identity, re-bands
// confidence, and re-sorts.
func (c *Clinical) Adjust(profile *CaseProfile, scores []FinalScore, remedies map[uuid.UUID]*repertory.Remedy) {
	mentalCodes := make(map[string]bool, len(profile.Mental))
	for _, s := range profile.Mental {
		mentalCodes[s.Code] = true
	}
	mentalDominant := mentalDominates(profile)

	for i := range scores {
		fs := &scores[i]

		// Acute presentations favour remedies indicated for acute work,
		// whether or not their indications overlap this case's pathology.
		if profile.IsAcute && hasAcuteIndication(remedies[fs.RemedyID]) {
			fs.ClinicalAdjustment += c.cfg.AcuteBoost
		}

		// Chronic cases favour the constitutional remedy.
		if profile.IsChronic && fs.ConstitutionBonus >= c.cfg.ConstitutionThreshold {
			fs.ClinicalAdjustment += c.cfg.ChronicConstitutionalBoost
		}

		// When the mental picture dominates the case, remedies anchored in a
		// mental rubric move up.
		if mentalDominant && coversAny(fs.MatchedSymptoms, mentalCodes) {
			fs.ClinicalAdjustment += c.cfg.MentalDominanceBoost
		}

		if fs.ClinicalAdjustment != 0 {
			fs.Recompute()
			fs.Confidence = c.scorer.ConfidenceFor(fs.FinalScore, fs.RubricCount)
		}
	}

	sortScores(scores)
}

// mentalDominates reports whether the summed mental weight exceeds the summed
// weight of the rest of the symptom picture.
func mentalDominates(profile *CaseProfile) bool {
	var mental, rest float64
	for _, s := range profile.Mental {
		mental += s.Weight
	}
	for _, s := range profile.General {
		rest += s.Weight
	}
	for _, s := range profile.Particular {
		rest += s.Weight
	}
	for _, s := range profile.Modalities {
		rest += s.Weight
	}
	return mental > 0 && mental > rest
}

func hasAcuteIndication(r *repertory.Remedy) bool {
	if r == nil {
		return false
	}
	for _, ind := range r.ClinicalIndications {
		if strings.EqualFold(strings.TrimSpace(ind), "Acute") {
			return true
		}
	}
	return false
}

func coversAny(codes []string, set map[string]bool) bool {
	for _, c := range codes {
		if set[c] {
			return true
		}
	}
	return false
}
