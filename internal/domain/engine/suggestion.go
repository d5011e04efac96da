package engine

import (
	"fmt"
	"strings"
)

// Assembler turns the screened scores into the final suggestion list with
// potency and repetition guidance. Stage 7.
type Assembler struct {
	cfg Config
}

func NewAssembler(cfg Config) *Assembler {
	return &Assembler{cfg: cfg}
}

// Assemble truncates to the configured maximum while the summary keeps the
// full candidate count, so callers can tell a thin pool from a truncated one.
func (a *Assembler) Assemble(profile *CaseProfile, scores []FinalScore) *Result {
	limit := a.cfg.MaxSuggestions
	if limit <= 0 || limit > len(scores) {
		limit = len(scores)
	}

	result := &Result{
		Suggestions: make([]Suggestion, 0, limit),
		Summary:     Summary{TotalRemedies: len(scores)},
	}

	for _, fs := range scores[:limit] {
		sg := Suggestion{
			RemedyID:   fs.RemedyID,
			RemedyName: fs.RemedyName,
			Score:      fs.FinalScore,
			Confidence: fs.Confidence,
			Potency:    a.potencyFor(profile, fs.Confidence),
			Repetition: repetitionFor(profile),
			Reasoning:  reasoningFor(fs),
			Warnings:   fs.Warnings,
		}
		result.Suggestions = append(result.Suggestions, sg)

		if fs.Confidence == ConfidenceHigh || fs.Confidence == ConfidenceVeryHigh {
			result.Summary.HighConfidence++
		}
		result.Summary.TotalWarnings += len(fs.Warnings)
	}
	return result
}

// potencyFor picks from the 6C, 30C, 200C, 1M ladder. Acute cases start at
// 30C, chronic constitutional work at 200C, and a very high confidence match
// moves one step up. Without a declared acuity the conservative 6C stands.
func (a *Assembler) potencyFor(profile *CaseProfile, confidence Confidence) string {
	switch {
	case profile.IsAcute:
		if confidence == ConfidenceVeryHigh {
			return "200C"
		}
		return "30C"
	case profile.IsChronic:
		if confidence == ConfidenceVeryHigh {
			return "1M"
		}
		return "200C"
	default:
		return "6C"
	}
}

func repetitionFor(profile *CaseProfile) string {
	switch {
	case profile.IsAcute:
		return "every 2-4 hours until improvement"
	case profile.IsChronic:
		return "once daily"
	default:
		return "twice daily"
	}
}

// reasoningFor renders a short human-readable account of why the remedy
// ranks where it does.
func reasoningFor(fs FinalScore) string {
	parts := []string{
		fmt.Sprintf("matched %d rubric(s) covering %d symptom(s)", fs.RubricCount, len(fs.MatchedSymptoms)),
	}
	if fs.ConstitutionBonus > 0 {
		parts = append(parts, "constitutional fit")
	}
	if fs.ModalityBonus > 0 {
		parts = append(parts, "modality agreement")
	}
	if fs.PathologyBonus > 0 {
		parts = append(parts, "clinical indication match")
	}
	if fs.KeynoteBonus > 0 {
		parts = append(parts, "keynote correspondence")
	}
	if fs.CoverageBonus > 0 {
		parts = append(parts, "broad case coverage")
	}
	if fs.ContradictionPenalty > 0 {
		parts = append(parts, "penalized for warnings")
	}
	return strings.Join(parts, "; ")
}
