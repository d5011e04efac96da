package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/remedia/remedia/internal/domain/repertory"
)

// SymptomInput is one raw symptom entry as submitted by the caller. Text may
// already be a canonical code; Weight of zero means "use the category
// default". Polarity applies to modality entries only.
type SymptomInput struct {
	Text     string  `json:"text"`
	Weight   float64 `json:"weight,omitempty"`
	Polarity string  `json:"polarity,omitempty"` // better|worse
}

// CaseInput is the structured case a caller submits for analysis.
type CaseInput struct {
	Mental        []SymptomInput `json:"mental,omitempty"`
	General       []SymptomInput `json:"general,omitempty"`
	Particular    []SymptomInput `json:"particular,omitempty"`
	Modalities    []SymptomInput `json:"modalities,omitempty"`
	PathologyTags []string       `json:"pathology_tags,omitempty"`
}

// HistoryEntry is one previously prescribed remedy of the patient.
type HistoryEntry struct {
	RemedyID   uuid.UUID `json:"remedy_id"`
	RemedyName string    `json:"remedy_name"`
	Date       time.Time `json:"date"`
}

// CaseSymptom is one resolved, weighted symptom entry of the normalized case.
type CaseSymptom struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Weight      float64 `json:"weight"`
	Polarity    string  `json:"polarity,omitempty"`
	Placeholder bool    `json:"placeholder,omitempty"` // true when the text could not be resolved
}

// CaseProfile is the normalized case produced by stage 1. Read-only after
// creation.
type CaseProfile struct {
	Mental        []CaseSymptom `json:"mental,omitempty"`
	General       []CaseSymptom `json:"general,omitempty"`
	Particular    []CaseSymptom `json:"particular,omitempty"`
	Modalities    []CaseSymptom `json:"modalities,omitempty"`
	PathologyTags []string      `json:"pathology_tags,omitempty"`
	IsAcute       bool          `json:"is_acute"`
	IsChronic     bool          `json:"is_chronic"`
}

// All returns every symptom of the profile in category order.
func (p *CaseProfile) All() []CaseSymptom {
	out := make([]CaseSymptom, 0, len(p.Mental)+len(p.General)+len(p.Particular)+len(p.Modalities))
	out = append(out, p.Mental...)
	out = append(out, p.General...)
	out = append(out, p.Particular...)
	out = append(out, p.Modalities...)
	return out
}

// WeightByCode returns the weight of the symptom with the given code, or zero
// when the code is not part of the case.
func (p *CaseProfile) WeightByCode(code string) float64 {
	for _, s := range p.All() {
		if s.Code == code {
			return s.Weight
		}
	}
	return 0
}

// ResolutionState names the path the rubric matcher took, so callers and
// tests can assert more than a final count.
type ResolutionState string

const (
	StateResolved     ResolutionState = "resolved"      // auto-selection succeeded
	StateFallbackUsed ResolutionState = "fallback_used" // top-N fallback engaged
	StateUnresolved   ResolutionState = "unresolved"    // nothing matched at all
)

// RubricMatch links one rubric to the case symptoms it matched.
type RubricMatch struct {
	Rubric          *repertory.Rubric `json:"rubric"`
	MatchedSymptoms []string          `json:"matched_symptoms"`
	Confidence      float64           `json:"confidence"`
	AutoSelected    bool              `json:"auto_selected"`
}

// MatchResult is the stage 2 output: all scored rubrics sorted by confidence,
// the selected subset, and the resolution path taken.
type MatchResult struct {
	State    ResolutionState `json:"state"`
	Matches  []RubricMatch   `json:"matches"`
	Selected []RubricMatch   `json:"selected"`
}

// RubricGrade is one (rubric, grade) contribution to a pooled remedy.
type RubricGrade struct {
	RubricID   uuid.UUID `json:"rubric_id"`
	RubricText string    `json:"rubric_text"`
	Grade      int       `json:"grade"`
	// Symptom codes the rubric matched, carried forward for weight lookup.
	SymptomCodes []string `json:"symptom_codes,omitempty"`
}

// RemedyScore is one pooled candidate remedy with its accumulated grades.
type RemedyScore struct {
	RemedyID   uuid.UUID     `json:"remedy_id"`
	RemedyName string        `json:"remedy_name"`
	Grades     []RubricGrade `json:"grades"`
	TotalGrade int           `json:"total_grade"`
}

// Confidence classifies a final score into four bands.
type Confidence string

const (
	ConfidenceLow      Confidence = "low"
	ConfidenceMedium   Confidence = "medium"
	ConfidenceHigh     Confidence = "high"
	ConfidenceVeryHigh Confidence = "very_high"
)

// Warning types and severities attached by the contradiction engine.
const (
	WarningIncompatibility = "incompatibility"
	WarningRepetition      = "repetition"

	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

type Warning struct {
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// FinalScore is one remedy's full score breakdown. The clinical layer and the
// contradiction engine mutate score terms in place; remedy identity and the
// matched sets never change after stage 4.
type FinalScore struct {
	RemedyID   uuid.UUID `json:"remedy_id"`
	RemedyName string    `json:"remedy_name"`

	BaseScore            float64 `json:"base_score"`
	ConstitutionBonus    float64 `json:"constitution_bonus"`
	ModalityBonus        float64 `json:"modality_bonus"`
	PathologyBonus       float64 `json:"pathology_bonus"`
	KeynoteBonus         float64 `json:"keynote_bonus"`
	CoverageBonus        float64 `json:"coverage_bonus"`
	ClinicalAdjustment   float64 `json:"clinical_adjustment"`
	ContradictionPenalty float64 `json:"contradiction_penalty"`
	FinalScore           float64 `json:"final_score"`

	MatchedRubrics  []string   `json:"matched_rubrics"`
	MatchedSymptoms []string   `json:"matched_symptoms"`
	RubricCount     int        `json:"rubric_count"`
	Confidence      Confidence `json:"confidence"`
	Warnings        []Warning  `json:"warnings,omitempty"`
}

// Recompute restores the final-score identity
// final = base + bonuses + adjustment - penalty.
func (f *FinalScore) Recompute() {
	f.FinalScore = f.BaseScore +
		f.ConstitutionBonus + f.ModalityBonus + f.PathologyBonus +
		f.KeynoteBonus + f.CoverageBonus + f.ClinicalAdjustment -
		f.ContradictionPenalty
}

// Suggestion is one remedy of the final, truncated result with its dosing
// guidance.
type Suggestion struct {
	RemedyID   uuid.UUID  `json:"remedy_id"`
	RemedyName string     `json:"remedy_name"`
	Score      float64    `json:"score"`
	Confidence Confidence `json:"confidence"`
	Potency    string     `json:"potency"`
	Repetition string     `json:"repetition"`
	Reasoning  string     `json:"reasoning"`
	Warnings   []Warning  `json:"warnings,omitempty"`
}

// Summary aggregates a suggestion result.
type Summary struct {
	TotalRemedies  int `json:"total_remedies"` // candidates before truncation
	HighConfidence int `json:"high_confidence"`
	TotalWarnings  int `json:"total_warnings"`
}

// Result is the stage 7 output.
type Result struct {
	Suggestions []Suggestion `json:"suggestions"`
	Summary     Summary      `json:"summary"`
}

// Output is everything one pipeline run produces.
type Output struct {
	CaseID  uuid.UUID    `json:"case_id"`
	Profile *CaseProfile `json:"profile"`
	Rubrics *MatchResult `json:"rubrics"`
	Result  *Result      `json:"result"`
}
