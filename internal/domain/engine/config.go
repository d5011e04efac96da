package engine

import "time"

// Config gathers every tunable of the analysis pipeline in one immutable
// snapshot so scoring stays a pure function of (case, pool, config).
type Config struct {
	// Default symptom weights per category, applied when the caller supplies
	// none. Mental must stay strictly heaviest, then general, then modality,
	// then particular.
	MentalWeight     float64
	GeneralWeight    float64
	ModalityWeight   float64
	ParticularWeight float64

	// GradeMultipliers maps grade (1..4) to a non-decreasing multiplier so
	// higher grades contribute disproportionately.
	GradeMultipliers map[int]float64

	// Rubric matching
	MatchFloor          float64 // discard text-match strengths below this
	AutoSelectThreshold float64 // confidence needed for auto-selection
	MultiMatchBoost     float64 // applied when >1 symptom matches above 50
	FallbackTopN        int     // rubrics taken when nothing auto-selects

	// Scoring bonuses
	ConstitutionMentalBonus  float64 // per overlapping mental trait
	ConstitutionGeneralBonus float64 // per overlapping general trait
	ModalityWorseBonus       float64 // per matched worse-from modality
	ModalityBetterBonus      float64 // per matched better-from modality
	PathologyBonus           float64 // flat, any clinical indication match
	KeynoteMentalBonus       float64 // per mental keynote overlap
	KeynoteOtherBonus        float64 // per general/particular keynote overlap
	CoverageHighThreshold    float64 // fraction of case symptoms covered
	CoverageHighBonus        float64
	CoverageMidThreshold     float64
	CoverageMidBonus         float64

	// Confidence bands on final score
	VeryHighCutoff     float64
	HighCutoff         float64
	MediumCutoff       float64
	BreadthRubricCount int // rubrics needed for the breadth adjustment

	// Clinical intelligence
	AcuteBoost                 float64
	ChronicConstitutionalBoost float64
	MentalDominanceBoost       float64
	ConstitutionThreshold      float64 // constitution bonus needed for boosts

	// Contradiction screening
	IncompatibilityPenalty float64
	RepetitionPenalty      float64
	HistoryLookback        time.Duration

	// Suggestion assembly
	MaxSuggestions int
}

// DefaultConfig returns the tunables the pipeline ships with.
func DefaultConfig() Config {
	return Config{
		MentalWeight:     3,
		GeneralWeight:    2,
		ModalityWeight:   1.5,
		ParticularWeight: 1,

		GradeMultipliers: map[int]float64{1: 1.0, 2: 1.1, 3: 1.25, 4: 1.5},

		MatchFloor:          30,
		AutoSelectThreshold: 20,
		MultiMatchBoost:     1.2,
		FallbackTopN:        5,

		ConstitutionMentalBonus:  4,
		ConstitutionGeneralBonus: 2,
		ModalityWorseBonus:       3,
		ModalityBetterBonus:      2,
		PathologyBonus:           5,
		KeynoteMentalBonus:       4,
		KeynoteOtherBonus:        2,
		CoverageHighThreshold:    0.7,
		CoverageHighBonus:        10,
		CoverageMidThreshold:     0.5,
		CoverageMidBonus:         5,

		VeryHighCutoff:     50,
		HighCutoff:         30,
		MediumCutoff:       15,
		BreadthRubricCount: 5,

		AcuteBoost:                 8,
		ChronicConstitutionalBoost: 6,
		MentalDominanceBoost:       5,
		ConstitutionThreshold:      4,

		IncompatibilityPenalty: 10,
		RepetitionPenalty:      5,
		HistoryLookback:        30 * 24 * time.Hour,

		MaxSuggestions: 10,
	}
}

// GradeMultiplier returns the configured multiplier for a grade, defaulting
// to 1 for unknown grades so malformed reference rows never zero a score.
func (c Config) GradeMultiplier(grade int) float64 {
	if m, ok := c.GradeMultipliers[grade]; ok {
		return m
	}
	return 1
}

// CategoryWeight returns the default weight for a symptom category.
func (c Config) CategoryWeight(category string) float64 {
	switch category {
	case "mental":
		return c.MentalWeight
	case "general":
		return c.GeneralWeight
	case "modality":
		return c.ModalityWeight
	default:
		return c.ParticularWeight
	}
}
