package repertory

import (
	"time"

	"github.com/google/uuid"
)

// Symptom categories, ordered by homeopathic weight (mental heaviest).
const (
	CategoryMental     = "mental"
	CategoryGeneral    = "general"
	CategoryParticular = "particular"
	CategoryModality   = "modality"
)

// ValidCategories lists the accepted symptom categories.
var ValidCategories = map[string]bool{
	CategoryMental:     true,
	CategoryGeneral:    true,
	CategoryParticular: true,
	CategoryModality:   true,
}

// Symptom maps to the symptom table. Reference data, never mutated by the
// analysis pipeline.
type Symptom struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Category  string    `db:"category" json:"category"`
	Synonyms  []string  `db:"synonyms" json:"synonyms,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Rubric maps to the rubric table. One entry of a reference repertory.
// When LinkedSymptoms is empty the rubric text is the authoritative matching
// surface; such rubrics must still be considered by text matching.
type Rubric struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Repertory      string    `db:"repertory" json:"repertory"`
	Chapter        string    `db:"chapter" json:"chapter"`
	Text           string    `db:"text" json:"text"`
	LinkedSymptoms []string  `db:"linked_symptoms" json:"linked_symptoms,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Remedy maps to the remedy table. Read-only during scoring.
type Remedy struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	Name                string    `db:"name" json:"name"`
	Kingdom             string    `db:"kingdom" json:"kingdom"`
	ConstitutionTraits  []string  `db:"constitution_traits" json:"constitution_traits,omitempty"`
	BetterFrom          []string  `db:"better_from" json:"better_from,omitempty"`
	WorseFrom           []string  `db:"worse_from" json:"worse_from,omitempty"`
	ClinicalIndications []string  `db:"clinical_indications" json:"clinical_indications,omitempty"`
	Keynotes            []string  `db:"keynotes" json:"keynotes,omitempty"`
	Incompatibles       []string  `db:"incompatibles" json:"incompatibles,omitempty"`
	Potencies           []string  `db:"potencies" json:"potencies,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// RubricRemedy maps to the rubric_remedy table: how strongly a repertory
// grades a remedy against a rubric. Grade runs 1 to 4, 4 strongest.
type RubricRemedy struct {
	ID        uuid.UUID `db:"id" json:"id"`
	RubricID  uuid.UUID `db:"rubric_id" json:"rubric_id"`
	RemedyID  uuid.UUID `db:"remedy_id" json:"remedy_id"`
	Grade     int       `db:"grade" json:"grade"`
	Repertory string    `db:"repertory" json:"repertory"`
}

const (
	MinGrade = 1
	MaxGrade = 4
)
