package caserecord

import (
	"time"

	"github.com/google/uuid"

	"github.com/remedia/remedia/internal/domain/engine"
)

// Outcome statuses a case record moves through. Every record starts as
// pending; the rest are set by follow-up, never by the pipeline.
const (
	OutcomePending     = "pending"
	OutcomeImproved    = "improved"
	OutcomeNoChange    = "no_change"
	OutcomeWorsened    = "worsened"
	OutcomeNotFollowed = "not_followed"
)

// ValidOutcomes lists the statuses a follow-up update may set.
var ValidOutcomes = map[string]bool{
	OutcomeImproved:    true,
	OutcomeNoChange:    true,
	OutcomeWorsened:    true,
	OutcomeNotFollowed: true,
}

// CaseRecord is one persisted analysis run plus whatever the practitioner
// recorded afterwards. SymptomCodes duplicates the profile's codes into a
// flat column so co-occurrence queries stay plain SQL.
type CaseRecord struct {
	ID           uuid.UUID           `db:"id" json:"id"`
	DoctorID     *uuid.UUID          `db:"doctor_id" json:"doctor_id,omitempty"`
	PatientID    *uuid.UUID          `db:"patient_id" json:"patient_id,omitempty"`
	Repertory    string              `db:"repertory" json:"repertory"`
	State        string              `db:"state" json:"state"`
	SymptomCodes []string            `db:"symptom_codes" json:"symptom_codes"`
	Profile      *engine.CaseProfile `db:"profile" json:"profile"`
	Result       *engine.Result      `db:"result" json:"result"`

	// Final decision, attached by the practitioner after review.
	FinalRemedyID      *uuid.UUID `db:"final_remedy_id" json:"final_remedy_id,omitempty"`
	FinalRemedy        *string    `db:"final_remedy" json:"final_remedy,omitempty"`
	DecisionPotency    *string    `db:"decision_potency" json:"decision_potency,omitempty"`
	DecisionRepetition *string    `db:"decision_repetition" json:"decision_repetition,omitempty"`
	DecisionNotes      *string    `db:"decision_notes" json:"decision_notes,omitempty"`

	Outcome      string  `db:"outcome" json:"outcome"`
	OutcomeNotes *string `db:"outcome_notes" json:"outcome_notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Decided reports whether a final remedy decision has been attached.
func (r *CaseRecord) Decided() bool { return r.FinalRemedy != nil }

// CoOccurrence is one row of the symptom-to-remedy analytics query: how often
// a remedy was finally chosen for cases containing the symptom, and how often
// that choice was recorded as improved.
type CoOccurrence struct {
	RemedyName string `db:"remedy_name" json:"remedy_name"`
	Cases      int    `db:"cases" json:"cases"`
	Improved   int    `db:"improved" json:"improved"`
}

// SuccessRate summarizes a remedy's historical follow-up results: how many
// decided cases reference it, how many of those improved, and the ratio.
type SuccessRate struct {
	RemedyName string  `json:"remedy_name"`
	Decided    int     `json:"decided"`
	Improved   int     `json:"improved"`
	Rate       float64 `json:"rate"`
}
