package caserecord

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/remedia/remedia/internal/domain/engine"
)

type Repository interface {
	Create(ctx context.Context, rec *CaseRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*CaseRecord, error)
	List(ctx context.Context, limit, offset int) ([]*CaseRecord, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*CaseRecord, int, error)

	// AttachDecision stores the practitioner's final prescription on an
	// existing record. Returns pgx.ErrNoRows when the case does not exist.
	AttachDecision(ctx context.Context, rec *CaseRecord) error

	// UpdateOutcome sets the follow-up outcome status and notes. Returns
	// pgx.ErrNoRows when the case does not exist.
	UpdateOutcome(ctx context.Context, rec *CaseRecord) error

	// RemedyHistory returns the finalized prescriptions of a patient since
	// the given time, newest first.
	RemedyHistory(ctx context.Context, patientID uuid.UUID, since time.Time) ([]engine.HistoryEntry, error)

	// SuccessRate aggregates follow-up results for one remedy, optionally
	// bounded to decisions inside [from, to).
	SuccessRate(ctx context.Context, remedyName string, from, to *time.Time) (*SuccessRate, error)

	// CoOccurrence aggregates which remedies were finally chosen for cases
	// containing the symptom code.
	CoOccurrence(ctx context.Context, symptomCode string, limit int) ([]CoOccurrence, error)
}
