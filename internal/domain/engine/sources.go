package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/remedia/remedia/internal/domain/repertory"
)

// The pipeline consumes reference data through these narrow read interfaces.
// The repertory package's pgx repositories satisfy them; tests supply
// map-backed fakes. "Not found" surfaces as pgx.ErrNoRows, distinct from
// transport errors, and only the former may be absorbed by a stage.

type SymptomSource interface {
	GetByCode(ctx context.Context, code string) (*repertory.Symptom, error)
	FindByName(ctx context.Context, name, category string) (*repertory.Symptom, error)
}

type RubricSource interface {
	ListByLinkedCodes(ctx context.Context, codes []string) ([]*repertory.Rubric, error)
	ListByRepertory(ctx context.Context, repertory string) ([]*repertory.Rubric, error)
}

type RemedySource interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*repertory.Remedy, error)
}

type GradeSource interface {
	ListByRubricIDs(ctx context.Context, rubricIDs []uuid.UUID) ([]*repertory.RubricRemedy, error)
}
