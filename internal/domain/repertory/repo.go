package repertory

import (
	"context"

	"github.com/google/uuid"
)

type SymptomRepository interface {
	Create(ctx context.Context, s *Symptom) error
	GetByCode(ctx context.Context, code string) (*Symptom, error)
	// FindByName performs a case-insensitive lookup on name and synonyms,
	// scoped to a category.
	FindByName(ctx context.Context, name, category string) (*Symptom, error)
	List(ctx context.Context, limit, offset int) ([]*Symptom, int, error)
}

type RubricRepository interface {
	Create(ctx context.Context, r *Rubric) error
	GetByID(ctx context.Context, id uuid.UUID) (*Rubric, error)
	// ListByLinkedCodes returns rubrics whose linked symptom set intersects
	// the given codes.
	ListByLinkedCodes(ctx context.Context, codes []string) ([]*Rubric, error)
	// ListByRepertory returns every rubric of one reference source.
	ListByRepertory(ctx context.Context, repertory string) ([]*Rubric, error)
	// SearchText matches rubric display text against a pattern within one
	// reference source.
	SearchText(ctx context.Context, repertory, pattern string, limit, offset int) ([]*Rubric, int, error)
	List(ctx context.Context, limit, offset int) ([]*Rubric, int, error)
}

type RemedyRepository interface {
	Create(ctx context.Context, r *Remedy) error
	GetByID(ctx context.Context, id uuid.UUID) (*Remedy, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*Remedy, error)
	List(ctx context.Context, limit, offset int) ([]*Remedy, int, error)
}

type GradeRepository interface {
	Create(ctx context.Context, g *RubricRemedy) error
	// ListByRubricIDs returns all grade rows for the given rubric set.
	ListByRubricIDs(ctx context.Context, rubricIDs []uuid.UUID) ([]*RubricRemedy, error)
}
