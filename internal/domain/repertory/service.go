package repertory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	symptoms SymptomRepository
	rubrics  RubricRepository
	remedies RemedyRepository
	grades   GradeRepository
}

func NewService(
	symptoms SymptomRepository,
	rubrics RubricRepository,
	remedies RemedyRepository,
	grades GradeRepository,
) *Service {
	return &Service{
		symptoms: symptoms,
		rubrics:  rubrics,
		remedies: remedies,
		grades:   grades,
	}
}

// -- Symptom --

func (s *Service) CreateSymptom(ctx context.Context, sym *Symptom) error {
	if sym.Code == "" {
		return fmt.Errorf("code is required")
	}
	if sym.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !ValidCategories[sym.Category] {
		return fmt.Errorf("invalid category: %s", sym.Category)
	}
	return s.symptoms.Create(ctx, sym)
}

func (s *Service) GetSymptomByCode(ctx context.Context, code string) (*Symptom, error) {
	return s.symptoms.GetByCode(ctx, code)
}

func (s *Service) FindSymptomByName(ctx context.Context, name, category string) (*Symptom, error) {
	if !ValidCategories[category] {
		return nil, fmt.Errorf("invalid category: %s", category)
	}
	return s.symptoms.FindByName(ctx, name, category)
}

func (s *Service) ListSymptoms(ctx context.Context, limit, offset int) ([]*Symptom, int, error) {
	return s.symptoms.List(ctx, limit, offset)
}

// -- Rubric --

func (s *Service) CreateRubric(ctx context.Context, r *Rubric) error {
	if r.Repertory == "" {
		return fmt.Errorf("repertory is required")
	}
	if r.Text == "" {
		return fmt.Errorf("text is required")
	}
	return s.rubrics.Create(ctx, r)
}

func (s *Service) GetRubric(ctx context.Context, id uuid.UUID) (*Rubric, error) {
	return s.rubrics.GetByID(ctx, id)
}

func (s *Service) SearchRubrics(ctx context.Context, repertory, pattern string, limit, offset int) ([]*Rubric, int, error) {
	if repertory == "" {
		return nil, 0, fmt.Errorf("repertory is required")
	}
	return s.rubrics.SearchText(ctx, repertory, pattern, limit, offset)
}

func (s *Service) ListRubrics(ctx context.Context, limit, offset int) ([]*Rubric, int, error) {
	return s.rubrics.List(ctx, limit, offset)
}

// -- Remedy --

func (s *Service) CreateRemedy(ctx context.Context, r *Remedy) error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.remedies.Create(ctx, r)
}

func (s *Service) GetRemedy(ctx context.Context, id uuid.UUID) (*Remedy, error) {
	return s.remedies.GetByID(ctx, id)
}

func (s *Service) ListRemedies(ctx context.Context, limit, offset int) ([]*Remedy, int, error) {
	return s.remedies.List(ctx, limit, offset)
}

// -- Grade mapping --

func (s *Service) CreateGrade(ctx context.Context, g *RubricRemedy) error {
	if g.RubricID == uuid.Nil {
		return fmt.Errorf("rubric_id is required")
	}
	if g.RemedyID == uuid.Nil {
		return fmt.Errorf("remedy_id is required")
	}
	if g.Grade < MinGrade || g.Grade > MaxGrade {
		return fmt.Errorf("grade must be between %d and %d, got %d", MinGrade, MaxGrade, g.Grade)
	}
	return s.grades.Create(ctx, g)
}

func (s *Service) ListGradesByRubrics(ctx context.Context, rubricIDs []uuid.UUID) ([]*RubricRemedy, error) {
	return s.grades.ListByRubricIDs(ctx, rubricIDs)
}
