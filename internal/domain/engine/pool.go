package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/remedia/remedia/internal/domain/repertory"
)

// PoolBuilder gathers every remedy graded under the selected rubrics into one
// deduplicated candidate pool. Stage 3.
type PoolBuilder struct {
	remedies RemedySource
	grades   GradeSource
}

func NewPoolBuilder(remedies RemedySource, grades GradeSource) *PoolBuilder {
	return &PoolBuilder{remedies: remedies, grades: grades}
}

// Build returns the pooled candidates plus the full remedy records keyed by
// id, which the later stages need for constitution and keynote checks. The
// pool is sorted by accumulated grade descending, remedy name ascending.
func (b *PoolBuilder) Build(ctx context.Context, selected []RubricMatch) ([]RemedyScore, map[uuid.UUID]*repertory.Remedy, error) {
	if len(selected) == 0 {
		return nil, nil, nil
	}

	rubricIDs := make([]uuid.UUID, 0, len(selected))
	byRubric := make(map[uuid.UUID]RubricMatch, len(selected))
	for _, m := range selected {
		rubricIDs = append(rubricIDs, m.Rubric.ID)
		byRubric[m.Rubric.ID] = m
	}

	gradeRows, err := b.grades.ListByRubricIDs(ctx, rubricIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("grade lookup: %w", err)
	}
	if len(gradeRows) == 0 {
		return nil, nil, nil
	}

	pool := make(map[uuid.UUID]*RemedyScore)
	for _, row := range gradeRows {
		match, ok := byRubric[row.RubricID]
		if !ok {
			continue
		}
		score := pool[row.RemedyID]
		if score == nil {
			score = &RemedyScore{RemedyID: row.RemedyID}
			pool[row.RemedyID] = score
		}
		score.Grades = append(score.Grades, RubricGrade{
			RubricID:     row.RubricID,
			RubricText:   match.Rubric.Text,
			Grade:        row.Grade,
			SymptomCodes: match.MatchedSymptoms,
		})
		score.TotalGrade += row.Grade
	}

	remedyIDs := make([]uuid.UUID, 0, len(pool))
	for id := range pool {
		remedyIDs = append(remedyIDs, id)
	}
	remedyRows, err := b.remedies.ListByIDs(ctx, remedyIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("remedy lookup: %w", err)
	}

	remedyByID := make(map[uuid.UUID]*repertory.Remedy, len(remedyRows))
	for _, r := range remedyRows {
		remedyByID[r.ID] = r
		if score, ok := pool[r.ID]; ok {
			score.RemedyName = r.Name
		}
	}

	// Grade rows pointing at a remedy record that no longer exists are
	// dropped rather than carried nameless through the pipeline.
	out := make([]RemedyScore, 0, len(pool))
	for id, score := range pool {
		if _, ok := remedyByID[id]; ok {
			out = append(out, *score)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalGrade != out[j].TotalGrade {
			return out[i].TotalGrade > out[j].TotalGrade
		}
		return out[i].RemedyName < out[j].RemedyName
	})
	return out, remedyByID, nil
}
