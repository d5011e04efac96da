package engine

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/remedia/remedia/internal/domain/repertory"
)

// ── Mock Sources ──

type mockSymptoms struct {
	byCode map[string]*repertory.Symptom
}

func (m *mockSymptoms) GetByCode(_ context.Context, code string) (*repertory.Symptom, error) {
	if s, ok := m.byCode[code]; ok {
		return s, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockSymptoms) FindByName(_ context.Context, name, category string) (*repertory.Symptom, error) {
	for _, s := range m.byCode {
		if s.Category != category {
			continue
		}
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
		for _, syn := range s.Synonyms {
			if strings.EqualFold(syn, name) {
				return s, nil
			}
		}
	}
	return nil, pgx.ErrNoRows
}

type mockRubrics struct {
	rubrics []*repertory.Rubric
}

func (m *mockRubrics) ListByLinkedCodes(_ context.Context, codes []string) ([]*repertory.Rubric, error) {
	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		want[c] = true
	}
	var out []*repertory.Rubric
	for _, r := range m.rubrics {
		for _, linked := range r.LinkedSymptoms {
			if want[linked] {
				out = append(out, r)
				break
			}
		}
	}
	return out, nil
}

func (m *mockRubrics) ListByRepertory(_ context.Context, repertoryName string) ([]*repertory.Rubric, error) {
	var out []*repertory.Rubric
	for _, r := range m.rubrics {
		if r.Repertory == repertoryName {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockRemedies struct {
	data map[uuid.UUID]*repertory.Remedy
}

func (m *mockRemedies) ListByIDs(_ context.Context, ids []uuid.UUID) ([]*repertory.Remedy, error) {
	var out []*repertory.Remedy
	for _, id := range ids {
		if r, ok := m.data[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockGrades struct {
	rows []*repertory.RubricRemedy
}

func (m *mockGrades) ListByRubricIDs(_ context.Context, rubricIDs []uuid.UUID) ([]*repertory.RubricRemedy, error) {
	want := make(map[uuid.UUID]bool, len(rubricIDs))
	for _, id := range rubricIDs {
		want[id] = true
	}
	var out []*repertory.RubricRemedy
	for _, row := range m.rows {
		if want[row.RubricID] {
			out = append(out, row)
		}
	}
	return out, nil
}

type mockStore struct {
	records []AnalysisRecord
	history []HistoryEntry
	lastID  uuid.UUID
}

func (m *mockStore) RecordAnalysis(_ context.Context, rec AnalysisRecord) (uuid.UUID, error) {
	m.records = append(m.records, rec)
	m.lastID = uuid.New()
	return m.lastID, nil
}

func (m *mockStore) RemedyHistory(_ context.Context, _ uuid.UUID, since time.Time) ([]HistoryEntry, error) {
	var out []HistoryEntry
	for _, h := range m.history {
		if !h.Date.Before(since) {
			out = append(out, h)
		}
	}
	return out, nil
}

// failingSymptoms simulates a storage outage rather than a missing row.
type failingSymptoms struct{}

func (f *failingSymptoms) GetByCode(_ context.Context, _ string) (*repertory.Symptom, error) {
	return nil, errors.New("connection refused")
}

func (f *failingSymptoms) FindByName(_ context.Context, _, _ string) (*repertory.Symptom, error) {
	return nil, errors.New("connection refused")
}

// ── Fixtures ──

func newSymptom(code, name, category string, synonyms ...string) *repertory.Symptom {
	return &repertory.Symptom{
		ID:       uuid.New(),
		Code:     code,
		Name:     name,
		Category: category,
		Synonyms: synonyms,
	}
}

func newRubric(repertoryName, text string, linked ...string) *repertory.Rubric {
	return &repertory.Rubric{
		ID:             uuid.New(),
		Repertory:      repertoryName,
		Text:           text,
		LinkedSymptoms: linked,
	}
}

func newRemedy(name string) *repertory.Remedy {
	return &repertory.Remedy{ID: uuid.New(), Name: name}
}
