package caserecord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/remedia/remedia/internal/domain/engine"
)

// ── Mock Repository ──

type mockRepo struct {
	data map[uuid.UUID]*CaseRecord
}

func newMockRepo() *mockRepo {
	return &mockRepo{data: make(map[uuid.UUID]*CaseRecord)}
}

func (m *mockRepo) Create(_ context.Context, rec *CaseRecord) error {
	rec.ID = uuid.New()
	if rec.Outcome == "" {
		rec.Outcome = OutcomePending
	}
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	m.data[rec.ID] = rec
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*CaseRecord, error) {
	if rec, ok := m.data[id]; ok {
		return rec, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*CaseRecord, int, error) {
	var out []*CaseRecord
	for _, rec := range m.data {
		out = append(out, rec)
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*CaseRecord, int, error) {
	var out []*CaseRecord
	for _, rec := range m.data {
		if rec.PatientID != nil && *rec.PatientID == patientID {
			out = append(out, rec)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) AttachDecision(_ context.Context, rec *CaseRecord) error {
	if _, ok := m.data[rec.ID]; !ok {
		return pgx.ErrNoRows
	}
	rec.UpdatedAt = time.Now()
	m.data[rec.ID] = rec
	return nil
}

func (m *mockRepo) UpdateOutcome(_ context.Context, rec *CaseRecord) error {
	if _, ok := m.data[rec.ID]; !ok {
		return pgx.ErrNoRows
	}
	rec.UpdatedAt = time.Now()
	m.data[rec.ID] = rec
	return nil
}

func (m *mockRepo) RemedyHistory(_ context.Context, patientID uuid.UUID, since time.Time) ([]engine.HistoryEntry, error) {
	var out []engine.HistoryEntry
	for _, rec := range m.data {
		if rec.PatientID == nil || *rec.PatientID != patientID || rec.FinalRemedy == nil {
			continue
		}
		if rec.UpdatedAt.Before(since) {
			continue
		}
		entry := engine.HistoryEntry{RemedyName: *rec.FinalRemedy, Date: rec.UpdatedAt}
		if rec.FinalRemedyID != nil {
			entry.RemedyID = *rec.FinalRemedyID
		}
		out = append(out, entry)
	}
	return out, nil
}

func (m *mockRepo) SuccessRate(_ context.Context, remedyName string, from, to *time.Time) (*SuccessRate, error) {
	sr := &SuccessRate{RemedyName: remedyName}
	for _, rec := range m.data {
		if rec.FinalRemedy == nil || *rec.FinalRemedy != remedyName {
			continue
		}
		if from != nil && rec.UpdatedAt.Before(*from) {
			continue
		}
		if to != nil && !rec.UpdatedAt.Before(*to) {
			continue
		}
		sr.Decided++
		if rec.Outcome == OutcomeImproved {
			sr.Improved++
		}
	}
	if sr.Decided > 0 {
		sr.Rate = float64(sr.Improved) / float64(sr.Decided)
	}
	return sr, nil
}

func (m *mockRepo) CoOccurrence(_ context.Context, symptomCode string, limit int) ([]CoOccurrence, error) {
	counts := make(map[string]*CoOccurrence)
	for _, rec := range m.data {
		if rec.FinalRemedy == nil {
			continue
		}
		var has bool
		for _, c := range rec.SymptomCodes {
			if c == symptomCode {
				has = true
			}
		}
		if !has {
			continue
		}
		co := counts[*rec.FinalRemedy]
		if co == nil {
			co = &CoOccurrence{RemedyName: *rec.FinalRemedy}
			counts[*rec.FinalRemedy] = co
		}
		co.Cases++
		if rec.Outcome == OutcomeImproved {
			co.Improved++
		}
	}
	var out []CoOccurrence
	for _, co := range counts {
		out = append(out, *co)
	}
	return out, nil
}

// ── Fixtures ──

func sampleRecord(patientID uuid.UUID) engine.AnalysisRecord {
	remedyID := uuid.New()
	return engine.AnalysisRecord{
		DoctorID:  uuid.New(),
		PatientID: patientID,
		Repertory: "kent",
		State:     engine.StateResolved,
		Profile: &engine.CaseProfile{
			Mental:  []engine.CaseSymptom{{Code: "MEN-001", Name: "Fear of death", Category: "mental", Weight: 3}},
			General: []engine.CaseSymptom{{Code: "GEN-001", Name: "Thirst", Category: "general", Weight: 2}},
		},
		Result: &engine.Result{
			Suggestions: []engine.Suggestion{
				{RemedyID: remedyID, RemedyName: "Aconitum napellus", Score: 30, Confidence: engine.ConfidenceHigh},
			},
			Summary: engine.Summary{TotalRemedies: 1},
		},
	}
}

// attachSample attaches a decision for the single suggested remedy.
func attachSample(t *testing.T, svc *Service, id uuid.UUID) *CaseRecord {
	t.Helper()
	rec, err := svc.AttachDecision(nil, id, "Aconitum napellus", "30C", "twice daily", "")
	if err != nil {
		t.Fatalf("AttachDecision: %v", err)
	}
	return rec
}

// ── Tests ──

func TestService_RecordAnalysis(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	patientID := uuid.New()

	id, err := svc.RecordAnalysis(nil, sampleRecord(patientID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, err := svc.GetCase(nil, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.PatientID == nil || *rec.PatientID != patientID {
		t.Error("patient id not stored")
	}
	if rec.DoctorID == nil {
		t.Error("doctor id not stored")
	}
	if rec.State != string(engine.StateResolved) {
		t.Errorf("expected resolved, got %s", rec.State)
	}
	if rec.Outcome != OutcomePending {
		t.Errorf("fresh case must start pending, got %s", rec.Outcome)
	}
	if len(rec.SymptomCodes) != 2 {
		t.Errorf("expected 2 flattened symptom codes, got %v", rec.SymptomCodes)
	}
}

func TestService_RecordAnalysis_Anonymous(t *testing.T) {
	svc := NewService(newMockRepo())
	rec := sampleRecord(uuid.Nil)
	rec.DoctorID = uuid.Nil
	id, err := svc.RecordAnalysis(nil, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := svc.GetCase(nil, id)
	if got.PatientID != nil || got.DoctorID != nil {
		t.Error("anonymous case must carry no identifiers")
	}
}

func TestService_AttachDecision(t *testing.T) {
	svc := NewService(newMockRepo())
	id, _ := svc.RecordAnalysis(nil, sampleRecord(uuid.New()))

	rec, err := svc.AttachDecision(nil, id, "aconitum napellus", "200C", "once daily", "classic presentation")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.FinalRemedy == nil || *rec.FinalRemedy != "Aconitum napellus" {
		t.Errorf("expected canonical remedy name, got %v", rec.FinalRemedy)
	}
	if rec.FinalRemedyID == nil {
		t.Error("expected the suggested remedy id to be linked")
	}
	if rec.DecisionPotency == nil || *rec.DecisionPotency != "200C" {
		t.Errorf("unexpected potency: %v", rec.DecisionPotency)
	}
	if rec.DecisionRepetition == nil || *rec.DecisionRepetition != "once daily" {
		t.Errorf("unexpected repetition: %v", rec.DecisionRepetition)
	}
	if rec.DecisionNotes == nil || *rec.DecisionNotes != "classic presentation" {
		t.Errorf("unexpected notes: %v", rec.DecisionNotes)
	}
	if rec.Outcome != OutcomePending {
		t.Errorf("decision must not change outcome, got %s", rec.Outcome)
	}
}

func TestService_AttachDecision_RemedyNotSuggested(t *testing.T) {
	svc := NewService(newMockRepo())
	id, _ := svc.RecordAnalysis(nil, sampleRecord(uuid.New()))
	if _, err := svc.AttachDecision(nil, id, "Sulphur", "30C", "", ""); err == nil {
		t.Error("expected error for a remedy the analysis never suggested")
	}
}

func TestService_AttachDecision_MissingRemedy(t *testing.T) {
	svc := NewService(newMockRepo())
	id, _ := svc.RecordAnalysis(nil, sampleRecord(uuid.New()))
	if _, err := svc.AttachDecision(nil, id, "  ", "30C", "", ""); err == nil {
		t.Error("expected error for blank remedy")
	}
}

func TestService_AttachDecision_MissingCase(t *testing.T) {
	svc := NewService(newMockRepo())
	if _, err := svc.AttachDecision(nil, uuid.New(), "Aconitum napellus", "", "", ""); !errors.Is(err, pgx.ErrNoRows) {
		t.Errorf("expected pgx.ErrNoRows, got %v", err)
	}
}

func TestService_RecordOutcome(t *testing.T) {
	svc := NewService(newMockRepo())
	id, _ := svc.RecordAnalysis(nil, sampleRecord(uuid.New()))
	attachSample(t, svc, id)

	rec, err := svc.RecordOutcome(nil, id, OutcomeImproved, "settled within two days")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Outcome != OutcomeImproved {
		t.Errorf("unexpected outcome: %s", rec.Outcome)
	}
	if rec.OutcomeNotes == nil || *rec.OutcomeNotes != "settled within two days" {
		t.Errorf("unexpected notes: %v", rec.OutcomeNotes)
	}
}

func TestService_RecordOutcome_InvalidOutcome(t *testing.T) {
	svc := NewService(newMockRepo())
	id, _ := svc.RecordAnalysis(nil, sampleRecord(uuid.New()))
	attachSample(t, svc, id)
	if _, err := svc.RecordOutcome(nil, id, "cured", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown outcome value, got %v", err)
	}
	if _, err := svc.RecordOutcome(nil, id, OutcomePending, ""); err == nil {
		t.Error("pending is the initial state, not a follow-up result")
	}
}

func TestService_RecordOutcome_WithoutDecision(t *testing.T) {
	svc := NewService(newMockRepo())
	id, _ := svc.RecordAnalysis(nil, sampleRecord(uuid.New()))
	if _, err := svc.RecordOutcome(nil, id, OutcomeImproved, ""); err == nil {
		t.Error("expected error when no decision was attached")
	}
}

func TestService_RemedyHistory(t *testing.T) {
	svc := NewService(newMockRepo())
	patientID := uuid.New()
	id, _ := svc.RecordAnalysis(nil, sampleRecord(patientID))
	attachSample(t, svc, id)

	history, err := svc.RemedyHistory(nil, patientID, time.Now().AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
	if history[0].RemedyName != "Aconitum napellus" {
		t.Errorf("unexpected remedy: %s", history[0].RemedyName)
	}
}

func TestService_RemedySuccessRate(t *testing.T) {
	svc := NewService(newMockRepo())
	outcomes := []string{OutcomeImproved, OutcomeImproved, OutcomeNoChange}
	for _, outcome := range outcomes {
		id, _ := svc.RecordAnalysis(nil, sampleRecord(uuid.New()))
		attachSample(t, svc, id)
		if _, err := svc.RecordOutcome(nil, id, outcome, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	sr, err := svc.RemedySuccessRate(nil, "Aconitum napellus", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sr.Decided != 3 || sr.Improved != 2 {
		t.Errorf("expected 2/3 improved, got %d/%d", sr.Improved, sr.Decided)
	}
	if sr.Rate < 0.66 || sr.Rate > 0.67 {
		t.Errorf("unexpected rate: %g", sr.Rate)
	}
}

func TestService_RemedySuccessRate_Validation(t *testing.T) {
	svc := NewService(newMockRepo())
	if _, err := svc.RemedySuccessRate(nil, "  ", nil, nil); err == nil {
		t.Error("expected error for blank remedy name")
	}
	from := time.Now()
	to := from.Add(-time.Hour)
	if _, err := svc.RemedySuccessRate(nil, "Aconitum napellus", &from, &to); err == nil {
		t.Error("expected error for inverted time range")
	}
}

func TestService_CoOccurrence(t *testing.T) {
	svc := NewService(newMockRepo())
	id, _ := svc.RecordAnalysis(nil, sampleRecord(uuid.New()))
	attachSample(t, svc, id)
	if _, err := svc.RecordOutcome(nil, id, OutcomeImproved, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := svc.CoOccurrence(nil, "MEN-001", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].RemedyName != "Aconitum napellus" || rows[0].Cases != 1 || rows[0].Improved != 1 {
		t.Errorf("unexpected row: %+v", rows[0])
	}
}

func TestService_CoOccurrence_MissingSymptom(t *testing.T) {
	svc := NewService(newMockRepo())
	if _, err := svc.CoOccurrence(nil, "  ", 10); err == nil {
		t.Error("expected error for blank symptom code")
	}
}
