package integration

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/remedia/remedia/internal/domain/caserecord"
	"github.com/remedia/remedia/internal/domain/engine"
	"github.com/remedia/remedia/internal/domain/repertory"
)

func newTestFacade() (*engine.Facade, *caserecord.Service) {
	store := caserecord.NewService(caserecord.NewRepoPG(globalDB.Pool))
	facade := engine.NewFacade(
		repertory.NewSymptomRepoPG(globalDB.Pool),
		repertory.NewRubricRepoPG(globalDB.Pool),
		repertory.NewRemedyRepoPG(globalDB.Pool),
		repertory.NewGradeRepoPG(globalDB.Pool),
		store,
		"kent",
		engine.DefaultConfig(),
		zerolog.Nop(),
	)
	return facade, store
}

// seedAnalysisFixture creates one mental symptom, one linked rubric, and one
// grade-3 remedy in a fresh repertory.
func seedAnalysisFixture(t *testing.T, ctx context.Context) (rep, code, remedyName string) {
	t.Helper()
	rep = uniqueCode("rep")
	code = uniqueCode("MEN")
	remedyName = "Aconitum " + uniqueCode("nap")

	createTestSymptom(t, ctx, code, "Fear of death", repertory.CategoryMental, nil)
	rubric := createTestRubric(t, ctx, rep, "Mind", "Fear of death, sudden", []string{code})
	remedy := createTestRemedy(t, ctx, remedyName)
	createTestGrade(t, ctx, rubric.ID, remedy.ID, 3, rep)
	return rep, code, remedyName
}

func TestAnalyze_EndToEnd(t *testing.T) {
	ctx := context.Background()
	facade, store := newTestFacade()
	rep, code, remedyName := seedAnalysisFixture(t, ctx)

	doctorID := uuid.New()
	patientID := uuid.New()
	out, err := facade.Analyze(ctx, engine.AnalyzeRequest{
		DoctorID:  doctorID,
		PatientID: patientID,
		Repertory: rep,
		Case: engine.CaseInput{
			Mental: []engine.SymptomInput{{Text: code}},
		},
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if out.Rubrics.State != engine.StateResolved {
		t.Errorf("expected resolved state, got %s", out.Rubrics.State)
	}
	if len(out.Result.Suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(out.Result.Suggestions))
	}
	sg := out.Result.Suggestions[0]
	if sg.RemedyName != remedyName {
		t.Errorf("expected %s, got %s", remedyName, sg.RemedyName)
	}
	// grade 3 x mental weight 3 x multiplier 1.25, full coverage, mental
	// dominance boost.
	if sg.Score != 26.25 {
		t.Errorf("expected score 26.25, got %g", sg.Score)
	}
	if sg.Confidence != engine.ConfidenceMedium {
		t.Errorf("expected medium confidence, got %s", sg.Confidence)
	}
	if sg.Potency != "6C" || sg.Repetition != "twice daily" {
		t.Errorf("unexpected dosing guidance: %s / %s", sg.Potency, sg.Repetition)
	}

	rec, err := store.GetCase(ctx, out.CaseID)
	if err != nil {
		t.Fatalf("analysis was not persisted: %v", err)
	}
	if rec.DoctorID == nil || *rec.DoctorID != doctorID {
		t.Errorf("unexpected doctor on stored case: %v", rec.DoctorID)
	}
	if rec.PatientID == nil || *rec.PatientID != patientID {
		t.Errorf("unexpected patient on stored case: %v", rec.PatientID)
	}
	if rec.State != string(engine.StateResolved) {
		t.Errorf("unexpected stored state: %s", rec.State)
	}
	if len(rec.SymptomCodes) != 1 || rec.SymptomCodes[0] != code {
		t.Errorf("unexpected stored symptom codes: %v", rec.SymptomCodes)
	}
}

func TestAnalyze_RepetitionWarningFromHistory(t *testing.T) {
	ctx := context.Background()
	facade, store := newTestFacade()
	rep, code, remedyName := seedAnalysisFixture(t, ctx)

	patientID := uuid.New()
	req := engine.AnalyzeRequest{
		PatientID: patientID,
		Repertory: rep,
		Case: engine.CaseInput{
			Mental: []engine.SymptomInput{{Text: code}},
		},
	}

	first, err := facade.Analyze(ctx, req)
	if err != nil {
		t.Fatalf("first Analyze: %v", err)
	}
	if _, err := store.AttachDecision(ctx, first.CaseID, remedyName, "6C", "twice daily", ""); err != nil {
		t.Fatalf("AttachDecision: %v", err)
	}
	if _, err := store.RecordOutcome(ctx, first.CaseID, caserecord.OutcomeImproved, ""); err != nil {
		t.Fatalf("RecordOutcome: %v", err)
	}

	second, err := facade.Analyze(ctx, req)
	if err != nil {
		t.Fatalf("second Analyze: %v", err)
	}
	sg := second.Result.Suggestions[0]
	if len(sg.Warnings) != 1 || sg.Warnings[0].Type != engine.WarningRepetition {
		t.Fatalf("expected a repetition warning, got %+v", sg.Warnings)
	}
	if sg.Score != 21.25 {
		t.Errorf("expected penalized score 21.25, got %g", sg.Score)
	}
}

func TestAnalyze_NoCoverage(t *testing.T) {
	ctx := context.Background()
	facade, _ := newTestFacade()

	_, err := facade.Analyze(ctx, engine.AnalyzeRequest{
		Repertory: uniqueCode("empty-rep"),
		Case: engine.CaseInput{
			General: []engine.SymptomInput{{Text: "entirely unknown complaint"}},
		},
	})
	if err == nil {
		t.Fatal("expected no-coverage error")
	}
	if !engine.IsNoCoverage(err) {
		t.Fatalf("expected no-coverage classification, got %v", err)
	}
	if !errors.Is(err, engine.ErrNoRubricMatches) {
		t.Errorf("expected ErrNoRubricMatches, got %v", err)
	}

	var nc *engine.NoCoverageError
	if !errors.As(err, &nc) {
		t.Fatalf("expected NoCoverageError, got %T", err)
	}
	if nc.Stage != "rubric_matching" {
		t.Errorf("unexpected stage: %s", nc.Stage)
	}
	// The unknown text must have been kept as a placeholder code.
	if len(nc.SymptomCodes) != 1 || !strings.HasPrefix(nc.SymptomCodes[0], "UNR-") {
		t.Errorf("expected a placeholder code, got %v", nc.SymptomCodes)
	}
}
