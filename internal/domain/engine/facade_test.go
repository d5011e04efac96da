package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/remedia/remedia/internal/domain/repertory"
)

type facadeFixture struct {
	facade   *Facade
	store    *mockStore
	aconitum *repertory.Remedy
	arsen    *repertory.Remedy
}

func newFacadeFixture(withGrades bool) *facadeFixture {
	fearOfDeath := newSymptom("MEN-001", "Fear of death", repertory.CategoryMental)
	thirst := newSymptom("GEN-001", "Thirst for cold water", repertory.CategoryGeneral)
	symptoms := &mockSymptoms{byCode: map[string]*repertory.Symptom{
		"MEN-001": fearOfDeath,
		"GEN-001": thirst,
	}}

	r1 := newRubric("kent", "Mind; fear of death", "MEN-001")
	r2 := newRubric("kent", "Stomach; thirst for cold water", "GEN-001")
	rubrics := &mockRubrics{rubrics: []*repertory.Rubric{r1, r2}}

	aconitum := newRemedy("Aconitum napellus")
	aconitum.Keynotes = []string{"fear of death"}
	arsen := newRemedy("Arsenicum album")
	remedies := &mockRemedies{data: map[uuid.UUID]*repertory.Remedy{
		aconitum.ID: aconitum,
		arsen.ID:    arsen,
	}}

	grades := &mockGrades{}
	if withGrades {
		grades.rows = []*repertory.RubricRemedy{
			{ID: uuid.New(), RubricID: r1.ID, RemedyID: aconitum.ID, Grade: 3, Repertory: "kent"},
			{ID: uuid.New(), RubricID: r1.ID, RemedyID: arsen.ID, Grade: 2, Repertory: "kent"},
			{ID: uuid.New(), RubricID: r2.ID, RemedyID: arsen.ID, Grade: 2, Repertory: "kent"},
		}
	}

	store := &mockStore{}
	facade := NewFacade(symptoms, rubrics, remedies, grades, store, "kent", DefaultConfig(), zerolog.Nop())
	return &facadeFixture{facade: facade, store: store, aconitum: aconitum, arsen: arsen}
}

func analyzeInput() CaseInput {
	return CaseInput{
		Mental:  []SymptomInput{{Text: "MEN-001"}},
		General: []SymptomInput{{Text: "thirst for cold water"}},
	}
}

func TestFacade_EndToEnd(t *testing.T) {
	f := newFacadeFixture(true)
	out, err := f.facade.Analyze(nil, AnalyzeRequest{Case: analyzeInput()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Rubrics.State != StateResolved {
		t.Errorf("expected resolved, got %s", out.Rubrics.State)
	}
	if len(out.Result.Suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(out.Result.Suggestions))
	}
	if out.Result.Summary.TotalRemedies != 2 {
		t.Errorf("expected total 2, got %d", out.Result.Summary.TotalRemedies)
	}

	// Persisted through the store with the id surfaced to the caller.
	if len(f.store.records) != 1 {
		t.Fatalf("expected 1 persisted record, got %d", len(f.store.records))
	}
	if out.CaseID != f.store.lastID {
		t.Errorf("case id %s does not match persisted id %s", out.CaseID, f.store.lastID)
	}
	rec := f.store.records[0]
	if rec.State != StateResolved || rec.Repertory != "kent" {
		t.Errorf("unexpected record: state=%s repertory=%s", rec.State, rec.Repertory)
	}
	if rec.Profile == nil || rec.Result == nil {
		t.Error("record must carry profile and result")
	}
}

func TestFacade_NoRubricMatches(t *testing.T) {
	f := newFacadeFixture(true)
	_, err := f.facade.Analyze(nil, AnalyzeRequest{Case: CaseInput{
		Particular: []SymptomInput{{Text: "completely unheard of complaint"}},
	}})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNoCoverage(err) {
		t.Errorf("expected a no-coverage error, got %v", err)
	}
	if !errors.Is(err, ErrNoRubricMatches) {
		t.Errorf("expected ErrNoRubricMatches, got %v", err)
	}
	var nc *NoCoverageError
	if !errors.As(err, &nc) {
		t.Fatalf("expected NoCoverageError, got %T", err)
	}
	if nc.Stage != "rubric_matching" || nc.Repertory != "kent" {
		t.Errorf("unexpected context: %+v", nc)
	}
	if len(f.store.records) != 0 {
		t.Error("failed runs must not be persisted")
	}
}

func TestFacade_EmptyRemedyPool(t *testing.T) {
	f := newFacadeFixture(false)
	_, err := f.facade.Analyze(nil, AnalyzeRequest{Case: analyzeInput()})
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrEmptyRemedyPool) {
		t.Errorf("expected ErrEmptyRemedyPool, got %v", err)
	}
}

func TestFacade_HistoryDrivesRepetitionWarning(t *testing.T) {
	f := newFacadeFixture(true)
	f.store.history = []HistoryEntry{
		{RemedyID: f.aconitum.ID, RemedyName: "Aconitum napellus", Date: time.Now().AddDate(0, 0, -10)},
	}

	out, err := f.facade.Analyze(nil, AnalyzeRequest{
		PatientID: uuid.New(),
		Case:      analyzeInput(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var warned bool
	for _, sg := range out.Result.Suggestions {
		if sg.RemedyName == "Aconitum napellus" {
			for _, w := range sg.Warnings {
				if w.Type == WarningRepetition {
					warned = true
				}
			}
		}
	}
	if !warned {
		t.Error("expected a repetition warning on Aconitum napellus")
	}
}

func TestFacade_CallerSuppliedHistory(t *testing.T) {
	f := newFacadeFixture(true)

	// Anonymous case, so the store is never consulted; the warning must
	// come from the history the caller declared on the request.
	out, err := f.facade.Analyze(nil, AnalyzeRequest{
		Case: analyzeInput(),
		History: []HistoryEntry{
			{RemedyID: f.aconitum.ID, RemedyName: "Aconitum napellus", Date: time.Now().AddDate(0, 0, -5)},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var warnings []Warning
	for _, sg := range out.Result.Suggestions {
		if sg.RemedyName == "Aconitum napellus" {
			warnings = sg.Warnings
		}
	}
	if len(warnings) != 1 || warnings[0].Type != WarningRepetition {
		t.Fatalf("expected one repetition warning, got %+v", warnings)
	}
}

func TestFacade_AnonymousCaseSkipsHistory(t *testing.T) {
	f := newFacadeFixture(true)
	f.store.history = []HistoryEntry{
		{RemedyID: f.aconitum.ID, RemedyName: "Aconitum napellus", Date: time.Now().AddDate(0, 0, -10)},
	}

	out, err := f.facade.Analyze(nil, AnalyzeRequest{Case: analyzeInput()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, sg := range out.Result.Suggestions {
		if len(sg.Warnings) != 0 {
			t.Errorf("anonymous case must not trigger repetition warnings, got %v", sg.Warnings)
		}
	}
}

func TestFacade_NilStoreStillAnalyzes(t *testing.T) {
	r1 := newRubric("kent", "Mind; fear of death", "MEN-001")
	aconitum := newRemedy("Aconitum napellus")
	facade := NewFacade(
		&mockSymptoms{byCode: map[string]*repertory.Symptom{
			"MEN-001": newSymptom("MEN-001", "Fear of death", repertory.CategoryMental),
		}},
		&mockRubrics{rubrics: []*repertory.Rubric{r1}},
		&mockRemedies{data: map[uuid.UUID]*repertory.Remedy{aconitum.ID: aconitum}},
		&mockGrades{rows: []*repertory.RubricRemedy{
			{ID: uuid.New(), RubricID: r1.ID, RemedyID: aconitum.ID, Grade: 3, Repertory: "kent"},
		}},
		nil, "kent", DefaultConfig(), zerolog.Nop(),
	)

	out, err := facade.Analyze(nil, AnalyzeRequest{Case: CaseInput{
		Mental: []SymptomInput{{Text: "MEN-001"}},
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.CaseID == uuid.Nil {
		t.Error("expected a generated case id without a store")
	}
	if len(out.Result.Suggestions) != 1 {
		t.Errorf("expected 1 suggestion, got %d", len(out.Result.Suggestions))
	}
}

func TestFacade_DefaultRepertoryApplied(t *testing.T) {
	f := newFacadeFixture(true)
	out, err := f.facade.Analyze(nil, AnalyzeRequest{Case: analyzeInput()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Result.Suggestions) == 0 {
		t.Error("expected suggestions from the default repertory")
	}
	if f.store.records[0].Repertory != "kent" {
		t.Errorf("expected default repertory kent, got %s", f.store.records[0].Repertory)
	}
}
