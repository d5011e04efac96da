package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AnalyzeRequest is one full analysis invocation. PatientID is optional;
// without it the repetition screen consults only the caller-supplied History
// and the stored record is anonymous. History lets callers declare known
// prior prescriptions that are not in this system's records.
type AnalyzeRequest struct {
	DoctorID  uuid.UUID      `json:"doctor_id,omitempty"`
	PatientID uuid.UUID      `json:"patient_id,omitempty"`
	Repertory string         `json:"repertory,omitempty"`
	Case      CaseInput      `json:"case"`
	History   []HistoryEntry `json:"history,omitempty"`
}

// AnalysisRecord is what the facade hands to storage after a successful run.
type AnalysisRecord struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Repertory string
	Profile   *CaseProfile
	State     ResolutionState
	Result    *Result
}

// CaseStore persists analysis outcomes and answers remedy-history queries.
// Implemented by the caserecord service; nil disables persistence and the
// repetition screen.
type CaseStore interface {
	RecordAnalysis(ctx context.Context, rec AnalysisRecord) (uuid.UUID, error)
	RemedyHistory(ctx context.Context, patientID uuid.UUID, since time.Time) ([]HistoryEntry, error)
}

// Facade runs the whole pipeline in order: normalize, match, pool, score,
// adjust, screen, assemble, persist. An empty intermediate result
// short-circuits the run with a NoCoverageError; storage failures pass
// through unchanged so the transport layer can tell the two apart.
type Facade struct {
	normalizer    *Normalizer
	matcher       *Matcher
	pool          *PoolBuilder
	scorer        *Scorer
	clinical      *Clinical
	contradiction *Contradiction
	assembler     *Assembler

	store            CaseStore
	defaultRepertory string
	cfg              Config
	log              zerolog.Logger
	now              func() time.Time
}

func NewFacade(
	symptoms SymptomSource,
	rubrics RubricSource,
	remedies RemedySource,
	grades GradeSource,
	store CaseStore,
	defaultRepertory string,
	cfg Config,
	log zerolog.Logger,
) *Facade {
	return &Facade{
		normalizer:       NewNormalizer(symptoms, cfg),
		matcher:          NewMatcher(rubrics, cfg),
		pool:             NewPoolBuilder(remedies, grades),
		scorer:           NewScorer(cfg),
		clinical:         NewClinical(cfg),
		contradiction:    NewContradiction(cfg),
		assembler:        NewAssembler(cfg),
		store:            store,
		defaultRepertory: defaultRepertory,
		cfg:              cfg,
		log:              log,
		now:              time.Now,
	}
}

// Analyze runs one case through the pipeline and returns the full output.
func (f *Facade) Analyze(ctx context.Context, req AnalyzeRequest) (*Output, error) {
	repertoryName := req.Repertory
	if repertoryName == "" {
		repertoryName = f.defaultRepertory
	}

	profile, err := f.normalizer.Normalize(ctx, req.Case)
	if err != nil {
		return nil, fmt.Errorf("normalize case: %w", err)
	}

	match, err := f.matcher.Match(ctx, profile, repertoryName)
	if err != nil {
		return nil, fmt.Errorf("match rubrics: %w", err)
	}
	if match.State == StateUnresolved {
		return nil, &NoCoverageError{
			Stage:        "rubric_matching",
			Repertory:    repertoryName,
			SymptomCodes: symptomCodes(profile),
			Err:          ErrNoRubricMatches,
		}
	}

	pool, remedyByID, err := f.pool.Build(ctx, match.Selected)
	if err != nil {
		return nil, fmt.Errorf("build remedy pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, &NoCoverageError{
			Stage:        "pool_construction",
			Repertory:    repertoryName,
			SymptomCodes: symptomCodes(profile),
			Err:          ErrEmptyRemedyPool,
		}
	}

	scores := f.scorer.Score(profile, pool, remedyByID)
	f.clinical.Adjust(profile, scores, remedyByID)

	now := f.now()
	history := append([]HistoryEntry(nil), req.History...)
	if f.store != nil && req.PatientID != uuid.Nil {
		since := now.Add(-f.cfg.HistoryLookback)
		stored, err := f.store.RemedyHistory(ctx, req.PatientID, since)
		if err != nil {
			return nil, fmt.Errorf("load remedy history: %w", err)
		}
		history = append(history, stored...)
	}
	f.contradiction.Screen(now, scores, remedyByID, history)

	result := f.assembler.Assemble(profile, scores)

	caseID := uuid.New()
	if f.store != nil {
		caseID, err = f.store.RecordAnalysis(ctx, AnalysisRecord{
			DoctorID:  req.DoctorID,
			PatientID: req.PatientID,
			Repertory: repertoryName,
			Profile:   profile,
			State:     match.State,
			Result:    result,
		})
		if err != nil {
			return nil, fmt.Errorf("persist analysis: %w", err)
		}
	}

	f.log.Debug().
		Str("case_id", caseID.String()).
		Str("repertory", repertoryName).
		Str("state", string(match.State)).
		Int("rubrics_selected", len(match.Selected)).
		Int("pool_size", len(pool)).
		Int("suggestions", len(result.Suggestions)).
		Msg("case analyzed")

	return &Output{
		CaseID:  caseID,
		Profile: profile,
		Rubrics: match,
		Result:  result,
	}, nil
}

func symptomCodes(profile *CaseProfile) []string {
	all := profile.All()
	codes := make([]string, 0, len(all))
	for _, s := range all {
		codes = append(codes, s.Code)
	}
	return codes
}
