package caserecord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/remedia/remedia/internal/domain/engine"
)

// ErrInvalidInput marks caller mistakes so the transport layer can map them
// to 400 while storage failures stay 5xx.
var ErrInvalidInput = errors.New("invalid input")

// Service owns case persistence, decision and outcome tracking. It also
// implements engine.CaseStore, so the analysis facade writes through it.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RecordAnalysis stores one finished pipeline run and returns the new case id.
func (s *Service) RecordAnalysis(ctx context.Context, rec engine.AnalysisRecord) (uuid.UUID, error) {
	cr := &CaseRecord{
		Repertory:    rec.Repertory,
		State:        string(rec.State),
		SymptomCodes: profileCodes(rec.Profile),
		Profile:      rec.Profile,
		Result:       rec.Result,
		Outcome:      OutcomePending,
	}
	if rec.DoctorID != uuid.Nil {
		id := rec.DoctorID
		cr.DoctorID = &id
	}
	if rec.PatientID != uuid.Nil {
		id := rec.PatientID
		cr.PatientID = &id
	}
	if err := s.repo.Create(ctx, cr); err != nil {
		return uuid.Nil, err
	}
	return cr.ID, nil
}

// RemedyHistory satisfies engine.CaseStore for the repetition screen.
func (s *Service) RemedyHistory(ctx context.Context, patientID uuid.UUID, since time.Time) ([]engine.HistoryEntry, error) {
	return s.repo.RemedyHistory(ctx, patientID, since)
}

func (s *Service) GetCase(ctx context.Context, id uuid.UUID) (*CaseRecord, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListCases(ctx context.Context, limit, offset int) ([]*CaseRecord, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListCasesByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*CaseRecord, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// AttachDecision sets the practitioner's final prescription on an existing
// case. The chosen remedy must be one the analysis actually suggested, so
// outcome analytics stay attributable.
func (s *Service) AttachDecision(ctx context.Context, id uuid.UUID, remedyName, potency, repetition, notes string) (*CaseRecord, error) {
	remedyName = strings.TrimSpace(remedyName)
	if remedyName == "" {
		return nil, fmt.Errorf("%w: final remedy is required", ErrInvalidInput)
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var remedyID *uuid.UUID
	found := false
	if rec.Result != nil {
		for _, sg := range rec.Result.Suggestions {
			if strings.EqualFold(sg.RemedyName, remedyName) {
				remedyName = sg.RemedyName
				rid := sg.RemedyID
				remedyID = &rid
				found = true
				break
			}
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: remedy %q was not suggested for this case", ErrInvalidInput, remedyName)
	}

	rec.FinalRemedyID = remedyID
	rec.FinalRemedy = &remedyName
	rec.DecisionPotency = optional(potency)
	rec.DecisionRepetition = optional(repetition)
	rec.DecisionNotes = optional(notes)
	if err := s.repo.AttachDecision(ctx, rec); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// RecordOutcome sets the observed follow-up status on an existing case. A
// non-pending outcome requires a decision to have been attached first.
func (s *Service) RecordOutcome(ctx context.Context, id uuid.UUID, outcome, notes string) (*CaseRecord, error) {
	if !ValidOutcomes[outcome] {
		return nil, fmt.Errorf("%w: invalid outcome %q", ErrInvalidInput, outcome)
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rec.Decided() {
		return nil, fmt.Errorf("%w: case has no final remedy decision to follow up on", ErrInvalidInput)
	}

	rec.Outcome = outcome
	rec.OutcomeNotes = optional(notes)
	if err := s.repo.UpdateOutcome(ctx, rec); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// RemedySuccessRate reports a remedy's historical improved-to-decided ratio,
// optionally bounded to decisions inside [from, to).
func (s *Service) RemedySuccessRate(ctx context.Context, remedyName string, from, to *time.Time) (*SuccessRate, error) {
	if strings.TrimSpace(remedyName) == "" {
		return nil, fmt.Errorf("%w: remedy name is required", ErrInvalidInput)
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, fmt.Errorf("%w: invalid time range", ErrInvalidInput)
	}
	return s.repo.SuccessRate(ctx, strings.TrimSpace(remedyName), from, to)
}

// CoOccurrence reports which remedies were finally prescribed for cases
// containing the symptom, with improvement counts.
func (s *Service) CoOccurrence(ctx context.Context, symptomCode string, limit int) ([]CoOccurrence, error) {
	if strings.TrimSpace(symptomCode) == "" {
		return nil, fmt.Errorf("%w: symptom code is required", ErrInvalidInput)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.CoOccurrence(ctx, symptomCode, limit)
}

func profileCodes(p *engine.CaseProfile) []string {
	if p == nil {
		return nil
	}
	all := p.All()
	codes := make([]string, 0, len(all))
	for _, s := range all {
		codes = append(codes, s.Code)
	}
	return codes
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
