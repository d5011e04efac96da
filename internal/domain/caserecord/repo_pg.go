package caserecord

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/remedia/remedia/internal/domain/engine"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const caseCols = `id, doctor_id, patient_id, repertory, state, symptom_codes, profile, result,
	final_remedy_id, final_remedy, decision_potency, decision_repetition, decision_notes,
	outcome, outcome_notes, created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*CaseRecord, error) {
	var (
		rec         CaseRecord
		profileJSON []byte
		resultJSON  []byte
	)
	err := row.Scan(&rec.ID, &rec.DoctorID, &rec.PatientID, &rec.Repertory, &rec.State,
		&rec.SymptomCodes, &profileJSON, &resultJSON,
		&rec.FinalRemedyID, &rec.FinalRemedy, &rec.DecisionPotency, &rec.DecisionRepetition,
		&rec.DecisionNotes, &rec.Outcome, &rec.OutcomeNotes, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(profileJSON) > 0 {
		if err := json.Unmarshal(profileJSON, &rec.Profile); err != nil {
			return nil, fmt.Errorf("decode case profile: %w", err)
		}
	}
	if len(resultJSON) > 0 {
		if err := json.Unmarshal(resultJSON, &rec.Result); err != nil {
			return nil, fmt.Errorf("decode case result: %w", err)
		}
	}
	return &rec, nil
}

func (r *repoPG) Create(ctx context.Context, rec *CaseRecord) error {
	rec.ID = uuid.New()
	if rec.Outcome == "" {
		rec.Outcome = OutcomePending
	}
	profileJSON, err := json.Marshal(rec.Profile)
	if err != nil {
		return fmt.Errorf("encode case profile: %w", err)
	}
	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("encode case result: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO case_record (id, doctor_id, patient_id, repertory, state, symptom_codes, profile, result, outcome)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rec.ID, rec.DoctorID, rec.PatientID, rec.Repertory, rec.State, rec.SymptomCodes,
		profileJSON, resultJSON, rec.Outcome)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*CaseRecord, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT `+caseCols+` FROM case_record WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*CaseRecord, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM case_record`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+caseCols+` FROM case_record ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*CaseRecord
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*CaseRecord, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM case_record WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+caseCols+` FROM case_record
		WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*CaseRecord
	for rows.Next() {
		rec, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}

func (r *repoPG) AttachDecision(ctx context.Context, rec *CaseRecord) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE case_record
		SET final_remedy_id = $2, final_remedy = $3, decision_potency = $4,
		    decision_repetition = $5, decision_notes = $6, updated_at = NOW()
		WHERE id = $1`,
		rec.ID, rec.FinalRemedyID, rec.FinalRemedy, rec.DecisionPotency,
		rec.DecisionRepetition, rec.DecisionNotes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) UpdateOutcome(ctx context.Context, rec *CaseRecord) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE case_record
		SET outcome = $2, outcome_notes = $3, updated_at = NOW()
		WHERE id = $1`,
		rec.ID, rec.Outcome, rec.OutcomeNotes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) RemedyHistory(ctx context.Context, patientID uuid.UUID, since time.Time) ([]engine.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT final_remedy_id, final_remedy, updated_at
		FROM case_record
		WHERE patient_id = $1 AND final_remedy IS NOT NULL AND updated_at >= $2
		ORDER BY updated_at DESC`,
		patientID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []engine.HistoryEntry
	for rows.Next() {
		var (
			id   *uuid.UUID
			name string
			date time.Time
		)
		if err := rows.Scan(&id, &name, &date); err != nil {
			return nil, err
		}
		entry := engine.HistoryEntry{RemedyName: name, Date: date}
		if id != nil {
			entry.RemedyID = *id
		}
		items = append(items, entry)
	}
	return items, rows.Err()
}

func (r *repoPG) SuccessRate(ctx context.Context, remedyName string, from, to *time.Time) (*SuccessRate, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE outcome = 'improved')
		FROM case_record
		WHERE LOWER(final_remedy) = LOWER($1)`
	args := []interface{}{remedyName}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND updated_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND updated_at < $%d", len(args))
	}

	sr := &SuccessRate{RemedyName: strings.TrimSpace(remedyName)}
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&sr.Decided, &sr.Improved); err != nil {
		return nil, err
	}
	if sr.Decided > 0 {
		sr.Rate = float64(sr.Improved) / float64(sr.Decided)
	}
	return sr, nil
}

func (r *repoPG) CoOccurrence(ctx context.Context, symptomCode string, limit int) ([]CoOccurrence, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT final_remedy,
		       COUNT(*) AS cases,
		       COUNT(*) FILTER (WHERE outcome = 'improved') AS improved
		FROM case_record
		WHERE $1 = ANY(symptom_codes) AND final_remedy IS NOT NULL
		GROUP BY final_remedy
		ORDER BY cases DESC, final_remedy
		LIMIT $2`,
		symptomCode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CoOccurrence
	for rows.Next() {
		var c CoOccurrence
		if err := rows.Scan(&c.RemedyName, &c.Cases, &c.Improved); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
