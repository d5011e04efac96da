package repertory

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =========== Symptom Repository ===========

type symptomRepoPG struct{ pool *pgxpool.Pool }

func NewSymptomRepoPG(pool *pgxpool.Pool) SymptomRepository { return &symptomRepoPG{pool: pool} }

const symptomCols = `id, code, name, category, synonyms, created_at`

func (r *symptomRepoPG) scan(row pgx.Row) (*Symptom, error) {
	var s Symptom
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.Category, &s.Synonyms, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *symptomRepoPG) Create(ctx context.Context, s *Symptom) error {
	s.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO symptom (id, code, name, category, synonyms)
		VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.Code, s.Name, s.Category, s.Synonyms)
	return err
}

func (r *symptomRepoPG) GetByCode(ctx context.Context, code string) (*Symptom, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT `+symptomCols+` FROM symptom WHERE code = $1`, code))
}

func (r *symptomRepoPG) FindByName(ctx context.Context, name, category string) (*Symptom, error) {
	return r.scan(r.pool.QueryRow(ctx, `
		SELECT `+symptomCols+` FROM symptom
		WHERE category = $2
		  AND (LOWER(name) = LOWER($1)
		       OR EXISTS (SELECT 1 FROM unnest(synonyms) syn WHERE LOWER(syn) = LOWER($1)))
		LIMIT 1`, name, category))
}

func (r *symptomRepoPG) List(ctx context.Context, limit, offset int) ([]*Symptom, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM symptom`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+symptomCols+` FROM symptom ORDER BY code LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Symptom
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

// =========== Rubric Repository ===========

type rubricRepoPG struct{ pool *pgxpool.Pool }

func NewRubricRepoPG(pool *pgxpool.Pool) RubricRepository { return &rubricRepoPG{pool: pool} }

const rubricCols = `id, repertory, chapter, text, linked_symptoms, created_at`

func (r *rubricRepoPG) scan(row pgx.Row) (*Rubric, error) {
	var rb Rubric
	err := row.Scan(&rb.ID, &rb.Repertory, &rb.Chapter, &rb.Text, &rb.LinkedSymptoms, &rb.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rb, nil
}

func (r *rubricRepoPG) Create(ctx context.Context, rb *Rubric) error {
	rb.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO rubric (id, repertory, chapter, text, linked_symptoms)
		VALUES ($1,$2,$3,$4,$5)`,
		rb.ID, rb.Repertory, rb.Chapter, rb.Text, rb.LinkedSymptoms)
	return err
}

func (r *rubricRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Rubric, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT `+rubricCols+` FROM rubric WHERE id = $1`, id))
}

func (r *rubricRepoPG) ListByLinkedCodes(ctx context.Context, codes []string) ([]*Rubric, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+rubricCols+` FROM rubric WHERE linked_symptoms && $1 ORDER BY text`, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Rubric
	for rows.Next() {
		rb, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rb)
	}
	return items, rows.Err()
}

func (r *rubricRepoPG) ListByRepertory(ctx context.Context, repertory string) ([]*Rubric, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+rubricCols+` FROM rubric WHERE repertory = $1 ORDER BY chapter, text`, repertory)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Rubric
	for rows.Next() {
		rb, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rb)
	}
	return items, rows.Err()
}

func (r *rubricRepoPG) SearchText(ctx context.Context, repertory, pattern string, limit, offset int) ([]*Rubric, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM rubric WHERE repertory = $1 AND text ILIKE '%' || $2 || '%'`,
		repertory, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+rubricCols+` FROM rubric
		WHERE repertory = $1 AND text ILIKE '%' || $2 || '%'
		ORDER BY text LIMIT $3 OFFSET $4`,
		repertory, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Rubric
	for rows.Next() {
		rb, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rb)
	}
	return items, total, rows.Err()
}

func (r *rubricRepoPG) List(ctx context.Context, limit, offset int) ([]*Rubric, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM rubric`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+rubricCols+` FROM rubric ORDER BY repertory, chapter, text LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Rubric
	for rows.Next() {
		rb, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rb)
	}
	return items, total, rows.Err()
}

// =========== Remedy Repository ===========

type remedyRepoPG struct{ pool *pgxpool.Pool }

func NewRemedyRepoPG(pool *pgxpool.Pool) RemedyRepository { return &remedyRepoPG{pool: pool} }

const remedyCols = `id, name, kingdom, constitution_traits, better_from, worse_from,
	clinical_indications, keynotes, incompatibles, potencies, created_at`

func (r *remedyRepoPG) scan(row pgx.Row) (*Remedy, error) {
	var rm Remedy
	err := row.Scan(&rm.ID, &rm.Name, &rm.Kingdom, &rm.ConstitutionTraits, &rm.BetterFrom, &rm.WorseFrom,
		&rm.ClinicalIndications, &rm.Keynotes, &rm.Incompatibles, &rm.Potencies, &rm.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

func (r *remedyRepoPG) Create(ctx context.Context, rm *Remedy) error {
	rm.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO remedy (id, name, kingdom, constitution_traits, better_from, worse_from,
			clinical_indications, keynotes, incompatibles, potencies)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rm.ID, rm.Name, rm.Kingdom, rm.ConstitutionTraits, rm.BetterFrom, rm.WorseFrom,
		rm.ClinicalIndications, rm.Keynotes, rm.Incompatibles, rm.Potencies)
	return err
}

func (r *remedyRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Remedy, error) {
	return r.scan(r.pool.QueryRow(ctx,
		`SELECT `+remedyCols+` FROM remedy WHERE id = $1`, id))
}

func (r *remedyRepoPG) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*Remedy, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+remedyCols+` FROM remedy WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Remedy
	for rows.Next() {
		rm, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rm)
	}
	return items, rows.Err()
}

func (r *remedyRepoPG) List(ctx context.Context, limit, offset int) ([]*Remedy, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM remedy`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+remedyCols+` FROM remedy ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Remedy
	for rows.Next() {
		rm, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rm)
	}
	return items, total, rows.Err()
}

// =========== Grade Repository ===========

type gradeRepoPG struct{ pool *pgxpool.Pool }

func NewGradeRepoPG(pool *pgxpool.Pool) GradeRepository { return &gradeRepoPG{pool: pool} }

func (r *gradeRepoPG) Create(ctx context.Context, g *RubricRemedy) error {
	g.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO rubric_remedy (id, rubric_id, remedy_id, grade, repertory)
		VALUES ($1,$2,$3,$4,$5)`,
		g.ID, g.RubricID, g.RemedyID, g.Grade, g.Repertory)
	return err
}

func (r *gradeRepoPG) ListByRubricIDs(ctx context.Context, rubricIDs []uuid.UUID) ([]*RubricRemedy, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, rubric_id, remedy_id, grade, repertory
		FROM rubric_remedy WHERE rubric_id = ANY($1)`, rubricIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*RubricRemedy
	for rows.Next() {
		var g RubricRemedy
		if err := rows.Scan(&g.ID, &g.RubricID, &g.RemedyID, &g.Grade, &g.Repertory); err != nil {
			return nil, err
		}
		items = append(items, &g)
	}
	return items, rows.Err()
}
