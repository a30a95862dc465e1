package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shubukan/shubukan-backend/internal/model"
)

const resultColumns = `id, set_id, exam_id, set_number, candidate_id, selections,
	marks_obtained, correct_count, incorrect_count, single_attempt, submitted_at`

// ResultRepository handles result data access.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Create inserts a graded result. For single-attempt rows the insert relies on
// the partial unique index over (set_id, candidate_id): a concurrent duplicate
// hits ON CONFLICT DO NOTHING, returns no row, and surfaces as pgx.ErrNoRows.
func (r *ResultRepository) Create(ctx context.Context, res *model.Result) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO results (set_id, exam_id, set_number, candidate_id, selections,
		     marks_obtained, correct_count, incorrect_count, single_attempt)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (set_id, candidate_id) WHERE single_attempt DO NOTHING
		 RETURNING id, submitted_at`,
		res.SetID, res.ExamID, res.SetNumber, res.CandidateID, res.Selections,
		res.MarksObtained, res.CorrectCount, res.IncorrectCount, res.SingleAttempt,
	).Scan(&res.ID, &res.SubmittedAt)
}

// Exists reports whether the candidate already has a result for this set.
// Advisory fast path only; the insert constraint is the real guarantee.
func (r *ResultRepository) Exists(ctx context.Context, setID uuid.UUID, candidateID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM results WHERE set_id = $1 AND candidate_id = $2)`,
		setID, candidateID).Scan(&exists)
	return exists, err
}

// GetByID retrieves one result.
func (r *ResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Result, error) {
	return scanResult(r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM results WHERE id = $1`, id))
}

func scanResult(row pgx.Row) (*model.Result, error) {
	res := &model.Result{}
	err := row.Scan(&res.ID, &res.SetID, &res.ExamID, &res.SetNumber, &res.CandidateID,
		&res.Selections, &res.MarksObtained, &res.CorrectCount, &res.IncorrectCount,
		&res.SingleAttempt, &res.SubmittedAt)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func collectResults(rows pgx.Rows) ([]model.Result, error) {
	var results []model.Result
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}
	return results, rows.Err()
}

// ListPaginated retrieves all results, newest first.
func (r *ResultRepository) ListPaginated(ctx context.Context, limit, offset int) ([]model.Result, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM results`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+` FROM results
		 ORDER BY submitted_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results, err := collectResults(rows)
	return results, total, err
}

// ListByCandidate retrieves all of a candidate's results, newest first.
func (r *ResultRepository) ListByCandidate(ctx context.Context, candidateID string) ([]model.Result, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+` FROM results
		 WHERE candidate_id = $1
		 ORDER BY submitted_at DESC`, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectResults(rows)
}

// ListForInstructor retrieves results for sets the instructor may see: their
// own, allInstructors, and public sets. An optional day restricts submitted_at
// to that calendar day.
func (r *ResultRepository) ListForInstructor(ctx context.Context, instructorID string, day *time.Time) ([]model.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM results res
		 WHERE EXISTS(
		     SELECT 1 FROM exam_sets s
		     WHERE s.id = res.set_id AND NOT s.deleted
		       AND (s.owner_instructor_id = $1 OR s.access_policy IN ($2, $3)))`
	args := []any{instructorID, model.AccessAllInstructors, model.AccessPublic}
	if day != nil {
		from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		args = append(args, from, from.Add(24*time.Hour))
		query += ` AND res.submitted_at >= $4 AND res.submitted_at < $5`
	}
	query += ` ORDER BY res.submitted_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectResults(rows)
}
