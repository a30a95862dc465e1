package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shubukan/shubukan-backend/internal/model"
)

const examSetColumns = `id, exam_id, set_number, password_hash, duration_minutes,
	scheduled_start, access_policy, owner_instructor_id, marks_per_question,
	total_question_count, total_marks, deleted, created_at, updated_at`

// ExamSetRepository handles exam set data access.
type ExamSetRepository struct {
	pool *pgxpool.Pool
}

// NewExamSetRepository creates a new ExamSetRepository.
func NewExamSetRepository(pool *pgxpool.Pool) *ExamSetRepository {
	return &ExamSetRepository{pool: pool}
}

func scanExamSet(row pgx.Row) (*model.ExamSet, error) {
	s := &model.ExamSet{}
	err := row.Scan(&s.ID, &s.ExamID, &s.SetNumber, &s.PasswordHash, &s.DurationMinutes,
		&s.ScheduledStart, &s.AccessPolicy, &s.OwnerInstructorID, &s.MarksPerQuestion,
		&s.TotalQuestionCount, &s.TotalMarks, &s.Deleted, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.HasPassword = s.PasswordHash != ""
	return s, nil
}

// GetByID retrieves a non-deleted exam set by its UUID.
func (r *ExamSetRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamSet, error) {
	return scanExamSet(r.pool.QueryRow(ctx,
		`SELECT `+examSetColumns+` FROM exam_sets WHERE id = $1 AND NOT deleted`, id))
}

// ListByExamID retrieves all non-deleted sets sharing an exam identifier.
func (r *ExamSetRepository) ListByExamID(ctx context.Context, examID string) ([]model.ExamSet, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examSetColumns+` FROM exam_sets
		 WHERE exam_id = $1 AND NOT deleted
		 ORDER BY set_number`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExamSets(rows)
}

func collectExamSets(rows pgx.Rows) ([]model.ExamSet, error) {
	var sets []model.ExamSet
	for rows.Next() {
		s, err := scanExamSet(rows)
		if err != nil {
			return nil, err
		}
		sets = append(sets, *s)
	}
	return sets, rows.Err()
}

// ExamIDExists reports whether any set (deleted or not) carries this exam
// identifier. Used to keep generated identifiers unique forever.
func (r *ExamSetRepository) ExamIDExists(ctx context.Context, examID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM exam_sets WHERE exam_id = $1)`, examID).Scan(&exists)
	return exists, err
}

// SetNumberExists reports whether a non-deleted set with this number already
// exists for the exam identifier.
func (r *ExamSetRepository) SetNumberExists(ctx context.Context, examID string, setNumber int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM exam_sets
		  WHERE exam_id = $1 AND set_number = $2 AND NOT deleted)`,
		examID, setNumber).Scan(&exists)
	return exists, err
}

// StartClashExists reports whether another non-deleted set of the same exam is
// scheduled at exactly the same instant. excludeID skips the set being edited;
// pass uuid.Nil on creation.
func (r *ExamSetRepository) StartClashExists(ctx context.Context, examID string, start time.Time, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM exam_sets
		  WHERE exam_id = $1 AND scheduled_start = $2 AND NOT deleted AND id <> $3)`,
		examID, start, excludeID).Scan(&exists)
	return exists, err
}

// Create inserts a new exam set together with its ordered question references.
func (r *ExamSetRepository) Create(ctx context.Context, s *model.ExamSet, questionIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO exam_sets (exam_id, set_number, password_hash, duration_minutes,
		     scheduled_start, access_policy, owner_instructor_id, marks_per_question,
		     total_question_count, total_marks)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at, updated_at`,
		s.ExamID, s.SetNumber, s.PasswordHash, s.DurationMinutes,
		s.ScheduledStart, s.AccessPolicy, s.OwnerInstructorID, s.MarksPerQuestion,
		s.TotalQuestionCount, s.TotalMarks,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return err
	}

	if err := insertQuestionRefs(ctx, tx, s.ID, questionIDs); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Update rewrites an exam set row. If questionIDs is non-nil the set's question
// references are replaced in the same transaction.
func (r *ExamSetRepository) Update(ctx context.Context, s *model.ExamSet, questionIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE exam_sets
		 SET password_hash = $1, duration_minutes = $2, scheduled_start = $3,
		     access_policy = $4, owner_instructor_id = $5, marks_per_question = $6,
		     total_question_count = $7, total_marks = $8, updated_at = NOW()
		 WHERE id = $9`,
		s.PasswordHash, s.DurationMinutes, s.ScheduledStart,
		s.AccessPolicy, s.OwnerInstructorID, s.MarksPerQuestion,
		s.TotalQuestionCount, s.TotalMarks, s.ID)
	if err != nil {
		return err
	}

	if questionIDs != nil {
		if _, err := tx.Exec(ctx,
			`DELETE FROM exam_set_questions WHERE set_id = $1`, s.ID); err != nil {
			return err
		}
		if err := insertQuestionRefs(ctx, tx, s.ID, questionIDs); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func insertQuestionRefs(ctx context.Context, tx pgx.Tx, setID uuid.UUID, questionIDs []uuid.UUID) error {
	for i, qid := range questionIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO exam_set_questions (set_id, question_id, position)
			 VALUES ($1, $2, $3)`, setID, qid, i); err != nil {
			return err
		}
	}
	return nil
}

// SoftDelete marks a set as deleted. Its question references remain in place
// but every usage query filters on non-deleted sets, so they stop counting.
func (r *ExamSetRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_sets SET deleted = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

// ListPaginated retrieves non-deleted sets, newest first.
func (r *ExamSetRepository) ListPaginated(ctx context.Context, limit, offset int) ([]model.ExamSet, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_sets WHERE NOT deleted`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+examSetColumns+` FROM exam_sets
		 WHERE NOT deleted
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	sets, err := collectExamSets(rows)
	return sets, total, err
}

// ListUpcoming retrieves non-deleted sets whose window has not started yet,
// optionally filtered by access policy.
func (r *ExamSetRepository) ListUpcoming(ctx context.Context, now time.Time, policy model.AccessPolicy) ([]model.ExamSet, error) {
	query := `SELECT ` + examSetColumns + ` FROM exam_sets
		 WHERE NOT deleted AND scheduled_start IS NOT NULL AND scheduled_start >= $1`
	args := []any{now}
	if policy != "" {
		query += ` AND access_policy = $2`
		args = append(args, policy)
	}
	query += ` ORDER BY scheduled_start`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExamSets(rows)
}

// ListPastAccessible retrieves non-deleted scheduled sets whose window has
// begun and that the instructor may see: their own, allInstructors, and public
// sets. from/to optionally restrict the scheduled start.
func (r *ExamSetRepository) ListPastAccessible(ctx context.Context, instructorID string, from, to *time.Time, now time.Time) ([]model.ExamSet, error) {
	query := `SELECT ` + examSetColumns + ` FROM exam_sets
		 WHERE NOT deleted AND scheduled_start IS NOT NULL AND scheduled_start <= $1
		   AND (owner_instructor_id = $2 OR access_policy IN ($3, $4))`
	args := []any{now, instructorID, model.AccessAllInstructors, model.AccessPublic}
	if from != nil {
		args = append(args, *from)
		query += ` AND scheduled_start >= $5`
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(` AND scheduled_start <= $%d`, len(args))
	}
	query += ` ORDER BY scheduled_start DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExamSets(rows)
}

// ListQuestionIDs retrieves a set's question references in presentation order.
func (r *ExamSetRepository) ListQuestionIDs(ctx context.Context, setID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_id FROM exam_set_questions
		 WHERE set_id = $1 ORDER BY position`, setID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
