package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shubukan/shubukan-backend/internal/model"
)

// QuestionRepository handles question data access. Usage references are always
// derived live from exam_set_questions joined against non-deleted exam_sets;
// nothing here trusts a stored "used" flag.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (text, options, answer_index)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		q.Text, q.Options, q.AnswerIndex,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// GetByID retrieves a non-deleted question.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, text, options, answer_index, deleted, created_at, updated_at
		 FROM questions WHERE id = $1 AND NOT deleted`, id,
	).Scan(&q.ID, &q.Text, &q.Options, &q.AnswerIndex, &q.Deleted, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Update rewrites a question's content.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE questions SET text = $1, options = $2, answer_index = $3, updated_at = NOW()
		 WHERE id = $4`,
		q.Text, q.Options, q.AnswerIndex, q.ID)
	return err
}

// SoftDelete marks a question as deleted.
func (r *QuestionRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE questions SET deleted = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

// ListPaginated retrieves non-deleted questions, newest first.
func (r *QuestionRepository) ListPaginated(ctx context.Context, limit, offset int) ([]model.Question, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE NOT deleted`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, text, options, answer_index, deleted, created_at, updated_at
		 FROM questions WHERE NOT deleted
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	questions, err := collectQuestions(rows)
	return questions, total, err
}

func collectQuestions(rows pgx.Rows) ([]model.Question, error) {
	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Options, &q.AnswerIndex, &q.Deleted,
			&q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// CountExisting counts how many of the given IDs refer to non-deleted questions.
func (r *QuestionRepository) CountExisting(ctx context.Context, ids []uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM questions WHERE id = ANY($1) AND NOT deleted`, ids).Scan(&count)
	return count, err
}

// ListBySet retrieves a set's questions in presentation order, answer keys included.
func (r *QuestionRepository) ListBySet(ctx context.Context, setID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.text, q.options, q.answer_index, q.deleted, q.created_at, q.updated_at
		 FROM exam_set_questions sq
		 JOIN questions q ON q.id = sq.question_id
		 WHERE sq.set_id = $1
		 ORDER BY sq.position`, setID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuestions(rows)
}

// UsedInStartedSet reports whether the question is referenced by any non-deleted
// set whose scheduled start is already in the past. Such questions are locked
// against edits.
func (r *QuestionRepository) UsedInStartedSet(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	var used bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(
		    SELECT 1 FROM exam_set_questions sq
		    JOIN exam_sets s ON s.id = sq.set_id
		    WHERE sq.question_id = $1 AND NOT s.deleted
		      AND s.scheduled_start IS NOT NULL AND s.scheduled_start <= $2)`,
		id, now).Scan(&used)
	return used, err
}

// UsedInAnySet reports whether the question is referenced by any non-deleted set.
// Such questions cannot be deleted.
func (r *QuestionRepository) UsedInAnySet(ctx context.Context, id uuid.UUID) (bool, error) {
	var used bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(
		    SELECT 1 FROM exam_set_questions sq
		    JOIN exam_sets s ON s.id = sq.set_id
		    WHERE sq.question_id = $1 AND NOT s.deleted)`,
		id).Scan(&used)
	return used, err
}

// UsageRefs retrieves, for each given question, every non-deleted set that
// references it.
func (r *QuestionRepository) UsageRefs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]model.QuestionUsageRef, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT sq.question_id, s.id, s.exam_id, s.set_number, s.access_policy, s.scheduled_start
		 FROM exam_set_questions sq
		 JOIN exam_sets s ON s.id = sq.set_id
		 WHERE sq.question_id = ANY($1) AND NOT s.deleted
		 ORDER BY s.exam_id, s.set_number`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := make(map[uuid.UUID][]model.QuestionUsageRef)
	for rows.Next() {
		var qid uuid.UUID
		var ref model.QuestionUsageRef
		if err := rows.Scan(&qid, &ref.SetID, &ref.ExamID, &ref.SetNumber,
			&ref.AccessPolicy, &ref.ScheduledStart); err != nil {
			return nil, err
		}
		refs[qid] = append(refs[qid], ref)
	}
	return refs, rows.Err()
}
