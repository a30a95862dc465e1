package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shubukan/shubukan-backend/internal/model"
	"github.com/shubukan/shubukan-backend/internal/repository"
	"github.com/shubukan/shubukan-backend/internal/response"
)

var (
	ErrQuestionNotFound   = errors.New("question not found")
	ErrInvalidOptions     = errors.New("options must be distinct")
	ErrInvalidAnswerIndex = errors.New("answer index out of range")
	ErrQuestionLocked     = errors.New("question is used by a started exam")
	ErrQuestionReferenced = errors.New("question is still referenced by an exam set")
)

// QuestionService handles the question bank.
type QuestionService struct {
	questionRepo *repository.QuestionRepository
	log          zerolog.Logger
}

// NewQuestionService creates a new QuestionService.
func NewQuestionService(questionRepo *repository.QuestionRepository, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		log:          log.With().Str("component", "question_service").Logger(),
	}
}

func validateQuestionContent(options []string, answerIndex int) error {
	if len(options) < 2 {
		return ErrInvalidOptions
	}
	seen := make(map[string]struct{}, len(options))
	for _, opt := range options {
		if _, dup := seen[opt]; dup {
			return ErrInvalidOptions
		}
		seen[opt] = struct{}{}
	}
	if answerIndex < 0 || answerIndex >= len(options) {
		return ErrInvalidAnswerIndex
	}
	return nil
}

// Create adds a new question to the bank.
func (s *QuestionService) Create(ctx context.Context, req *model.CreateQuestionRequest) (*model.Question, error) {
	if err := validateQuestionContent(req.Options, *req.AnswerIndex); err != nil {
		return nil, err
	}

	q := &model.Question{
		Text:        req.Text,
		Options:     req.Options,
		AnswerIndex: *req.AnswerIndex,
	}
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	s.log.Info().Str("question_id", q.ID.String()).Msg("Question created")
	return q, nil
}

// Get retrieves one question with its usage references.
func (s *QuestionService) Get(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	refs, err := s.questionRepo.UsageRefs(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("usage refs: %w", err)
	}
	q.UsageRefs = refs[id]
	q.Used = len(q.UsageRefs) > 0
	return q, nil
}

// List retrieves questions with pagination, each annotated with the sets that
// currently reference it.
func (s *QuestionService) List(ctx context.Context, page, perPage int) ([]model.Question, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	questions, total, err := s.questionRepo.ListPaginated(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}

	if len(questions) > 0 {
		ids := make([]uuid.UUID, len(questions))
		for i := range questions {
			ids[i] = questions[i].ID
		}
		refs, err := s.questionRepo.UsageRefs(ctx, ids)
		if err != nil {
			return nil, nil, fmt.Errorf("usage refs: %w", err)
		}
		for i := range questions {
			questions[i].UsageRefs = refs[questions[i].ID]
			questions[i].Used = len(questions[i].UsageRefs) > 0
		}
	} else {
		questions = []model.Question{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return questions, pagination, nil
}

// Update edits a question's content. Questions referenced by a set whose
// window has already opened are locked so past papers keep their meaning.
func (s *QuestionService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateQuestionRequest) (*model.Question, error) {
	q, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}

	locked, err := s.questionRepo.UsedInStartedSet(ctx, id, time.Now())
	if err != nil {
		return nil, fmt.Errorf("check usage: %w", err)
	}
	if locked {
		return nil, ErrQuestionLocked
	}

	if req.Text != nil {
		q.Text = *req.Text
	}
	if req.Options != nil {
		q.Options = req.Options
	}
	if req.AnswerIndex != nil {
		q.AnswerIndex = *req.AnswerIndex
	}
	if err := validateQuestionContent(q.Options, q.AnswerIndex); err != nil {
		return nil, err
	}

	if err := s.questionRepo.Update(ctx, q); err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}

	s.log.Info().Str("question_id", id.String()).Msg("Question updated")
	return q, nil
}

// Delete soft-deletes an unreferenced question. Any reference from a
// non-deleted set, past or future, blocks deletion.
func (s *QuestionService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.questionRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrQuestionNotFound
		}
		return err
	}

	used, err := s.questionRepo.UsedInAnySet(ctx, id)
	if err != nil {
		return fmt.Errorf("check usage: %w", err)
	}
	if used {
		return ErrQuestionReferenced
	}

	if err := s.questionRepo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}

	s.log.Info().Str("question_id", id.String()).Msg("Question soft-deleted")
	return nil
}
