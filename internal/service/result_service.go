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
	ErrAlreadyAttempted = errors.New("exam already attempted")
	ErrResultNotFound   = errors.New("result not found")
	ErrExamUpcoming     = errors.New("exam has not finished yet")
)

// QuestionPaper is a past set's full question list, answer keys included, for
// instructor review.
type QuestionPaper struct {
	ExamID         string           `json:"exam_id"`
	SetNumber      int              `json:"set_number"`
	ScheduledStart *time.Time       `json:"scheduled_start,omitempty"`
	Questions      []model.Question `json:"questions"`
}

// ResultService handles attempt submission, grading, and result review.
type ResultService struct {
	setRepo      *repository.ExamSetRepository
	questionRepo *repository.QuestionRepository
	resultRepo   *repository.ResultRepository
	log          zerolog.Logger
}

// NewResultService creates a new ResultService.
func NewResultService(
	setRepo *repository.ExamSetRepository,
	questionRepo *repository.QuestionRepository,
	resultRepo *repository.ResultRepository,
	log zerolog.Logger,
) *ResultService {
	return &ResultService{
		setRepo:      setRepo,
		questionRepo: questionRepo,
		resultRepo:   resultRepo,
		log:          log.With().Str("component", "result_service").Logger(),
	}
}

// Submit grades a candidate's answer sheet against the set's key and records
// the result. Non-public sets allow one attempt per candidate; the partial
// unique index on results is the guarantee, so two racing submissions cannot
// both land.
func (s *ResultService) Submit(ctx context.Context, setID uuid.UUID, candidateID string, selections []*int) (*model.Result, error) {
	set, err := s.setRepo.GetByID(ctx, setID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSetNotFound
		}
		return nil, err
	}

	singleAttempt := set.AccessPolicy != model.AccessPublic
	if singleAttempt {
		attempted, err := s.resultRepo.Exists(ctx, set.ID, candidateID)
		if err != nil {
			return nil, fmt.Errorf("check attempt: %w", err)
		}
		if attempted {
			return nil, ErrAlreadyAttempted
		}
	}

	questions, err := s.questionRepo.ListBySet(ctx, set.ID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	summary, err := GradeSubmission(questions, selections, set.MarksPerQuestion)
	if err != nil {
		return nil, err
	}

	res := &model.Result{
		SetID:          set.ID,
		ExamID:         set.ExamID,
		SetNumber:      set.SetNumber,
		CandidateID:    candidateID,
		Selections:     selections,
		MarksObtained:  summary.MarksObtained,
		CorrectCount:   summary.CorrectCount,
		IncorrectCount: summary.IncorrectCount,
		SingleAttempt:  singleAttempt,
	}
	if err := s.resultRepo.Create(ctx, res); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the race against a concurrent submission.
			return nil, ErrAlreadyAttempted
		}
		return nil, fmt.Errorf("store result: %w", err)
	}

	s.log.Info().
		Str("exam_id", set.ExamID).
		Int("set_number", set.SetNumber).
		Str("candidate_id", candidateID).
		Float64("marks", res.MarksObtained).
		Msg("Attempt submitted")
	return res, nil
}

// ListAll retrieves every result with pagination.
func (s *ResultService) ListAll(ctx context.Context, page, perPage int) ([]model.Result, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	results, total, err := s.resultRepo.ListPaginated(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if results == nil {
		results = []model.Result{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return results, pagination, nil
}

// ListMine retrieves the calling candidate's own results.
func (s *ResultService) ListMine(ctx context.Context, candidateID string) ([]model.Result, error) {
	results, err := s.resultRepo.ListByCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []model.Result{}
	}
	return results, nil
}

// ListForInstructor retrieves results the instructor may review, optionally
// restricted to one calendar day.
func (s *ResultService) ListForInstructor(ctx context.Context, instructorID string, day *time.Time) ([]model.Result, error) {
	results, err := s.resultRepo.ListForInstructor(ctx, instructorID, day)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []model.Result{}
	}
	return results, nil
}

// AnswerSheet builds the instructor review of one submission: every question
// with its key, the candidate's selection, and per-row correctness. Only
// available once the set's window has closed, so answer keys never leak into
// a live exam.
func (s *ResultService) AnswerSheet(ctx context.Context, resultID uuid.UUID, instructorID string) (*model.AnswerSheet, error) {
	res, err := s.resultRepo.GetByID(ctx, resultID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}

	set, err := s.setRepo.GetByID(ctx, res.SetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSetNotFound
		}
		return nil, err
	}

	if set.AccessPolicy == model.AccessInstructorOwned && set.OwnerInstructorID != instructorID {
		return nil, ErrNotAllowed
	}
	if end := set.ScheduledEnd(); end != nil && time.Now().Before(*end) {
		return nil, ErrExamUpcoming
	}

	questions, err := s.questionRepo.ListBySet(ctx, set.ID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	rows := make([]model.AnswerSheetRow, len(questions))
	for i, q := range questions {
		row := model.AnswerSheetRow{
			Text:               q.Text,
			Options:            q.Options,
			CorrectAnswerIndex: q.AnswerIndex,
		}
		if i < len(res.Selections) {
			row.SelectedIndex = res.Selections[i]
		}
		row.IsCorrect = row.SelectedIndex != nil && *row.SelectedIndex == q.AnswerIndex
		rows[i] = row
	}

	return &model.AnswerSheet{
		ExamID:         set.ExamID,
		SetNumber:      set.SetNumber,
		ScheduledStart: set.ScheduledStart,
		CandidateID:    res.CandidateID,
		Rows:           rows,
		MarksObtained:  res.MarksObtained,
		CorrectCount:   res.CorrectCount,
		IncorrectCount: res.IncorrectCount,
	}, nil
}

// QuestionPapers retrieves full papers of past sets the instructor may review,
// optionally restricted to a scheduled-start range.
func (s *ResultService) QuestionPapers(ctx context.Context, instructorID string, from, to *time.Time) ([]QuestionPaper, error) {
	sets, err := s.setRepo.ListPastAccessible(ctx, instructorID, from, to, time.Now())
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}

	papers := make([]QuestionPaper, 0, len(sets))
	for i := range sets {
		questions, err := s.questionRepo.ListBySet(ctx, sets[i].ID)
		if err != nil {
			return nil, fmt.Errorf("list questions: %w", err)
		}
		papers = append(papers, QuestionPaper{
			ExamID:         sets[i].ExamID,
			SetNumber:      sets[i].SetNumber,
			ScheduledStart: sets[i].ScheduledStart,
			Questions:      questions,
		})
	}
	return papers, nil
}
