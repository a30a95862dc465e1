package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shubukan/shubukan-backend/internal/config"
	"github.com/shubukan/shubukan-backend/internal/model"
	"github.com/shubukan/shubukan-backend/internal/repository"
	"github.com/shubukan/shubukan-backend/internal/response"
	"golang.org/x/crypto/bcrypt"
)

// Domain errors.
var (
	ErrSetNotFound        = errors.New("exam set not found")
	ErrQuestionsNotFound  = errors.New("some questions not found")
	ErrScheduleClash      = errors.New("another set is scheduled at this exact time")
	ErrDuplicateSetNumber = errors.New("set number already exists for this exam")
	ErrExamStarted        = errors.New("exam has already started")
	ErrScheduleRequired   = errors.New("scheduled start is required for non-public sets")
	ErrOwnerRequired      = errors.New("owner instructor is required for instructor-owned sets")
)

// ExamService handles exam set lifecycle, availability resolution, and the
// Redis cache of sanitized question payloads.
type ExamService struct {
	setRepo      *repository.ExamSetRepository
	questionRepo *repository.QuestionRepository
	resultRepo   *repository.ResultRepository
	rdb          *redis.Client
	bcryptCost   int
	log          zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(
	setRepo *repository.ExamSetRepository,
	questionRepo *repository.QuestionRepository,
	resultRepo *repository.ResultRepository,
	rdb *redis.Client,
	bcryptCost int,
	log zerolog.Logger,
) *ExamService {
	return &ExamService{
		setRepo:      setRepo,
		questionRepo: questionRepo,
		resultRepo:   resultRepo,
		rdb:          rdb,
		bcryptCost:   bcryptCost,
		log:          log.With().Str("component", "exam_service").Logger(),
	}
}

// GetSet retrieves a set with its ordered question references.
func (s *ExamService) GetSet(ctx context.Context, id uuid.UUID) (*model.ExamSet, error) {
	set, err := s.setRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSetNotFound
		}
		return nil, err
	}
	set.QuestionIDs, err = s.setRepo.ListQuestionIDs(ctx, set.ID)
	if err != nil {
		return nil, err
	}
	return set, nil
}

// ListSets retrieves non-deleted sets with pagination.
func (s *ExamService) ListSets(ctx context.Context, page, perPage int) ([]model.ExamSet, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	sets, total, err := s.setRepo.ListPaginated(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if sets == nil {
		sets = []model.ExamSet{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return sets, pagination, nil
}

// ListUpcoming retrieves future scheduled sets, optionally filtered by policy.
func (s *ExamService) ListUpcoming(ctx context.Context, policy model.AccessPolicy) ([]model.ExamSet, error) {
	return s.setRepo.ListUpcoming(ctx, time.Now(), policy)
}

// CreateSet creates the first set of a brand-new exam, generating a unique
// shareable exam identifier.
func (s *ExamService) CreateSet(ctx context.Context, req *model.CreateExamSetRequest) (*model.ExamSet, error) {
	set, err := s.buildSet(ctx, req)
	if err != nil {
		return nil, err
	}

	// Generate until unused. Collisions are rare (36^6 space) so a small
	// retry bound is plenty.
	for attempt := 0; ; attempt++ {
		examID, err := NewExamID()
		if err != nil {
			return nil, fmt.Errorf("generate exam id: %w", err)
		}
		exists, err := s.setRepo.ExamIDExists(ctx, examID)
		if err != nil {
			return nil, fmt.Errorf("check exam id: %w", err)
		}
		if !exists {
			set.ExamID = examID
			break
		}
		if attempt >= 10 {
			return nil, errors.New("could not generate a unique exam id")
		}
	}

	if err := s.setRepo.Create(ctx, set, req.QuestionIDs); err != nil {
		return nil, fmt.Errorf("create set: %w", err)
	}
	set.QuestionIDs = req.QuestionIDs

	s.log.Info().Str("exam_id", set.ExamID).Int("set_number", set.SetNumber).Msg("Exam set created")
	return set, nil
}

// AddSet creates an additional set for an existing exam identifier.
func (s *ExamService) AddSet(ctx context.Context, examID string, req *model.CreateExamSetRequest) (*model.ExamSet, error) {
	set, err := s.buildSet(ctx, req)
	if err != nil {
		return nil, err
	}
	set.ExamID = examID

	exists, err := s.setRepo.SetNumberExists(ctx, examID, set.SetNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateSetNumber
	}
	if set.ScheduledStart != nil {
		clash, err := s.setRepo.StartClashExists(ctx, examID, *set.ScheduledStart, uuid.Nil)
		if err != nil {
			return nil, err
		}
		if clash {
			return nil, ErrScheduleClash
		}
	}

	if err := s.setRepo.Create(ctx, set, req.QuestionIDs); err != nil {
		return nil, fmt.Errorf("create set: %w", err)
	}
	set.QuestionIDs = req.QuestionIDs

	s.log.Info().Str("exam_id", examID).Int("set_number", set.SetNumber).Msg("Exam set added")
	return set, nil
}

// buildSet validates a creation request and assembles the unsaved set.
func (s *ExamService) buildSet(ctx context.Context, req *model.CreateExamSetRequest) (*model.ExamSet, error) {
	if req.AccessPolicy != model.AccessPublic && req.ScheduledStart == nil {
		return nil, ErrScheduleRequired
	}
	if req.AccessPolicy == model.AccessInstructorOwned && req.OwnerInstructorID == "" {
		return nil, ErrOwnerRequired
	}
	if err := s.checkQuestionsExist(ctx, req.QuestionIDs); err != nil {
		return nil, err
	}

	set := &model.ExamSet{
		SetNumber:          req.SetNumber,
		DurationMinutes:    req.DurationMinutes,
		ScheduledStart:     req.ScheduledStart,
		AccessPolicy:       req.AccessPolicy,
		OwnerInstructorID:  req.OwnerInstructorID,
		MarksPerQuestion:   req.MarksPerQuestion,
		TotalQuestionCount: len(req.QuestionIDs),
		TotalMarks:         float64(len(req.QuestionIDs)) * req.MarksPerQuestion,
	}
	if set.SetNumber == 0 {
		set.SetNumber = 1
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		set.PasswordHash = string(hash)
		set.HasPassword = true
	}
	return set, nil
}

func (s *ExamService) checkQuestionsExist(ctx context.Context, ids []uuid.UUID) error {
	count, err := s.questionRepo.CountExisting(ctx, ids)
	if err != nil {
		return fmt.Errorf("count questions: %w", err)
	}
	if count != len(ids) {
		return ErrQuestionsNotFound
	}
	return nil
}

// UpdateSet edits an upcoming set. Once a set's window has opened the set is
// immutable.
func (s *ExamService) UpdateSet(ctx context.Context, id uuid.UUID, req *model.UpdateExamSetRequest) (*model.ExamSet, error) {
	set, err := s.GetSet(ctx, id)
	if err != nil {
		return nil, err
	}
	if setStarted(set, time.Now()) {
		return nil, ErrExamStarted
	}

	if req.DurationMinutes != nil {
		set.DurationMinutes = *req.DurationMinutes
	}
	if req.ScheduledStart != nil {
		set.ScheduledStart = req.ScheduledStart
	}
	if req.AccessPolicy != nil {
		set.AccessPolicy = *req.AccessPolicy
	}
	if req.OwnerInstructorID != nil {
		set.OwnerInstructorID = *req.OwnerInstructorID
	}
	if req.MarksPerQuestion != nil {
		set.MarksPerQuestion = *req.MarksPerQuestion
	}
	if req.Password != nil {
		if *req.Password == "" {
			set.PasswordHash = ""
		} else {
			hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.bcryptCost)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
			set.PasswordHash = string(hash)
		}
		set.HasPassword = set.PasswordHash != ""
	}

	if set.AccessPolicy != model.AccessPublic && set.ScheduledStart == nil {
		return nil, ErrScheduleRequired
	}
	if set.AccessPolicy == model.AccessInstructorOwned && set.OwnerInstructorID == "" {
		return nil, ErrOwnerRequired
	}
	if req.ScheduledStart != nil {
		clash, err := s.setRepo.StartClashExists(ctx, set.ExamID, *set.ScheduledStart, set.ID)
		if err != nil {
			return nil, err
		}
		if clash {
			return nil, ErrScheduleClash
		}
	}

	var newQuestionIDs []uuid.UUID
	if req.QuestionIDs != nil {
		if err := s.checkQuestionsExist(ctx, req.QuestionIDs); err != nil {
			return nil, err
		}
		newQuestionIDs = req.QuestionIDs
		set.QuestionIDs = req.QuestionIDs
	}
	set.TotalQuestionCount = len(set.QuestionIDs)
	set.TotalMarks = float64(set.TotalQuestionCount) * set.MarksPerQuestion

	if err := s.setRepo.Update(ctx, set, newQuestionIDs); err != nil {
		return nil, fmt.Errorf("update set: %w", err)
	}
	s.invalidatePayload(ctx, set.ID)

	s.log.Info().Str("exam_id", set.ExamID).Int("set_number", set.SetNumber).Msg("Exam set updated")
	return set, nil
}

// DeleteSet soft-deletes an upcoming set. Its question usage references stop
// counting immediately because usage is derived from non-deleted sets.
func (s *ExamService) DeleteSet(ctx context.Context, id uuid.UUID) error {
	set, err := s.setRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSetNotFound
		}
		return err
	}
	if setStarted(set, time.Now()) {
		return ErrExamStarted
	}

	if err := s.setRepo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("delete set: %w", err)
	}
	s.invalidatePayload(ctx, id)

	s.log.Info().Str("exam_id", set.ExamID).Int("set_number", set.SetNumber).Msg("Exam set soft-deleted")
	return nil
}

// setStarted reports whether the set's window has opened. On-demand public
// sets never "start" and stay editable.
func setStarted(set *model.ExamSet, now time.Time) bool {
	return set.ScheduledStart != nil && !now.Before(*set.ScheduledStart)
}

// Resolve computes which set of an exam, if any, the caller may enter at now.
// claims is nil for anonymous callers. A Live outcome carries the sanitized
// question paper; Waiting carries the countdown for the next set.
//
// Pure with respect to exam state: repeated calls with the same inputs yield
// the same outcome, so waiting-room clients may poll freely.
func (s *ExamService) Resolve(ctx context.Context, claims *Claims, examID, password string, now time.Time) (*Availability, error) {
	sets, err := s.setRepo.ListByExamID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
	}
	if len(sets) == 0 {
		return &Availability{Status: AvailabilityNotFound}, nil
	}

	part := PartitionSets(sets, now)

	if len(part.Live) > 0 {
		var chosen *model.ExamSet
		for i := range part.Live {
			if CheckAccess(&part.Live[i], sets, claims, password) == nil {
				chosen = &part.Live[i]
				break
			}
		}
		if chosen == nil {
			// No admissible live set: surface the rejection for the
			// preferred one.
			return nil, CheckAccess(&part.Live[0], sets, claims, password)
		}

		// Courtesy pre-check so a candidate is turned away before seeing the
		// paper; the submit path holds the real guarantee.
		if chosen.AccessPolicy != model.AccessPublic && claims != nil && claims.TokenType == TokenTypeStudent {
			attempted, err := s.resultRepo.Exists(ctx, chosen.ID, claims.UserID)
			if err != nil {
				return nil, fmt.Errorf("check attempt: %w", err)
			}
			if attempted {
				return nil, ErrAlreadyAttempted
			}
		}

		paper, err := s.getPaper(ctx, chosen)
		if err != nil {
			return nil, err
		}
		return &Availability{Status: AvailabilityLive, Paper: paper}, nil
	}

	if len(part.Expired) > 0 {
		target := &part.Expired[0]
		if err := CheckAccess(target, sets, claims, password); err != nil {
			return nil, err
		}
		return &Availability{
			Status:  AvailabilityExpired,
			Expired: &ExpiredInfo{ExamID: target.ExamID, SetNumber: target.SetNumber},
		}, nil
	}

	target := &part.Future[0]
	if err := CheckAccess(target, sets, claims, password); err != nil {
		return nil, err
	}
	return &Availability{
		Status: AvailabilityWaiting,
		Waiting: &WaitingInfo{
			ExamID:           target.ExamID,
			SetNumber:        target.SetNumber,
			ScheduledStart:   *target.ScheduledStart,
			SecondsRemaining: SecondsUntil(*target.ScheduledStart, now),
		},
	}, nil
}

// getPaper returns the sanitized question payload for a live set, cache-aside
// through Redis with explicit invalidation on set edits.
func (s *ExamService) getPaper(ctx context.Context, set *model.ExamSet) (*model.ExamPaper, error) {
	key := config.CacheKey.SetPayloadKey(set.ID.String())

	if data, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		paper := &model.ExamPaper{}
		if err := json.Unmarshal(data, paper); err == nil {
			return paper, nil
		}
		// Corrupt cache entry: fall through to rebuild.
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Str("set_id", set.ID.String()).Msg("Payload cache read failed")
	}

	questions, err := s.questionRepo.ListBySet(ctx, set.ID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}

	sanitized := make([]model.QuestionForCandidate, len(questions))
	for i, q := range questions {
		sanitized[i] = model.QuestionForCandidate{
			ID:      q.ID,
			Text:    q.Text,
			Options: q.Options,
		}
	}

	paper := &model.ExamPaper{
		SetID:              set.ID,
		ExamID:             set.ExamID,
		SetNumber:          set.SetNumber,
		DurationMinutes:    set.DurationMinutes,
		MarksPerQuestion:   set.MarksPerQuestion,
		TotalQuestionCount: set.TotalQuestionCount,
		TotalMarks:         set.TotalMarks,
		Questions:          sanitized,
	}

	if data, err := json.Marshal(paper); err == nil {
		if err := s.rdb.Set(ctx, key, data, 0).Err(); err != nil {
			s.log.Warn().Err(err).Str("set_id", set.ID.String()).Msg("Payload cache write failed")
		}
	}
	return paper, nil
}

func (s *ExamService) invalidatePayload(ctx context.Context, setID uuid.UUID) {
	key := config.CacheKey.SetPayloadKey(setID.String())
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.log.Warn().Err(err).Str("set_id", setID.String()).Msg("Payload cache invalidation failed")
	}
}
