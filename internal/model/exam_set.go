package model

import (
	"time"

	"github.com/google/uuid"
)

// AccessPolicy enumerates who may view and take an exam set.
type AccessPolicy string

const (
	// AccessInstructorOwned restricts a set to one instructor's students.
	AccessInstructorOwned AccessPolicy = "instructor"
	// AccessAllInstructors opens a set to any authenticated caller.
	AccessAllInstructors AccessPolicy = "allInstructors"
	// AccessPublic opens a set to everyone, including anonymous callers.
	AccessPublic AccessPolicy = "public"
)

// ExamSet is one schedulable variant of an exam. All sets sharing an ExamID
// are variants of the same conceptual exam and form one password domain.
type ExamSet struct {
	ID                 uuid.UUID    `json:"id"`
	ExamID             string       `json:"exam_id"` // 6-char shareable identifier
	SetNumber          int          `json:"set_number"`
	PasswordHash       string       `json:"-"`
	HasPassword        bool         `json:"has_password"`
	DurationMinutes    int          `json:"duration_minutes"`
	ScheduledStart     *time.Time   `json:"scheduled_start,omitempty"` // nil only for on-demand public sets
	AccessPolicy       AccessPolicy `json:"access_policy"`
	OwnerInstructorID  string       `json:"owner_instructor_id,omitempty"`
	QuestionIDs        []uuid.UUID  `json:"question_ids,omitempty"` // presentation order
	MarksPerQuestion   float64      `json:"marks_per_question"`
	TotalQuestionCount int          `json:"total_question_count"`
	TotalMarks         float64      `json:"total_marks"`
	Deleted            bool         `json:"-"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// ScheduledEnd returns the end of the set's window, or nil for on-demand sets.
func (s *ExamSet) ScheduledEnd() *time.Time {
	if s.ScheduledStart == nil {
		return nil
	}
	end := s.ScheduledStart.Add(time.Duration(s.DurationMinutes) * time.Minute)
	return &end
}

// CreateExamSetRequest is the payload for creating a new exam set.
type CreateExamSetRequest struct {
	SetNumber        int          `json:"set_number" binding:"omitempty,min=1"`
	Password         string       `json:"password" binding:"omitempty,min=4,max=64"`
	DurationMinutes  int          `json:"duration_minutes" binding:"required,min=1,max=480"`
	ScheduledStart   *time.Time   `json:"scheduled_start" binding:"omitempty"`
	AccessPolicy     AccessPolicy `json:"access_policy" binding:"required,oneof=instructor allInstructors public"`
	OwnerInstructorID string      `json:"owner_instructor_id" binding:"omitempty,max=64"`
	QuestionIDs      []uuid.UUID  `json:"question_ids" binding:"required,min=1"`
	MarksPerQuestion float64      `json:"marks_per_question" binding:"required,gt=0"`
}

// UpdateExamSetRequest is the payload for editing an upcoming exam set.
// Nil fields are left unchanged.
type UpdateExamSetRequest struct {
	Password         *string      `json:"password" binding:"omitempty,min=4,max=64"`
	DurationMinutes  *int         `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	ScheduledStart   *time.Time   `json:"scheduled_start" binding:"omitempty"`
	AccessPolicy     *AccessPolicy `json:"access_policy" binding:"omitempty,oneof=instructor allInstructors public"`
	OwnerInstructorID *string     `json:"owner_instructor_id" binding:"omitempty,max=64"`
	QuestionIDs      []uuid.UUID  `json:"question_ids" binding:"omitempty,min=1"`
	MarksPerQuestion *float64     `json:"marks_per_question" binding:"omitempty,gt=0"`
}

// ResolveExamRequest is the payload candidates send to enter (or poll) an exam.
type ResolveExamRequest struct {
	ExamID   string `json:"exam_id" binding:"required,len=6,alphanum"`
	Password string `json:"password" binding:"omitempty,max=64"`
}

// QuestionForCandidate is a question stripped of its answer key.
type QuestionForCandidate struct {
	ID      uuid.UUID `json:"id"`
	Text    string    `json:"text"`
	Options []string  `json:"options"`
}

// ExamPaper is the sanitized payload handed to a candidate entering a live set.
type ExamPaper struct {
	SetID              uuid.UUID              `json:"set_id"`
	ExamID             string                 `json:"exam_id"`
	SetNumber          int                    `json:"set_number"`
	DurationMinutes    int                    `json:"duration_minutes"`
	MarksPerQuestion   float64                `json:"marks_per_question"`
	TotalQuestionCount int                    `json:"total_question_count"`
	TotalMarks         float64                `json:"total_marks"`
	Questions          []QuestionForCandidate `json:"questions"`
}
