package model

import (
	"time"

	"github.com/google/uuid"
)

// Question is a single multiple-choice item, shared across exam sets by reference.
type Question struct {
	ID          uuid.UUID  `json:"id"`
	Text        string     `json:"text"`
	Options     []string   `json:"options"`
	AnswerIndex int        `json:"answer_index"`
	Deleted     bool       `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// UsageRefs is derived from the non-deleted sets referencing this question,
	// never stored.
	UsageRefs []QuestionUsageRef `json:"usage_refs,omitempty"`
	Used      bool               `json:"used"`
}

// QuestionUsageRef records one non-deleted exam set that includes a question.
type QuestionUsageRef struct {
	SetID          uuid.UUID    `json:"set_id"`
	ExamID         string       `json:"exam_id"`
	SetNumber      int          `json:"set_number"`
	AccessPolicy   AccessPolicy `json:"access_policy"`
	ScheduledStart *time.Time   `json:"scheduled_start,omitempty"`
}

// CreateQuestionRequest is the payload for creating a question.
type CreateQuestionRequest struct {
	Text        string   `json:"text" binding:"required,min=1,max=2000"`
	Options     []string `json:"options" binding:"required,min=2,dive,required"`
	AnswerIndex *int     `json:"answer_index" binding:"required,min=0"`
}

// UpdateQuestionRequest is the payload for editing a question.
// Nil fields are left unchanged.
type UpdateQuestionRequest struct {
	Text        *string  `json:"text" binding:"omitempty,min=1,max=2000"`
	Options     []string `json:"options" binding:"omitempty,min=2,dive,required"`
	AnswerIndex *int     `json:"answer_index" binding:"omitempty,min=0"`
}
