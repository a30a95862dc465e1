package model

import (
	"time"

	"github.com/google/uuid"
)

// Result is one candidate's graded submission against one exam set.
// It is created once at submission time and never mutated.
type Result struct {
	ID          uuid.UUID `json:"id"`
	SetID       uuid.UUID `json:"set_id"`
	ExamID      string    `json:"exam_id"`
	SetNumber   int       `json:"set_number"`
	CandidateID string    `json:"candidate_id"`
	// Selections is aligned with the set's question order; nil means unanswered.
	Selections     []*int  `json:"selections"`
	MarksObtained  float64 `json:"marks_obtained"`
	CorrectCount   int     `json:"correct_count"`
	IncorrectCount int     `json:"incorrect_count"`
	// SingleAttempt mirrors the set's access policy at submission time.
	// The storage-level attempt-dedup index only covers rows where it is true.
	SingleAttempt bool      `json:"-"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// SubmitAttemptRequest is the payload for submitting a completed answer sheet.
type SubmitAttemptRequest struct {
	Selections []*int `json:"selections" binding:"required"`
}

// AnswerSheetRow is one reviewed question of a submitted answer sheet.
type AnswerSheetRow struct {
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correct_answer_index"`
	SelectedIndex      *int     `json:"selected_index"`
	IsCorrect          bool     `json:"is_correct"`
}

// AnswerSheet is an instructor's view of a candidate's graded submission.
type AnswerSheet struct {
	ExamID         string           `json:"exam_id"`
	SetNumber      int              `json:"set_number"`
	ScheduledStart *time.Time       `json:"scheduled_start,omitempty"`
	CandidateID    string           `json:"candidate_id"`
	Rows           []AnswerSheetRow `json:"rows"`
	MarksObtained  float64          `json:"marks_obtained"`
	CorrectCount   int              `json:"correct_count"`
	IncorrectCount int              `json:"incorrect_count"`
}
