package service

import (
	"errors"
	"testing"

	"github.com/shubukan/shubukan-backend/internal/model"
)

func intPtr(v int) *int { return &v }

func twoQuestions() []model.Question {
	return []model.Question{
		{Options: []string{"a", "b", "c"}, AnswerIndex: 1},
		{Options: []string{"x", "y"}, AnswerIndex: 0},
	}
}

func TestGradeSubmissionAllKinds(t *testing.T) {
	questions := twoQuestions()

	tests := []struct {
		name          string
		selections    []*int
		wantMarks     float64
		wantCorrect   int
		wantIncorrect int
	}{
		{
			name:          "one correct one incorrect",
			selections:    []*int{intPtr(1), intPtr(1)},
			wantMarks:     5,
			wantCorrect:   1,
			wantIncorrect: 1,
		},
		{
			name:          "unanswered counts toward neither bucket",
			selections:    []*int{nil, intPtr(0)},
			wantMarks:     5,
			wantCorrect:   1,
			wantIncorrect: 0,
		},
		{
			name:          "all correct",
			selections:    []*int{intPtr(1), intPtr(0)},
			wantMarks:     10,
			wantCorrect:   2,
			wantIncorrect: 0,
		},
		{
			name:          "out of range selection treated as unanswered",
			selections:    []*int{intPtr(7), intPtr(0)},
			wantMarks:     5,
			wantCorrect:   1,
			wantIncorrect: 0,
		},
		{
			name:          "negative selection treated as unanswered",
			selections:    []*int{intPtr(-1), nil},
			wantMarks:     0,
			wantCorrect:   0,
			wantIncorrect: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GradeSubmission(questions, tt.selections, 5)
			if err != nil {
				t.Fatalf("GradeSubmission: %v", err)
			}
			if got.MarksObtained != tt.wantMarks {
				t.Errorf("marks = %v, want %v", got.MarksObtained, tt.wantMarks)
			}
			if got.CorrectCount != tt.wantCorrect {
				t.Errorf("correct = %d, want %d", got.CorrectCount, tt.wantCorrect)
			}
			if got.IncorrectCount != tt.wantIncorrect {
				t.Errorf("incorrect = %d, want %d", got.IncorrectCount, tt.wantIncorrect)
			}
		})
	}
}

func TestGradeSubmissionLengthMismatch(t *testing.T) {
	questions := twoQuestions()

	for _, selections := range [][]*int{
		{intPtr(1)},
		{intPtr(1), intPtr(0), intPtr(0)},
		nil,
	} {
		if _, err := GradeSubmission(questions, selections, 5); !errors.Is(err, ErrMalformedSubmission) {
			t.Errorf("selections len %d: err = %v, want ErrMalformedSubmission", len(selections), err)
		}
	}
}

func TestGradeSubmissionEmptySet(t *testing.T) {
	got, err := GradeSubmission([]model.Question{}, []*int{}, 5)
	if err != nil {
		t.Fatalf("GradeSubmission: %v", err)
	}
	if got.MarksObtained != 0 || got.CorrectCount != 0 || got.IncorrectCount != 0 {
		t.Errorf("empty paper should grade to zero, got %+v", got)
	}
}
