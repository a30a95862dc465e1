package service

import (
	"errors"

	"github.com/shubukan/shubukan-backend/internal/model"
)

// ErrMalformedSubmission is returned when the answer sheet does not line up
// with the set's question list.
var ErrMalformedSubmission = errors.New("selections do not match question count")

// GradeSummary is the outcome of grading one answer sheet.
type GradeSummary struct {
	MarksObtained  float64
	CorrectCount   int
	IncorrectCount int
}

// GradeSubmission scores selections against the questions' answer keys.
// selections must align with questions positionally; nil entries are
// unanswered and count toward neither bucket. An index outside the question's
// option range is ignored as unanswered rather than rejected. No partial
// credit, no negative marking.
func GradeSubmission(questions []model.Question, selections []*int, marksPerQuestion float64) (GradeSummary, error) {
	if len(selections) != len(questions) {
		return GradeSummary{}, ErrMalformedSubmission
	}

	var g GradeSummary
	for i, q := range questions {
		sel := selections[i]
		if sel == nil {
			continue
		}
		if *sel < 0 || *sel >= len(q.Options) {
			continue
		}
		if *sel == q.AnswerIndex {
			g.CorrectCount++
			g.MarksObtained += marksPerQuestion
		} else {
			g.IncorrectCount++
		}
	}
	return g, nil
}
