package service

import (
	"errors"
	"testing"
)

func TestValidateQuestionContent(t *testing.T) {
	tests := []struct {
		name        string
		options     []string
		answerIndex int
		wantErr     error
	}{
		{"valid", []string{"a", "b", "c"}, 1, nil},
		{"no options", nil, 0, ErrInvalidOptions},
		{"single option", []string{"only"}, 0, ErrInvalidOptions},
		{"duplicate options", []string{"same", "same"}, 0, ErrInvalidOptions},
		{"index past last option", []string{"a", "b"}, 2, ErrInvalidAnswerIndex},
		{"negative index", []string{"a", "b"}, -1, ErrInvalidAnswerIndex},
		{"index at last option", []string{"a", "b"}, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateQuestionContent(tt.options, tt.answerIndex)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("validateQuestionContent = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
