package service

import (
	"errors"
	"testing"

	"github.com/shubukan/shubukan-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(h)
}

func studentClaims(userID, instructorID string) *Claims {
	return &Claims{TokenType: TokenTypeStudent, UserID: userID, InstructorID: instructorID}
}

func TestCheckAccessPolicies(t *testing.T) {
	owned := model.ExamSet{AccessPolicy: model.AccessInstructorOwned, OwnerInstructorID: "sensei-1"}
	all := model.ExamSet{AccessPolicy: model.AccessAllInstructors}
	public := model.ExamSet{AccessPolicy: model.AccessPublic}

	tests := []struct {
		name    string
		set     model.ExamSet
		claims  *Claims
		wantErr error
	}{
		{"public admits anonymous", public, nil, nil},
		{"public admits anyone", public, studentClaims("s1", "sensei-2"), nil},
		{"allInstructors rejects anonymous", all, nil, ErrAuthRequired},
		{"allInstructors admits any token", all, studentClaims("s1", "sensei-2"), nil},
		{"owned rejects anonymous", owned, nil, ErrAuthRequired},
		{"owned rejects other instructor's student", owned, studentClaims("s1", "sensei-2"), ErrNotAllowed},
		{"owned rejects token without instructor", owned, studentClaims("s1", ""), ErrNotAllowed},
		{"owned admits the instructor's student", owned, studentClaims("s1", "sensei-1"), nil},
		{
			"owned admits the owner",
			owned,
			&Claims{TokenType: TokenTypeInstructor, UserID: "sensei-1", InstructorID: "sensei-1"},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAccess(&tt.set, []model.ExamSet{tt.set}, tt.claims, "")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckAccess = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckAccessPassword(t *testing.T) {
	set := model.ExamSet{
		AccessPolicy: model.AccessPublic,
		PasswordHash: hashOf(t, "osu-1234"),
	}
	siblings := []model.ExamSet{set}

	if err := CheckAccess(&set, siblings, nil, ""); !errors.Is(err, ErrPasswordRequired) {
		t.Errorf("missing password: err = %v, want ErrPasswordRequired", err)
	}
	if err := CheckAccess(&set, siblings, nil, "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("wrong password: err = %v, want ErrPasswordMismatch", err)
	}
	if err := CheckAccess(&set, siblings, nil, "osu-1234"); err != nil {
		t.Errorf("correct password: err = %v, want nil", err)
	}
}

func TestCheckAccessSiblingPasswordDomain(t *testing.T) {
	// The target set itself has no password, but its sibling does. All sets
	// of one exam share a password domain.
	target := model.ExamSet{ExamID: "KYU4A1", SetNumber: 1, AccessPolicy: model.AccessPublic}
	sibling := model.ExamSet{
		ExamID:       "KYU4A1",
		SetNumber:    2,
		AccessPolicy: model.AccessPublic,
		PasswordHash: hashOf(t, "shodan"),
	}
	siblings := []model.ExamSet{target, sibling}

	if err := CheckAccess(&target, siblings, nil, ""); !errors.Is(err, ErrPasswordRequired) {
		t.Errorf("missing password: err = %v, want ErrPasswordRequired", err)
	}
	if err := CheckAccess(&target, siblings, nil, "shodan"); err != nil {
		t.Errorf("sibling's password should admit: err = %v", err)
	}
}

func TestCheckAccessIdentityBeforePassword(t *testing.T) {
	set := model.ExamSet{
		AccessPolicy:      model.AccessInstructorOwned,
		OwnerInstructorID: "sensei-1",
		PasswordHash:      hashOf(t, "osu-1234"),
	}

	// An anonymous caller is told about identity first, not the password.
	err := CheckAccess(&set, []model.ExamSet{set}, nil, "")
	if !errors.Is(err, ErrAuthRequired) {
		t.Errorf("err = %v, want ErrAuthRequired", err)
	}

	// The right student without the password is asked for it.
	err = CheckAccess(&set, []model.ExamSet{set}, studentClaims("s1", "sensei-1"), "")
	if !errors.Is(err, ErrPasswordRequired) {
		t.Errorf("err = %v, want ErrPasswordRequired", err)
	}
}
