package service

import (
	"errors"

	"github.com/shubukan/shubukan-backend/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// Access guard errors.
var (
	ErrAuthRequired     = errors.New("authentication required for this exam")
	ErrNotAllowed       = errors.New("not allowed to take this exam")
	ErrPasswordRequired = errors.New("exam password required")
	ErrPasswordMismatch = errors.New("invalid exam password")
)

// CheckAccess validates identity and password rules before a caller may enter
// a set. siblings are all non-deleted sets sharing the exam identifier (the
// target included); they form one password domain, so a password matching any
// sibling admits the caller. claims is nil for anonymous callers.
//
// No side effects; evaluation order follows the rejection precedence:
// identity first, then password.
func CheckAccess(set *model.ExamSet, siblings []model.ExamSet, claims *Claims, password string) error {
	if set.AccessPolicy == model.AccessInstructorOwned {
		if claims == nil {
			return ErrAuthRequired
		}
		if claims.InstructorID == "" || claims.InstructorID != set.OwnerInstructorID {
			return ErrNotAllowed
		}
	}

	if passwordDomain(set, siblings) {
		if password == "" {
			return ErrPasswordRequired
		}
		if !passwordMatches(set, siblings, password) {
			return ErrPasswordMismatch
		}
	}

	if set.AccessPolicy == model.AccessAllInstructors && claims == nil {
		return ErrAuthRequired
	}
	return nil
}

// passwordDomain reports whether any set of the exam carries a password.
func passwordDomain(set *model.ExamSet, siblings []model.ExamSet) bool {
	if set.PasswordHash != "" {
		return true
	}
	for i := range siblings {
		if siblings[i].PasswordHash != "" {
			return true
		}
	}
	return false
}

func passwordMatches(set *model.ExamSet, siblings []model.ExamSet, password string) bool {
	if checkHash(set.PasswordHash, password) {
		return true
	}
	for i := range siblings {
		if checkHash(siblings[i].PasswordHash, password) {
			return true
		}
	}
	return false
}

func checkHash(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
