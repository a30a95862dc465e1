package service

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shubukan/shubukan-backend/internal/config"
)

// ErrInvalidToken is returned for tokens that fail signature or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// TokenType distinguishes the caller kinds issued by the identity provider.
type TokenType string

const (
	TokenTypeStudent    TokenType = "student"
	TokenTypeInstructor TokenType = "instructor"
	TokenTypeAdmin      TokenType = "admin"
)

// Claims extends JWT standard claims with app-specific fields. Token issuance
// lives in the identity provider; this service only validates.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
	UserID    string    `json:"user_id"`
	// InstructorID is the instructor's own identifier for instructor tokens,
	// or the supervising instructor's identifier for student tokens.
	InstructorID string `json:"instructor_id,omitempty"`
}

// AuthService validates JWTs minted by the organization's identity provider
// with the shared HMAC secret.
type AuthService struct {
	cfg *config.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// ValidateToken parses and validates a JWT, returning its claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
