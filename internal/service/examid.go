package service

import (
	"crypto/rand"
	"math/big"
)

const (
	examIDLength   = 6
	examIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewExamID generates a random 6-character uppercase alphanumeric exam
// identifier. Uniqueness is the caller's responsibility (retry on collision).
func NewExamID() (string, error) {
	buf := make([]byte, examIDLength)
	max := big.NewInt(int64(len(examIDAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = examIDAlphabet[n.Int64()]
	}
	return string(buf), nil
}
