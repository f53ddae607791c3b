package service

import (
	"church-service/internal/apperr"

	"golang.org/x/crypto/bcrypt"
)

var bcryptCost = bcrypt.DefaultCost

// PasswordPolicy validates new passwords.
type PasswordPolicy struct {
	MinLength int
}

// Validate checks the length and, when confirm is non-empty or required,
// that both entries match.
func (p PasswordPolicy) Validate(password, confirm string, requireConfirm bool) error {
	if len(password) < p.MinLength {
		return apperr.Validation("password must be at least %d characters", p.MinLength)
	}
	if (requireConfirm || confirm != "") && password != confirm {
		return apperr.Validation("passwords do not match")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return string(hashed), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
