package services

import (
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"immofox-http-service/internal/error/errs"
)

// MinPasswordLength is the minimum length of new passwords, in characters
const MinPasswordLength = 8

// HashPassword validates and bcrypt-hashes a clear text password
func HashPassword(password string) (string, error) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "", errs.ErrWeakPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
