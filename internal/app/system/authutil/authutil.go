// internal/app/system/authutil/authutil.go
package authutil

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for operator password hashes.
const BcryptCost = 12

// MinPasswordLen is the shortest password an operator may set.
const MinPasswordLen = 10

var (
	ErrPasswordTooShort = errors.New("password must be at least 10 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes")
	ErrPasswordWeak     = errors.New("password must contain a letter and a digit")
)

// ValidatePassword checks a new password against the operator password rules.
func ValidatePassword(pw string) error {
	if len([]rune(pw)) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	// bcrypt ignores everything past 72 bytes.
	if len(pw) > 72 {
		return ErrPasswordTooLong
	}
	var letter, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return ErrPasswordWeak
	}
	return nil
}

// PasswordRules describes ValidatePassword for display.
func PasswordRules() string {
	return "At least 10 characters, including a letter and a digit."
}

// HashPassword returns the bcrypt hash of pw.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether pw matches hash.
func CheckPassword(pw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
