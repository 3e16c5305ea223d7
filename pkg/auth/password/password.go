// Package password checks strength of passwords and hashes them with bcrypt.
package password

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinLength = 8

	// bcrypt does not take more.
	MaxBytes = 72

	Cost = 10
)

var ErrWeakPassword = errors.New("weak password")

// Advice describes the password policy for humans.
const Advice = "A senha deve ter no mínimo 8 caracteres, incluindo letra maiúscula, letra minúscula, número e caractere especial."

// Validate checks the password policy.
//
// A password should be at least MinLength characters and at most MaxBytes bytes,
// and contain an upper case letter (A-Z), a lower case letter (a-z), a digit (0-9)
// and a special character, which is any other character.
func Validate(password string) error {
	if len([]rune(password)) < MinLength {
		return fmt.Errorf("%w: shorter than %d characters", ErrWeakPassword, MinLength)
	}
	if MaxBytes < len(password) {
		return fmt.Errorf("%w: longer than %d bytes", ErrWeakPassword, MaxBytes)
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case 'A' <= r && r <= 'Z':
			upper = true
		case 'a' <= r && r <= 'z':
			lower = true
		case '0' <= r && r <= '9':
			digit = true
		default:
			special = true
		}
	}

	missing := []string{}
	if !upper {
		missing = append(missing, "upper case letter")
	}
	if !lower {
		missing = append(missing, "lower case letter")
	}
	if !digit {
		missing = append(missing, "digit")
	}
	if !special {
		missing = append(missing, "special character")
	}
	if len(missing) != 0 {
		return fmt.Errorf("%w: no %s", ErrWeakPassword, strings.Join(missing, ", "))
	}
	return nil
}

// Hash validates and hashes the password.
func Hash(password string) (string, error) {
	if err := Validate(password); err != nil {
		return "", err
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: %w", ErrWeakPassword, err)
	} else if err != nil {
		return "", err
	}
	return string(h), nil
}

// Match tells whether the password is the one hashed.
//
// An empty hash never matches.
func Match(hash string, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
