package auth

import (
	"regexp"
	"unicode"

	"github.com/postlyhq/postly/internal/apperr"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateLogin checks input shape before the engine is invoked. Login only
// requires a well-formed email and a non-empty password.
func ValidateLogin(email, password string) *apperr.Error {
	if email == "" || password == "" {
		return apperr.EmptyFields
	}
	if !emailPattern.MatchString(email) {
		return apperr.InvalidEmailFormat
	}

	return nil
}

// ValidateRegistration runs the full pre-engine checks: email shape, password
// strength, and confirm-password equality, in that order.
func ValidateRegistration(email, password, confirmPassword string) *apperr.Error {
	if email == "" {
		return apperr.EmptyFields
	}
	if !emailPattern.MatchString(email) {
		return apperr.InvalidEmailFormat
	}
	if err := validatePassword(password); err != nil {
		return err
	}
	if confirmPassword == "" {
		return apperr.EmptyFields
	}
	if password != confirmPassword {
		return apperr.PasswordMismatch
	}

	return nil
}

func validatePassword(password string) *apperr.Error {
	switch {
	case password == "":
		return apperr.EmptyFields
	case len(password) < 8:
		return apperr.Custom(
			"VAL_004",
			"Password must be at least 8 characters",
			"password too short",
		)
	case !containsFunc(password, unicode.IsUpper):
		return apperr.Custom(
			"VAL_010",
			"Password must contain at least one uppercase letter",
			"password missing uppercase letter",
		)
	case !containsFunc(password, unicode.IsLower):
		return apperr.Custom(
			"VAL_011",
			"Password must contain at least one lowercase letter",
			"password missing lowercase letter",
		)
	case passwordStrength(password) == StrengthWeak:
		return apperr.Custom(
			"VAL_009",
			"Password is too weak. Include numbers and special characters for better security",
			"password strength: weak",
		)
	}

	return nil
}

type Strength int

const (
	StrengthWeak Strength = iota
	StrengthMedium
	StrengthStrong
)

// passwordStrength scores one point each for length, digits, upper, lower,
// and special characters.
func passwordStrength(password string) Strength {
	score := 0
	if len(password) >= 8 {
		score++
	}
	if containsFunc(password, unicode.IsDigit) {
		score++
	}
	if containsFunc(password, unicode.IsUpper) {
		score++
	}
	if containsFunc(password, unicode.IsLower) {
		score++
	}
	if containsFunc(password, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		score++
	}

	switch {
	case score < 2:
		return StrengthWeak
	case score < 4:
		return StrengthMedium
	default:
		return StrengthStrong
	}
}

func containsFunc(s string, f func(rune) bool) bool {
	for _, r := range s {
		if f(r) {
			return true
		}
	}
	return false
}
