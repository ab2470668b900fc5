package login

import (
	"errors"
	"unicode"
	"unicode/utf8"
)

const minPasswordLength = 12

// PasswordRules is shown next to every password field.
const PasswordRules = "At least 12 characters with upper and lower case letters, a digit and a symbol."

var (
	ErrPasswordTooShort = errors.New("password must be at least 12 characters")
	ErrPasswordTooWeak  = errors.New("password must include upper, lower, digit and symbol")
)

// ValidatePasswordPolicy counts characters, not bytes, so accented letters
// weigh the same as ASCII ones.
func ValidatePasswordPolicy(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrPasswordTooShort
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSymbol {
		return ErrPasswordTooWeak
	}
	return nil
}
