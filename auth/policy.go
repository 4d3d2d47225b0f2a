package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nbutton23/zxcvbn-go"
)

const specialChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_{|}~`"

var (
	ErrTooShort   = errors.New("password is too short")
	ErrNoUpper    = errors.New("password must include an uppercase letter")
	ErrNoDigit    = errors.New("password must include a digit")
	ErrNoSpecial  = errors.New("password must include a special character")
	ErrTooWeak    = errors.New("password is too easy to guess")
	ErrBreached   = errors.New("password appears in a known data breach")
	ErrEmptyInput = errors.New("password is empty")
)

// ValidateOptions selects which master password rules apply.
type ValidateOptions struct {
	MinLength      int
	RequireUpper   bool
	RequireDigit   bool
	RequireSpecial bool
	// MinZXCVBNScore is the lowest acceptable zxcvbn score (0-4); 0 disables the check.
	MinZXCVBNScore int
}

// DefaultValidateOptions only rejects empty passwords. Vault files created by
// earlier versions carry no policy, so nothing stricter is assumed.
func DefaultValidateOptions() ValidateOptions {
	return ValidateOptions{MinLength: 1}
}

// StrictValidateOptions is the recommended policy for new master passwords.
func StrictValidateOptions() ValidateOptions {
	return ValidateOptions{
		MinLength:      12,
		RequireUpper:   true,
		RequireDigit:   true,
		RequireSpecial: true,
		MinZXCVBNScore: 3,
	}
}

// ValidateMasterPassword applies the master password policy requirements.
// pw is borrowed.
func ValidateMasterPassword(pw []byte, opts ValidateOptions) error {
	if len(pw) == 0 {
		return ErrEmptyInput
	}
	if n := utf8.RuneCount(pw); n < opts.MinLength {
		return fmt.Errorf("%w: need at least %d characters", ErrTooShort, opts.MinLength)
	}
	if opts.RequireUpper && !hasUpper(pw) {
		return ErrNoUpper
	}
	if opts.RequireDigit && !hasDigit(pw) {
		return ErrNoDigit
	}
	if opts.RequireSpecial && !hasSpecial(pw) {
		return ErrNoSpecial
	}
	if opts.MinZXCVBNScore > 0 {
		if score := Strength(pw); score < opts.MinZXCVBNScore {
			return fmt.Errorf("%w: score %d of 4, need %d", ErrTooWeak, score, opts.MinZXCVBNScore)
		}
	}
	return nil
}

// Strength returns the zxcvbn score of pw, from 0 (trivial) to 4 (strong).
// zxcvbn works on strings, so this makes one unwipeable copy of pw.
func Strength(pw []byte) int {
	if len(pw) == 0 {
		return 0
	}
	return zxcvbn.PasswordStrength(string(pw), nil).Score
}

func hasUpper(b []byte) bool {
	for _, r := range string(b) {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func hasDigit(b []byte) bool {
	for _, r := range string(b) {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func hasSpecial(b []byte) bool {
	for _, r := range string(b) {
		if strings.ContainsRune(specialChars, r) {
			return true
		}
	}
	return false
}
