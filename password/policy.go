package password

import (
	"strings"
	"unicode"

	"github.com/kbukum/authkit/errors"
)

const (
	// MinLength is the minimum accepted password length.
	MinLength = 8
	// MaxLength is the maximum accepted password length.
	MaxLength = 64
)

// symbols is the punctuation set a password must draw at least one
// character from.
const symbols = `!@#$%^&*(),.?":{}|<>`

// ValidateStrength checks a password against the strength rules in order:
// length, uppercase, lowercase, digit, symbol. The returned error names the
// first unmet rule; nil means all rules pass.
func ValidateStrength(password string) error {
	if password == "" {
		return errors.WeakPassword("Password cannot be empty")
	}
	if len(password) < MinLength || len(password) > MaxLength {
		return errors.WeakPassword("Password must be between 8 and 64 characters long")
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
		case strings.ContainsRune(symbols, r):
			hasSymbol = true
		}
	}

	if !hasUpper {
		return errors.WeakPassword("Password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.WeakPassword("Password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return errors.WeakPassword("Password must contain at least one digit")
	}
	if !hasSymbol {
		return errors.WeakPassword("Password must contain at least one special character")
	}
	return nil
}
