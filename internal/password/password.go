// Package password implements the client-side password strength check
// applied before sign-up requests are sent to the identity provider.
package password

import "strings"

// symbols is the set of characters accepted as the "special character"
// part of the strength rule.
const symbols = `!@#$%^&*(),.?":{}|<>`

// IsStrong reports whether pw satisfies the sign-up password rules:
// at least 8 characters, at least one decimal digit, and at least one
// character from the symbols set. It never fails, for any input.
func IsStrong(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var hasDigit, hasSymbol bool
	for _, r := range pw {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(symbols, r):
			hasSymbol = true
		}
	}
	return hasDigit && hasSymbol
}
