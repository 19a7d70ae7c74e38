package utils

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// MaxUsernameLength matches the accounts.username column, in characters
const MaxUsernameLength = 150

// NormalizeEmail trims and lower-cases an email. No format check is made.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DeriveUsername builds the base login identifier for a signup.
// A blank email yields a random identifier.
func DeriveUsername(email string) string {
	base := NormalizeEmail(email)
	if base == "" {
		return "user_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	}
	return truncate(base, MaxUsernameLength)
}

// UsernameCandidate returns the n-th candidate for base: base, base1, base2, ...
// The suffix always fits within MaxUsernameLength characters.
func UsernameCandidate(base string, n int) string {
	if n <= 0 {
		return truncate(base, MaxUsernameLength)
	}
	suffix := strconv.Itoa(n)
	return truncate(base, MaxUsernameLength-len(suffix)) + suffix
}

// truncate keeps at most max characters of s, never splitting a multi-byte one
func truncate(s string, max int) string {
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// ValidationError represents a missing or malformed request field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
