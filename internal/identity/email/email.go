// Package email validates addresses before they reach credential checks or
// the password-reset flow.
package email

import "strings"

// IsValidEmail reports whether the address has a plausible mailbox@domain
// shape. Sign-in and password reset reject anything failing this check before
// touching the user store, so malformed input never maps to a credential
// error.
func IsValidEmail(email string) bool {
	if email == "" {
		return false
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return false
	}
	if parts[0] == "" || parts[1] == "" {
		return false
	}
	if !strings.Contains(parts[1], ".") {
		return false
	}
	return true
}
