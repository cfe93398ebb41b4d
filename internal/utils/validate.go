// Package utils provides small helpers shared by handlers and
// repositories: password hashing, token generation and the input
// validation/sanitization rules used at registration and on
// reservation fields.
package utils

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Password length policy. Length is the only composition rule.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 128
)

// emailRe accepts local@domain where the domain contains at least one
// dot. Deliberately loose beyond that; the point is to reject strings
// without an @ or without a domain dot, not to implement RFC 5322.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// stripPolicy removes every HTML element and attribute, leaving only
// text content.
var stripPolicy = bluemonday.StrictPolicy()

// IsValidEmail reports whether s looks like an email address.
func IsValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// IsValidPassword reports whether the password length falls within
// the allowed bounds.
func IsValidPassword(s string) bool {
	n := len(s)
	return n >= MinPasswordLength && n <= MaxPasswordLength
}

// Sanitize strips markup from client-supplied free text before it is
// persisted; the policy HTML-escapes whatever text survives. It
// transforms rather than rejects: callers store the returned string
// as-is.
func Sanitize(s string) string {
	return stripPolicy.Sanitize(strings.TrimSpace(s))
}
