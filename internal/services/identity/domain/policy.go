package domain

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	perr "cardduel/internal/platform/errors"
)

// Password policy bounds
const (
	PasswordMinLen = 8
	PasswordMaxLen = 128
)

// passwordPunct is the allowlisted punctuation set; at least one is required
const passwordPunct = "!@#$%^&*()_+-=[]{}|:,.<>?"

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,50}$`)

// sqlShaped rejects passwords carrying obvious SQL injection substrings
var sqlShaped = []string{
	"'", "\"", "--", "/*", "*/", ";",
	" or ", " and ", "union ", "select ", "insert ", "update ", "delete ", "drop ",
}

// NormalizeUsername NFC-normalizes and validates a username
func NormalizeUsername(raw string) (string, error) {
	u := norm.NFC.String(strings.TrimSpace(raw))
	if !usernameRe.MatchString(u) {
		return "", perr.Validationf("username must be 3-50 characters of letters, digits, dot, dash or underscore")
	}
	return u, nil
}

// CheckPassword enforces the credential policy
func CheckPassword(pw string) error {
	if len(pw) < PasswordMinLen {
		return perr.Validationf("password must be at least %d characters", PasswordMinLen)
	}
	if len(pw) > PasswordMaxLen {
		return perr.Validationf("password must be at most %d characters", PasswordMaxLen)
	}

	var hasDigit, hasPunct bool
	for _, r := range pw {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordPunct, r):
			hasPunct = true
		}
	}
	if !hasDigit {
		return perr.Validationf("password must contain at least one digit")
	}
	if !hasPunct {
		return perr.Validationf("password must contain at least one special character")
	}

	lower := strings.ToLower(pw)
	for _, frag := range sqlShaped {
		if strings.Contains(lower, frag) {
			return perr.Validationf("password contains a disallowed sequence")
		}
	}
	return nil
}
