package util

import (
	"regexp"
	"strings"
)

var (
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernamePattern = regexp.MustCompile(`^[a-z0-9_.\-]+$`)
	lowerPattern    = regexp.MustCompile("[a-z]")
	upperPattern    = regexp.MustCompile("[A-Z]")
	digitPattern    = regexp.MustCompile("[0-9]")
	specialPattern  = regexp.MustCompile(`[^A-Za-z0-9]`)
)

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateUsername accepts 3 to 30 characters of lowercase letters, digits
// and _.- after lowercasing.
func ValidateUsername(username string) bool {
	username = strings.ToLower(username)
	return len(username) >= 3 && len(username) <= 30 && usernamePattern.MatchString(username)
}

func ValidatePassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	return lowerPattern.MatchString(password) &&
		upperPattern.MatchString(password) &&
		digitPattern.MatchString(password) &&
		specialPattern.MatchString(password)
}
