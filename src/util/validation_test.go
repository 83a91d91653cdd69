package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	cases := map[string]bool{
		"me@example.com":      true,
		"first.last+tag@a.io": true,
		"no-at-sign.com":      false,
		"me@localhost":        false,
		"":                    false,
		"two@@example.com":    false,
	}
	for email, want := range cases {
		assert.Equal(t, want, ValidateEmail(email), email)
	}
}

func TestValidateUsername(t *testing.T) {
	cases := map[string]bool{
		"bob":                             true,
		"Bob_Smith":                       true,
		"j.doe-2":                         true,
		"ab":                              false,
		"with space":                      false,
		"abcdefghijklmnopqrstuvwxyz12345": false,
	}
	for name, want := range cases {
		assert.Equal(t, want, ValidateUsername(name), name)
	}
}

func TestValidatePassword(t *testing.T) {
	cases := map[string]bool{
		"Secret#123": true,
		"short1!A":   true,
		"Sh0rt!":     false,
		"alllower1!": false,
		"ALLUPPER1!": false,
		"NoDigits!!": false,
		"NoSpecial1": false,
	}
	for pw, want := range cases {
		assert.Equal(t, want, ValidatePassword(pw), pw)
	}
}
