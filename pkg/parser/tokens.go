package parser

import (
	"regexp"
	"strings"
)

var (
	// Base call sign: prefix, digit, suffix ending in a letter.
	callsignPattern = regexp.MustCompile(`^[A-Z0-9]{1,3}[0-9][A-Z0-9]{0,3}[A-Z]$`)

	// Portable prefix or suffix attached with a slash (TA4/G8SCU, G8SCU/P).
	portablePattern = regexp.MustCompile(`^[A-Z0-9]{1,4}$`)

	// Maidenhead locator, 4, 6 or 8 characters.
	gridPattern = regexp.MustCompile(`^[A-R]{2}[0-9]{2}([a-x]{2}([0-9]{2})?)?$`)
)

// IsCallsign reports whether s looks like an amateur radio call sign.
// Hashed calls in angle brackets (<K1ABC>) and portable forms with one
// slash-separated prefix or suffix are accepted. Grid locators and reports
// (IO91, RR73, 599) are not.
func IsCallsign(s string) bool {
	s = strings.ToUpper(strings.Trim(s, "<>"))
	if len(s) < 3 || len(s) > 15 {
		return false
	}

	parts := strings.Split(s, "/")
	switch len(parts) {
	case 1:
		return callsignPattern.MatchString(s)
	case 2:
		if callsignPattern.MatchString(parts[0]) {
			return portablePattern.MatchString(parts[1])
		}
		return callsignPattern.MatchString(parts[1]) && portablePattern.MatchString(parts[0])
	default:
		return false
	}
}

// IsGridLocator reports whether s is a Maidenhead grid locator.
// Exchange tokens that happen to fit the shape (RR73) are rejected.
func IsGridLocator(s string) bool {
	if len(s) != 4 && len(s) != 6 && len(s) != 8 {
		return false
	}

	upper := strings.ToUpper(s)
	if upper == "RR73" {
		return false
	}

	s = upper[0:4] + strings.ToLower(s[4:])
	return gridPattern.MatchString(s)
}
