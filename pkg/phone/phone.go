// Package phone normalizes phone numbers to the canonical form used as the
// user lookup key: 11 digits with a leading 8 (e.g. 87471234567).
package phone

import "strings"

var punctuation = strings.NewReplacer(" ", "", "+", "", "-", "", "(", "", ")", "")

// Normalize strips spacing, punctuation and the plus sign, then collapses the
// country-code variants to the canonical 11-digit leading-8 form:
//   - "7XXXXXXXXXX" (11 digits)  -> "8XXXXXXXXXX"
//   - "XXXXXXXXXX"  (10 digits)  -> "8XXXXXXXXXX"
//
// Already-canonical input is returned unchanged, so Normalize is idempotent.
// Non-numeric identifiers (synthetic service ids) pass through untouched.
func Normalize(raw string) string {
	s := punctuation.Replace(raw)
	if !allDigits(s) {
		return s
	}
	switch {
	case len(s) == 11 && strings.HasPrefix(s, "7"):
		return "8" + s[1:]
	case len(s) == 10:
		return "8" + s
	default:
		return s
	}
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
