// Package phone normalizes and validates Korean mobile numbers.
package phone

import "strings"

// prefixes are the Korean mobile carrier prefixes.
var prefixes = []string{"010", "011", "016", "017", "018", "019"}

// Normalize strips every non-digit character.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Valid reports whether s is a normalized 11-digit mobile number with a
// known carrier prefix.
func Valid(s string) bool {
	if len(s) != 11 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Format renders an 11-digit number as "010-1234-5678" for display.
// Anything else is returned unchanged.
func Format(s string) string {
	d := Normalize(s)
	if len(d) != 11 {
		return s
	}
	return d[:3] + "-" + d[3:7] + "-" + d[7:]
}
