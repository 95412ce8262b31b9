// Package resident validates, masks, and formats Korean resident
// registration numbers. Validation is a data-quality gate in front of the
// PII vault: it is the only check between garbage input and permanent
// encrypted storage.
package resident

import "strings"

// Length is the number of digits in a resident registration number.
const Length = 13

// checksum weights over the first 12 digits.
var weights = [12]int{2, 3, 4, 5, 6, 7, 8, 9, 2, 3, 4, 5}

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

// Valid reports whether number is a well-formed 13-digit resident number:
// the gender/century digit (7th) must be in 1..8, and the 13th digit must
// match the standard checksum.
func Valid(number string) bool {
	if len(number) != Length {
		return false
	}
	for i := 0; i < Length; i++ {
		if number[i] < '0' || number[i] > '9' {
			return false
		}
	}

	gender := int(number[6] - '0')
	if gender < 1 || gender > 8 {
		return false
	}

	sum := 0
	for i := 0; i < 12; i++ {
		sum += int(number[i]-'0') * weights[i]
	}
	check := (11 - sum%11) % 10
	return check == int(number[12]-'0')
}

// Checksum returns the check digit for the first 12 digits of a resident
// number. The input must be at least 12 digits; only the first 12 are used.
func Checksum(first12 string) int {
	sum := 0
	for i := 0; i < 12; i++ {
		sum += int(first12[i]-'0') * weights[i]
	}
	return (11 - sum%11) % 10
}

// Mask returns the display-safe projection: birth date, hyphen, gender
// digit, and six literal mask characters. It never round-trips to the real
// number.
func Mask(number string) string {
	if len(number) != Length {
		return ""
	}
	return number[:6] + "-" + number[6:7] + "******"
}

// Hyphenate formats a 13-digit number as "YYMMDD-GNNNNNN" for privileged
// display. Returns "" for anything that is not exactly 13 digits.
func Hyphenate(number string) string {
	if len(number) != Length {
		return ""
	}
	return number[:6] + "-" + number[6:]
}
