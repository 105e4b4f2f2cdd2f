// Package phone normalizes and formats Russian phone numbers.
package phone

import "strings"

// Length is the digit count of a complete number (country digit + 10).
const Length = 11

// Normalize strips everything but decimal digits from raw. The result is a
// canonical digit string; Normalize(Format(d)) == d for any complete number
// d with a leading 7.
func Normalize(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

// IsValid reports whether raw contains exactly 11 digits.
func IsValid(raw string) bool { return len(Normalize(raw)) == Length }

// Format renders the best partial display string for the digits entered so
// far: "+7", "+7 (XXX", "+7 (XXX) XXX", "+7 (XXX) XXX-XX" and finally
// "+7 (XXX) XXX-XX-XX". The leading digit is always displayed as +7
// regardless of what was typed (8, 7 or anything else).
func Format(raw string) string {
	d := Normalize(raw)
	switch n := len(d); {
	case n == 0:
		return ""
	case n <= 1:
		return "+7"
	case n <= 4:
		return "+7 (" + d[1:]
	case n <= 7:
		return "+7 (" + d[1:4] + ") " + d[4:]
	case n <= 9:
		return "+7 (" + d[1:4] + ") " + d[4:7] + "-" + d[7:]
	default:
		if len(d) > Length {
			d = d[:Length]
		}
		return "+7 (" + d[1:4] + ") " + d[4:7] + "-" + d[7:9] + "-" + d[9:]
	}
}
