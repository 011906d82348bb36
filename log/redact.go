package log

import "strings"

// RedactString keeps the first and last two characters of s. Strings of up to
// eight characters are fully masked.
func RedactString(s string) string {
	const keep = 2
	if len(s) <= 4*keep {
		return strings.Repeat("*", len(s))
	}
	return s[:keep] + strings.Repeat("*", len(s)-2*keep) + s[len(s)-keep:]
}
