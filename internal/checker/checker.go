// Package checker decides whether a program's output matches the expected answer.
//
// The comparison is deliberately lenient: every whitespace rune is removed
// before comparing, so "45" matches "4 5". Tokens must still appear in the
// same order.
package checker

import (
	"strings"
	"unicode"
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeLineEndings converts CRLF and lone CR line endings to LF
func NormalizeLineEndings(s string) string {
	return lineEndings.Replace(s)
}

// Normalize canonicalizes line endings and strips all whitespace
func Normalize(s string) string {
	s = NormalizeLineEndings(s)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// IsMatch reports whether actual and expected are equal once normalized.
// Two empty outputs match.
func IsMatch(actual, expected string) bool {
	return Normalize(actual) == Normalize(expected)
}

// Display returns s with canonical line endings and surrounding whitespace trimmed
func Display(s string) string {
	return strings.TrimSpace(NormalizeLineEndings(s))
}
