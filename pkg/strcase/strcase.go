// Package strcase converts identifiers like Go field names and log field keys to snake_case.
package strcase

import (
	"strings"
	"unicode"
)

// Snake converts a string to snake_case, e.g. a Go field name to a database column.
func Snake(s string) string {
	return convert(s, unicode.LowerCase)
}

// ScreamingSnake converts a string to SCREAMING_SNAKE_CASE, e.g. a log field key to a journald field.
func ScreamingSnake(s string) string {
	return convert(s, unicode.UpperCase)
}

// isDelimiter reports whether r separates words.
func isDelimiter(r rune) bool {
	switch r {
	case ' ', '_', '-', '.':
		return true
	default:
		return false
	}
}

// convert converts a camelCase or space/underscore/hyphen/dot delimited string into snake case
// with letters mapped to toCase, which must be unicode.LowerCase or unicode.UpperCase.
// A word boundary is inserted before an upper case letter following a lower case one
// and between digits and non-digits.
func convert(s string, toCase int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2)

	var prevLower, prevDigit bool
	for _, r := range s {
		if isDelimiter(r) {
			b.WriteByte('_')
			prevLower = false
			prevDigit = false

			continue
		}

		digit := unicode.IsNumber(r)
		if b.Len() > 0 && (digit != prevDigit || prevLower && unicode.IsUpper(r)) {
			b.WriteByte('_')
		}

		b.WriteRune(unicode.To(toCase, r))

		prevLower = unicode.IsLower(r)
		prevDigit = digit
	}

	return b.String()
}
