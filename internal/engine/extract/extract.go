// Package extract pulls 5-digit order numbers out of free text.
package extract

import (
	"regexp"
	"strings"
)

// Order numbers are exactly 5 digits, bounded by non-digit characters.
var orderNumberRe = regexp.MustCompile(`\b\d{5}\b`)

var standaloneRe = regexp.MustCompile(`^\d{5}$`)

// OrderNumber returns the first 5-digit order number found in text,
// or an empty string when none is present. A trimmed message that is
// exactly 5 digits is returned as-is.
func OrderNumber(text string) string {
	trimmed := strings.TrimSpace(text)
	if standaloneRe.MatchString(trimmed) {
		return trimmed
	}
	return orderNumberRe.FindString(text)
}

// IsStandalone reports whether the trimmed text is exactly a 5-digit number.
func IsStandalone(text string) bool {
	return standaloneRe.MatchString(strings.TrimSpace(text))
}
