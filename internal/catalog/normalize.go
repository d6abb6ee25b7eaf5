package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize folds a category or segment name for comparison: lower-cased,
// trimmed, with one trailing "s" removed so "Mobiles" and "mobile" agree.
func Normalize(s string) string {
	// A Caser holds state and must not be shared between goroutines.
	s = strings.TrimSpace(cases.Lower(language.Und).String(s))
	return strings.TrimSuffix(s, "s")
}

// SameName reports whether two names are equal after normalization.
func SameName(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
