// Package textmatch provides case-insensitive matching helpers shared by
// the event filter and the search fallback.
package textmatch

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// MinTokenRunes is the shortest query token kept by Tokens.
const MinTokenRunes = 3

// Fold returns s case-folded for comparison. A new Caser is built per call
// because Casers are stateful.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// Contains reports whether needle occurs in haystack ignoring case.
// An empty needle matches everything.
func Contains(haystack, needle string) bool {
	return strings.Contains(Fold(haystack), Fold(needle))
}

// ContainsAny reports whether any of the folded needles occurs in
// haystack. Needles are expected to be folded already (see Tokens).
func ContainsAny(haystack string, needles []string) bool {
	folded := Fold(haystack)
	for _, n := range needles {
		if strings.Contains(folded, n) {
			return true
		}
	}
	return false
}

// Tokens folds query, splits it on whitespace and punctuation and drops
// tokens shorter than MinTokenRunes.
func Tokens(query string) []string {
	fields := strings.FieldsFunc(Fold(query), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= MinTokenRunes {
			out = append(out, f)
		}
	}
	return out
}
