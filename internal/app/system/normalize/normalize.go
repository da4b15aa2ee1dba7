// Package normalize provides helper functions for consistent string
// normalization across the application, and the Normalizer that derives the
// lowercase / diacritic-free lookup fields stored alongside each record.
//
// The store has no case-insensitive or accent-insensitive search, so every
// lookup field is computed here at write time and searched verbatim later.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	textfold "github.com/dalemusser/waffle/pantry/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Email normalizes an email address by trimming whitespace and converting to lowercase.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name normalizes a name by trimming whitespace. Case is preserved.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam normalizes a query parameter by trimming whitespace.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Lower lowercases s with Unicode-aware rules (final sigma and friends).
// Diacritics are kept.
func Lower(s string) string {
	// A Caser carries state; never share one between goroutines.
	return cases.Lower(language.Und).String(s)
}

// SearchName returns s with diacritics stripped, whitespace collapsed to
// single spaces, trimmed and lowercased: "  José   Núñez " -> "jose nunez".
func SearchName(s string) string {
	return strings.Join(textfold.FoldTokens(s), " ")
}

// Handle canonicalizes a social handle: trimmed, one leading "@" removed,
// lowercased.
func Handle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "@")
	return Lower(strings.TrimSpace(s))
}

// LegacyCapitalize guesses how records written before normalization stored
// a name: first letter uppercased, the rest lowercased ("aNA" -> "Ana").
func LegacyCapitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + Lower(s[size:])
}
