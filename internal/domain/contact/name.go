package contact

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CapitalizeName trims a display name, collapses whitespace runs to single
// spaces and title-cases every word ("  jOHN   smith " -> "John Smith").
// PRE: none
// POST: Returns "" for blank input
func CapitalizeName(raw string) string {
	words := strings.Fields(raw)
	for i, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}
