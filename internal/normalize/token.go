// Package normalize derives filesystem-safe directory tokens from book
// titles. The token is recomputed from the title on every use, never stored,
// so the mapping must stay stable: changing it orphans previously filed
// audio directories.
package normalize

import (
	"strings"
	"unicode"
)

// UnknownToken is returned for empty, whitespace-only, or all-symbol titles.
const UnknownToken = "unknown"

// Token converts a free-text title into its directory token: characters
// outside the letter/digit/whitespace set are stripped, whitespace runs are
// collapsed, each word gets its first rune upper-cased (PascalCase), and the
// words are joined with no separator.
//
//	"the name of the wind" -> "TheNameOfTheWind"
//	"Harry Potter #1!"     -> "HarryPotter1"
//	"***"                  -> "unknown"
//
// Only the first rune of each word is touched, so the function is idempotent
// on its own output. The result never contains whitespace or a path
// separator.
func Token(title string) string {
	var cleaned strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			cleaned.WriteRune(r)
		}
	}

	words := strings.Fields(cleaned.String())
	if len(words) == 0 {
		return UnknownToken
	}

	var token strings.Builder
	for _, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		token.WriteString(string(runes))
	}
	return token.String()
}
