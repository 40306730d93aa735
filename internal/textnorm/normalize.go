// Package textnorm folds free text into the canonical form every matcher in
// the chatbot compares against.
package textnorm

import (
	"strings"
	"unicode"
)

var accentFolder = strings.NewReplacer(
	"á", "a",
	"é", "e",
	"í", "i",
	"ó", "o",
	"ú", "u",
	"ü", "u",
	"ñ", "n",
	"ç", "c",
)

// Normalize lowercases text, folds the Spanish accent table, turns every rune
// that is not a letter, digit or space into a space and collapses whitespace.
// It is total and idempotent.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	folded := accentFolder.Replace(strings.ToLower(text))

	var b strings.Builder
	b.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}

	return b.String()
}

// Tokens returns the space separated words of the normalized text.
func Tokens(text string) []string {
	return strings.Fields(Normalize(text))
}
