package model

import (
	"strings"
	"unicode"
)

// KeyLabeler returns the parameter key untouched. It is the default.
func KeyLabeler(name string) string {
	return name
}

// HumanLabeler title-cases a parameter key, splitting on underscores,
// dashes, spaces, camelCase humps and letter/digit changes:
// "MAX_ROWS" becomes "Max Rows", "plantId2" becomes "Plant Id 2".
func HumanLabeler(name string) string {
	var words []string
	for _, chunk := range strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	}) {
		words = append(words, splitHumps(chunk)...)
	}
	for i, word := range words {
		lower := []rune(strings.ToLower(word))
		lower[0] = unicode.ToUpper(lower[0])
		words[i] = string(lower)
	}
	return strings.Join(words, " ")
}

func splitHumps(word string) []string {
	runes := []rune(word)
	var parts []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		hump := unicode.IsLower(prev) && unicode.IsUpper(cur)
		digitEdge := unicode.IsDigit(prev) != unicode.IsDigit(cur)
		if hump || digitEdge {
			parts = append(parts, string(runes[start:i]))
			start = i
		}
	}
	return append(parts, string(runes[start:]))
}
