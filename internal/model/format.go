package model

import (
	"strings"
	"unicode"
)

// FormatClaimType turns a category code like "water_damage" into a display
// title like "Water Damage": underscores become spaces and each word's first
// letter is capitalized.
func FormatClaimType(t string) string {
	words := strings.Split(t, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
