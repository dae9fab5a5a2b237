package domain

import (
	"strings"
	"unicode"
)

// NormalizeActivityType prepares an activity type for storage:
//   - trims leading/trailing whitespace
//   - compresses runs of whitespace into one space
//   - title-cases each word (first letter upper, rest lower); a hyphen starts
//     a new word
func NormalizeActivityType(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	wordStart := true
	for _, r := range text {
		if r == ' ' || r == '-' {
			wordStart = true
			b.WriteRune(r)
			continue
		}
		if wordStart {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
		wordStart = false
	}
	return b.String()
}
