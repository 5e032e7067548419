package validator

import (
	"strings"
	"unicode"
)

// snakeCase lowers a Go field name into the snake_case key clients see,
// keeping initialisms together: RecipientIDs -> recipient_ids, HTTPRetry -> http_retry.
func snakeCase(name string) string {
	runes := []rune(name)

	var b strings.Builder
	b.Grow(len(name) + 4)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && wordStart(runes, i) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// wordStart reports whether the upper case rune at i opens a new word.
func wordStart(runes []rune, i int) bool {
	prev := runes[i-1]
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	if !unicode.IsUpper(prev) || i+1 >= len(runes) {
		return false
	}
	next := runes[i+1]
	// "IDs": a trailing lower case s pluralises the initialism.
	if next == 's' && i+2 == len(runes) {
		return false
	}
	return unicode.IsLower(next)
}
