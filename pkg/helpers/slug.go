package helpers

import (
	"strings"
	"unicode"
)

// Slugify converts a title into a URL slug: lowercase, alphanumerics kept,
// everything else collapsed into single hyphens.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true // trim leading hyphens

	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}
