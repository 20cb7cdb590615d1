// Package slug derives URL slugs from display names.
package slug

import (
	"strings"
	"unicode"
)

// Make lowercases s and replaces every run of non-alphanumerics with a
// single '-', trimming dashes at either end.
func Make(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
