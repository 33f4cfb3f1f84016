package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldDiacritics decomposes runes and drops combining marks, so that
// "Amélie" and "Amelie" normalize identically.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes a title for comparison: lower-case, diacritics
// folded, every rune that is not alphanumeric or whitespace stripped, and
// whitespace runs collapsed to single spaces. Total on any input; idempotent.
func Normalize(title string) string {
	folded, _, err := transform.String(foldDiacritics, title)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
