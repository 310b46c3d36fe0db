package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldString lowercases str and strips diacritics so that "Café-Notes" and
// "cafe-notes" compare equal.
// Usage: FoldString("yourInputString")
func FoldString(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, str)
	if err != nil {
		folded = str
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// TitleFromSlug turns "my-first_post" into "My First Post"
func TitleFromSlug(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	return cases.Title(language.English).String(strings.Join(words, " "))
}
