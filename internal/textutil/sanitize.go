package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", " -",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
	"\x00", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a single path
// segment. Slashes, backslashes, and asterisks become dashes, colons become
// " -", other unsafe characters are removed, whitespace runs collapse, and
// leading dots and spaces are stripped so the result is never hidden, "." or
// "..". Input made only of dots and spaces yields "".
func SanitizeFileName(name string) string {
	name = strings.Join(strings.Fields(fileNameReplacer.Replace(name)), " ")
	name = strings.TrimLeft(name, ". ")
	return strings.TrimSpace(name)
}

var titleCaser = cases.Title(language.English, cases.NoLower)

// TitleCase capitalizes each word of a Latin title while leaving existing
// capitals (acronyms, CJK text) untouched.
func TitleCase(s string) string {
	return titleCaser.String(strings.TrimSpace(s))
}
