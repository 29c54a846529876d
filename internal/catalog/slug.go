package catalog

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalid   = regexp.MustCompile(`[^a-z0-9-]+`)
	slugMultiDash = regexp.MustCompile(`-{2,}`)
)

// Slugify turns a display name into an ASCII, URL-safe category slug:
// accents are stripped, letters lowered, everything else becomes a single dash.
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	result, _, _ := transform.String(t, name)
	result = strings.ToLower(result)
	result = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '-'
	}, result)
	result = slugInvalid.ReplaceAllString(result, "-")
	result = slugMultiDash.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

