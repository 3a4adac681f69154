package slug

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9-]+`)
	dashRuns     = regexp.MustCompile(`-+`)
)

// Make turns a display name into a URL slug.
// "Zoë's Black & Grey Studio" → "zoes-black-grey-studio"
func Make(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(t, input)
	if err != nil {
		ascii = input
	}

	lower := strings.ToLower(strings.TrimSpace(ascii))
	lower = strings.ReplaceAll(lower, "'", "")
	hyphenated := strings.Join(strings.Fields(lower), "-")
	cleaned := invalidChars.ReplaceAllString(hyphenated, "-")
	normalized := dashRuns.ReplaceAllString(cleaned, "-")

	return strings.Trim(normalized, "-")
}

// Unique returns base, or base suffixed with -2, -3, ... until taken reports false.
func Unique(base string, taken func(candidate string) (bool, error)) (string, error) {
	if base == "" {
		base = "item"
	}
	candidate := base
	for i := 2; ; i++ {
		exists, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
