package present

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonWordChars  = regexp.MustCompile(`[^\w\s-]`)
	separatorRuns = regexp.MustCompile(`[\s_-]+`)
)

// Slug lowercases s, folds accents ("Sanofi-Aventis Élan" -> "sanofi-aventis-elan"),
// drops punctuation and joins words with single hyphens.
func Slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	slug := strings.ToLower(strings.TrimSpace(folded))
	slug = nonWordChars.ReplaceAllString(slug, "")
	slug = separatorRuns.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// Truncate cuts s to maxLen characters and appends "...". maxLen <= 0 means 100.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = 100
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}

// CapitalizeFirst upper-cases the first character.
func CapitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Title title-cases every word: "oncology drug-development" -> "Oncology Drug-Development".
func Title(s string) string {
	return cases.Title(language.English).String(s)
}

// FormatCurrency renders whole US dollars: 1234567.8 -> "$1,234,568".
func FormatCurrency(v float64) string {
	rounded := int64(math.Round(v))
	if rounded < 0 {
		return "-$" + humanize.Comma(-rounded)
	}
	return "$" + humanize.Comma(rounded)
}
