package budgetcsv

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// requiredMarker annotates mandatory columns in the template header.
const requiredMarker = " (*)"

var nonKeyRun = regexp.MustCompile(`[^a-z0-9]+`)

// combiningMarks covers U+0300 to U+036F, the accents left behind by NFD.
var combiningMarks = runes.In(&unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036F, Stride: 1}},
})

// stripMarks decomposes s and drops combining diacritical marks.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(combiningMarks), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizeHeader turns a column label into a comparison key:
// "Preço Total (*)" becomes "preco_total".
func NormalizeHeader(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, requiredMarker, "")
	s = stripMarks(s)
	s = strings.ReplaceAll(s, "ç", "c")
	s = nonKeyRun.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// NormalizeData strips diacritics and leaves case and punctuation alone.
func NormalizeData(s string) string {
	if s == "" {
		return ""
	}
	return stripMarks(s)
}
