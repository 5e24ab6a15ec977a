package consolidation

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes and removes combining marks so "Électro" and
// "Electro" compare equal.
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName reduces a company name to its comparison form: diacritics
// stripped, case folded, whitespace collapsed. Duplicate tenant records
// created by the registration bug differ in ID but share a normalized name.
func NormalizeName(name string) string {
	out, _, err := transform.String(stripMarks, name)
	if err != nil {
		out = name
	}
	out = cases.Fold().String(out)
	return strings.Join(strings.Fields(out), " ")
}

// sameLogicalName reports whether every company shares one normalized name.
func sameLogicalName(companies []*Company) bool {
	if len(companies) < 2 {
		return true
	}
	want := NormalizeName(companies[0].Name)
	for _, c := range companies[1:] {
		if NormalizeName(c.Name) != want {
			return false
		}
	}
	return true
}
