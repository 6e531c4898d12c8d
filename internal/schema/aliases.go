package schema

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"casetrend/pkg/records"
)

// aliases maps a folded header (see foldHeader) to its canonical column.
var aliases = map[string]string{
	"date":          ColDate,
	"dt":            ColDate,
	"reported date": ColDate,
	"date reported": ColDate,

	"region":                ColRegion,
	"state":                 ColRegion,
	"state/ut":              ColRegion,
	"state/unionterritory":  ColRegion,
	"state/union territory": ColRegion,
	"name of state/ut":      ColRegion,
	"province":              ColRegion,
	"province/state":        ColRegion,
	"country":               ColRegion,
	"country/region":        ColRegion,

	"confirmed":       ColConfirmedCases,
	"confirmed cases": ColConfirmedCases,
	"cases":           ColConfirmedCases,
	"total cases":     ColConfirmedCases,
	"total confirmed": ColConfirmedCases,

	"active":       ColActiveCases,
	"active cases": ColActiveCases,

	"cured":                     ColCuredDischarged,
	"recovered":                 ColCuredDischarged,
	"discharged":                ColCuredDischarged,
	"cured/discharged":          ColCuredDischarged,
	"cured/discharged/migrated": ColCuredDischarged,

	"death":  ColDeath,
	"deaths": ColDeath,
}

// NormalizeHeader maps a source header to its canonical column name. Headers
// that are not in the alias table are returned trimmed but otherwise as-is.
// NormalizeHeader(NormalizeHeader(h)) == NormalizeHeader(h).
func NormalizeHeader(h string) string {
	trimmed := strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
	if canon, ok := aliases[foldHeader(trimmed)]; ok {
		return canon
	}
	return trimmed
}

// Normalize rewrites the keys of every record to canonical names. Values and
// field order are untouched and no record is dropped. The input is not
// modified.
func Normalize(in []records.Record) []records.Record {
	out := make([]records.Record, len(in))
	cache := make(map[string]string)
	for i, rec := range in {
		nr := make(records.Record, len(rec))
		for j, f := range rec {
			k, ok := cache[f.Key]
			if !ok {
				k = NormalizeHeader(f.Key)
				cache[f.Key] = k
			}
			nr[j] = records.Field{Key: k, Value: f.Value}
		}
		out[i] = nr
	}
	return out
}

// foldHeader lowercases, strips accents and collapses inner whitespace so
// "  Cured / Discharged", "cured/discharged" and "Curéd/Discharged" compare
// equal.
func foldHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	// Decompose → remove nonspacing marks (accents) → recompose.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	s = strings.ReplaceAll(s, "_", " ")
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ReplaceAll(s, " / ", "/")
	return s
}
