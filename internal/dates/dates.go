// Package dates parses the free-text Date column of a case-count dataset and
// derives the Year/Month/Day fields used for grouping.
//
// Parsing is day-first: an ambiguous "03/04/2021" is the 3rd of April. Layouts
// with a four-digit leading year are tried first because they cannot be
// ambiguous; the m/d forms are only reached when the d/m reading is invalid
// (e.g. "12/31/2021").
package dates

import (
	"strings"
	"time"
)

// layouts is ordered: unambiguous ISO forms, then day-first, then month-first.
var layouts = []string{
	// ISO
	"2006-01-02",
	"2006-1-2",
	"2006/01/02",
	"2006.01.02",
	"20060102",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",

	// DMY
	"02-01-2006",
	"2-1-2006",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
	"2.1.2006",
	"02-01-06",
	"02/01/06",
	"2/1/06",
	"02/01/2006 15:04:05",
	"02-01-2006 15:04:05",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-06",

	// MDY
	"01-02-2006",
	"1-2-2006",
	"01/02/2006",
	"1/2/2006",
	"01.02.2006",
	"1/2/06",
	"01/02/2006 15:04:05",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// Parse parses s using the day-first layout list. It returns false when no
// layout matches; it never panics.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, ok := parseDDMMYYYY(s); ok {
		return t, true
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parseDDMMYYYY is an allocation-free fast path for the common "DD-MM-YYYY",
// "DD/MM/YYYY" and "DD.MM.YYYY" forms.
func parseDDMMYYYY(s string) (time.Time, bool) {
	if len(s) != 10 {
		return time.Time{}, false
	}
	sep := s[2]
	if (sep != '-' && sep != '/' && sep != '.') || s[5] != sep {
		return time.Time{}, false
	}
	d, ok1 := atoi(s[0:2])
	m, ok2 := atoi(s[3:5])
	y, ok3 := atoi(s[6:10])
	if !ok1 || !ok2 || !ok3 {
		return time.Time{}, false
	}
	if m < 1 || m > 12 || d < 1 || d > DaysIn(y, time.Month(m)) {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), true
}

func atoi(s string) (int, bool) {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// Parts are the fields derived from a date.
type Parts struct {
	Year  int
	Month int
	Day   int
	Valid bool
}

// Derive splits t into Year/Month/Day. When ok is false every field is zero
// and Valid is false.
func Derive(t time.Time, ok bool) Parts {
	if !ok || t.IsZero() {
		return Parts{}
	}
	return Parts{Year: t.Year(), Month: int(t.Month()), Day: t.Day(), Valid: true}
}

// DaysIn returns the number of days in month m of year y.
func DaysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
