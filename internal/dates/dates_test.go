package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDayFirst(t *testing.T) {
	cases := []struct {
		in      string
		y, m, d int
	}{
		{"01-03-2021", 2021, 3, 1},
		{"15-03-2021", 2021, 3, 15},
		{"03/04/2021", 2021, 4, 3},
		{"3/4/2021", 2021, 4, 3},
		{"03.04.2021", 2021, 4, 3},
		{"2021-04-03", 2021, 4, 3},
		{"2021/04/03", 2021, 4, 3},
		{"2021-04-03T10:00:00Z", 2021, 4, 3},
		{"2021-04-03 10:00:00", 2021, 4, 3},
		{"3 Apr 2021", 2021, 4, 3},
		{"03-Apr-2021", 2021, 4, 3},
		{"15/03/21", 2021, 3, 15},
		// d/m impossible, falls back to m/d
		{"12/31/2021", 2021, 12, 31},
		{"April 3, 2021", 2021, 4, 3},
		{"  01-03-2021  ", 2021, 3, 1},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := Parse(tc.in)
			require.True(t, ok)
			assert.Equal(t, time.Date(tc.y, time.Month(tc.m), tc.d, 0, 0, 0, 0, time.UTC), got)
		})
	}
}

func TestParseFailures(t *testing.T) {
	for _, in := range []string{"", "   ", "not a date", "32-01-2021", "31-02-2021", "2021-13-01", "??/??/????"} {
		_, ok := Parse(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestDerive(t *testing.T) {
	p := Derive(time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC), true)
	assert.Equal(t, Parts{Year: 2020, Month: 2, Day: 29, Valid: true}, p)

	assert.Equal(t, Parts{}, Derive(time.Time{}, false))
	assert.Equal(t, Parts{}, Derive(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), false))
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 31, DaysIn(2021, time.March))
	assert.Equal(t, 30, DaysIn(2021, time.April))
	assert.Equal(t, 28, DaysIn(2021, time.February))
	assert.Equal(t, 29, DaysIn(2020, time.February))
	assert.Equal(t, 31, DaysIn(2021, time.December))
}
