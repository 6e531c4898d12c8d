package dataset

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casetrend/internal/schema"
)

func row(date string, region string, confirmed int64) Row {
	d, _ := time.Parse("2006-01-02", date)
	return Row{
		Date: d, Region: region, ConfirmedCases: confirmed,
		Year: d.Year(), Month: int(d.Month()), Day: d.Day(),
	}
}

func TestTableAccessorsCopy(t *testing.T) {
	src := []Row{row("2021-01-01", "B", 1), row("2021-02-01", "A", 2)}
	tbl := NewTable(src)
	src[0].Region = "mutated"

	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "B", tbl.At(0).Region)

	rows := tbl.Rows()
	rows[1].Region = "mutated"
	assert.Equal(t, "A", tbl.At(1).Region)
}

func TestTableOptions(t *testing.T) {
	tbl := NewTable([]Row{
		row("2020-03-01", "Kerala", 1),
		row("2021-01-05", "Delhi", 2),
		row("2021-03-09", "Kerala", 3),
	})
	assert.Equal(t, []string{"Delhi", "Kerala"}, tbl.Regions())
	assert.Equal(t, []int{2020, 2021}, tbl.Years())
	assert.Equal(t, []int{1, 3}, tbl.Months())

	first, last, ok := tbl.DateRange()
	require.True(t, ok)
	assert.Equal(t, 2020, first.Year())
	assert.Equal(t, 9, last.Day())

	_, _, ok = NewTable(nil).DateRange()
	assert.False(t, ok)
}

func TestTableFilterAndRecords(t *testing.T) {
	tbl := NewTable([]Row{row("2021-01-01", "A", 10), row("2021-01-02", "B", 20)})
	only := tbl.Filter(func(r Row) bool { return r.Region == "B" })
	require.Equal(t, 1, only.Len())
	assert.Equal(t, 2, tbl.Len())

	recs := only.Records()
	require.Len(t, recs, 1)
	d, _ := recs[0].Get(schema.ColDate)
	assert.Equal(t, "2021-01-02", d)
	c, _ := recs[0].Get(schema.ColConfirmedCases)
	assert.Equal(t, "20", c)
	assert.Len(t, recs[0], 6)
}

func TestRowValue(t *testing.T) {
	r := Row{}
	for i, m := range schema.Metrics {
		r = r.SetValue(m, int64(i+1))
	}
	for i, m := range schema.Metrics {
		assert.Equal(t, int64(i+1), r.Value(m))
	}
}

func TestNilTable(t *testing.T) {
	var tbl *Table
	assert.Equal(t, 0, tbl.Len())
	assert.Nil(t, tbl.Rows())
	assert.Empty(t, tbl.Regions())
}

func TestStorePublishSwap(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.Current())

	first := s.Publish("a.csv", NewTable([]Row{row("2021-01-01", "A", 1)}))
	held := s.Current()
	require.Equal(t, first.ID, held.ID)

	second := s.Publish("b.csv", NewTable(nil))
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "b.csv", s.Current().Source)

	// a reader holding the old snapshot still sees the old table
	assert.Equal(t, 1, held.Table.Len())
}

func TestStoreConcurrentReaders(t *testing.T) {
	s := NewStore()
	s.Publish("seed", NewTable([]Row{row("2021-01-01", "A", 1)}))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				snap := s.Current()
				assert.NotNil(t, snap.Table)
			}
		}()
	}
	for i := 0; i < 10; i++ {
		s.Publish("next", NewTable([]Row{row("2021-01-02", "B", int64(i))}))
	}
	wg.Wait()
}
