package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casetrend/internal/analysis"
	"casetrend/internal/clean"
	"casetrend/internal/config"
	"casetrend/internal/dataset"
	"casetrend/internal/outlier"
	"casetrend/internal/parser"
	"casetrend/internal/schema"
	"casetrend/internal/storage"
	"casetrend/pkg/records"
)

const indiaCSV = "Sno,Date,Time,State/UnionTerritory,Cured,Deaths,Confirmed\n" +
	"1,30/01/2020,6:00 PM,Kerala,0,0,1\n" +
	"2,01/03/2021,8:00 AM,Kerala,10,1,20\n" +
	"3,02/03/2021,8:00 AM,Kerala,12,2,25\n" +
	"4,02/03/2021,8:00 AM,Goa,1,0,3\n" +
	"5,02/03/2021,8:00 AM,Goa,1,0,3\n" +
	"6,,8:00 AM,Goa,1,0,3\n" +
	"7,03/03/2021,8:00 AM,,1,0,3\n" +
	"8,01/01/1970,8:00 AM,Goa,1,0,3\n"

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func filePipeline(path string) config.Pipeline {
	return config.Pipeline{
		Job:    "test",
		Source: config.Source{Kind: SourceFile, File: config.SourceFile{Path: path}},
		Parser: config.Parser{Kind: parser.KindAuto, Options: config.Options{}},
	}
}

func TestNormalizeAndClean(t *testing.T) {
	rows := []records.Record{
		records.FromRow([]string{"Date", "State", "Deaths"}, []string{"2021-03-01", "Kerala", "4"}),
		records.FromRow([]string{"Date", "State", "Deaths"}, []string{"2021-03-01", "Kerala", "4"}),
		records.FromRow([]string{"Date", "State", "Deaths"}, []string{"2019-03-01", "Kerala", "4"}),
	}
	tbl, err := NormalizeAndClean(rows, 0)
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, int64(4), tbl.At(0).Value(schema.Death))

	tbl, err = NormalizeAndClean(rows, 2019)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())

	_, err = NormalizeAndClean([]records.Record{records.FromRow([]string{"Deaths"}, []string{"1"})}, 0)
	var se *clean.SchemaError
	require.ErrorAs(t, err, &se)
}

func TestRemoveOutliersAndBuildChart(t *testing.T) {
	var rows []records.Record
	for d := 1; d <= 9; d++ {
		deaths := "5"
		if d == 9 {
			deaths = "500"
		}
		rows = append(rows, records.FromRow(
			[]string{"Date", "Region", "Death"},
			[]string{"2021-03-0" + string(rune('0'+d)), "Kerala", deaths},
		))
	}
	tbl, err := NormalizeAndClean(rows, 0)
	require.NoError(t, err)
	require.Equal(t, 9, tbl.Len())

	kept := RemoveOutliers(tbl, []schema.Metric{schema.Death}, outlier.ByYear, outlier.DefaultMultiplier)
	assert.Equal(t, 8, kept.Len())

	in, err := BuildChart(kept, analysis.Criteria{Region: "Kerala", Year: 2021, Month: 3, Metric: "Death"})
	require.NoError(t, err)
	assert.Equal(t, analysis.Line, in.Kind)
	assert.Len(t, in.Points, 31)
	assert.Equal(t, int64(5), in.Points[0].Y)
	assert.Equal(t, int64(0), in.Points[8].Y)
}

func TestRunnerRunFile(t *testing.T) {
	store := dataset.NewStore()
	r := NewRunner(filePipeline(writeFile(t, "covid_19_india.csv", indiaCSV)), store)

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sum.Snapshot)
	assert.Same(t, sum.Snapshot, store.Current())
	assert.Equal(t, "covid_19_india.csv", sum.Snapshot.Source)

	assert.Equal(t, 8, sum.Loaded)
	assert.Equal(t, 1, sum.Clean.DroppedNoDate)
	assert.Equal(t, 1, sum.Clean.DroppedNoRegion)
	assert.Equal(t, 1, sum.Clean.DroppedMinYear)
	assert.Equal(t, 1, sum.Clean.DroppedDuplicate)
	assert.Equal(t, 4, sum.Snapshot.Table.Len())
	assert.Equal(t, []string{"Goa", "Kerala"}, sum.Snapshot.Table.Regions())
}

func TestRunnerOutliersEnabled(t *testing.T) {
	pl := filePipeline(writeFile(t, "cases.csv", indiaCSV))
	pl.Outliers = config.Outliers{Enabled: true, GroupBy: "None", Metrics: []string{"Confirmed Cases"}}

	sum, err := NewRunner(pl, dataset.NewStore()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sum.Clean.Kept-sum.Outliers, sum.Snapshot.Table.Len())

	pl.Outliers.GroupBy = "Week"
	_, err = NewRunner(pl, dataset.NewStore()).Run(context.Background())
	require.Error(t, err)
}

func TestRunnerFailureKeepsPreviousSnapshot(t *testing.T) {
	store := dataset.NewStore()
	good := filePipeline(writeFile(t, "cases.csv", indiaCSV))
	first, err := NewRunner(good, store).Run(context.Background())
	require.NoError(t, err)

	bad := filePipeline(writeFile(t, "cases.csv", "Region,Deaths\nKerala,1\n"))
	_, err = NewRunner(bad, store).Run(context.Background())
	var se *clean.SchemaError
	require.ErrorAs(t, err, &se)
	assert.Same(t, first.Snapshot, store.Current())

	_, err = NewRunner(filePipeline(filepath.Join(t.TempDir(), "missing.csv")), store).Run(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Same(t, first.Snapshot, store.Current())
}

func TestRunnerIngest(t *testing.T) {
	store := dataset.NewStore()
	r := NewRunner(config.Pipeline{}, store)

	body := `[{"Date":"2021-03-01","Region":"Goa","Death":2},{"Date":"2021-03-02","Region":"Goa","Death":3}]`
	sum, err := r.Ingest("upload.json", strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Snapshot.Table.Len())
	assert.Equal(t, "upload.json", store.Current().Source)

	_, err = r.Ingest("upload.pdf", strings.NewReader("%PDF"))
	require.ErrorIs(t, err, parser.ErrUnsupportedFormat)
	assert.Equal(t, "upload.json", store.Current().Source)
}

type fakeRepo struct {
	recs []records.Record
	err  error
}

func (f *fakeRepo) Load(context.Context) ([]records.Record, error) { return f.recs, f.err }
func (f *fakeRepo) Name() string                                   { return "fake:cases" }
func (f *fakeRepo) Close()                                         {}

func TestRunnerRunSQL(t *testing.T) {
	orig := openSQLFn
	t.Cleanup(func() { openSQLFn = orig })

	var got storage.Config
	openSQLFn = func(_ context.Context, cfg storage.Config) (storage.Repository, error) {
		got = cfg
		return &fakeRepo{recs: []records.Record{
			records.FromRow([]string{"date", "state", "confirmed"}, []string{"2021-04-01", "Goa", "9"}),
		}}, nil
	}

	pl := config.Pipeline{Source: config.Source{Kind: SourceSQL, SQL: config.SourceSQL{
		Driver: "sqlite", DSN: "cases.db", Table: "cases",
	}}}
	sum, err := NewRunner(pl, dataset.NewStore()).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, storage.Config{Kind: "sqlite", DSN: "cases.db", Table: "cases"}, got)
	assert.Equal(t, "fake:cases", sum.Snapshot.Source)
	assert.Equal(t, int64(9), sum.Snapshot.Table.At(0).Value(schema.ConfirmedCases))

	boom := errors.New("boom")
	openSQLFn = func(context.Context, storage.Config) (storage.Repository, error) {
		return &fakeRepo{err: boom}, nil
	}
	_, err = NewRunner(pl, dataset.NewStore()).Run(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestNewSource(t *testing.T) {
	src, err := NewSource(config.Source{Kind: SourceFile, File: config.SourceFile{Path: "/data/x.tsv"}})
	require.NoError(t, err)
	assert.Equal(t, "x.tsv", src.Name())

	src, err = NewSource(config.Source{Kind: SourceHTTP, HTTP: config.SourceHTTP{URL: "https://example.org/a.csv"}})
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/a.csv", src.Name())

	_, err = NewSource(config.Source{Kind: SourceSQL})
	require.Error(t, err)
}

func TestOutlierOptions(t *testing.T) {
	opt, err := OutlierOptions(config.Outliers{GroupBy: "month", Metrics: []string{"deaths", "Active Cases"}, Multiplier: outlier.Factor(3)})
	require.NoError(t, err)
	assert.Equal(t, outlier.ByMonth, opt.GroupBy)
	assert.Equal(t, []schema.Metric{schema.Death, schema.ActiveCases}, opt.Metrics)
	require.NotNil(t, opt.Multiplier)
	assert.Equal(t, 3.0, *opt.Multiplier)

	// An explicit zero survives; an absent multiplier is left to the filter.
	opt, err = OutlierOptions(config.Outliers{Multiplier: outlier.Factor(0)})
	require.NoError(t, err)
	require.NotNil(t, opt.Multiplier)
	assert.Equal(t, 0.0, *opt.Multiplier)
	opt, err = OutlierOptions(config.Outliers{})
	require.NoError(t, err)
	assert.Nil(t, opt.Multiplier)

	_, err = OutlierOptions(config.Outliers{Metrics: []string{"Hospitalized"}})
	var ume *schema.UnknownMetricError
	require.ErrorAs(t, err, &ume)
}

func TestCriteriaFromConfig(t *testing.T) {
	c := CriteriaFromConfig(config.Chart{Region: "Goa", Month: 3, Year: 2021, Metric: "Death", Kind: "bar"})
	assert.Equal(t, analysis.Criteria{Region: "Goa", Month: 3, Year: 2021, Metric: "Death", ChartKind: "bar"}, c)
}
