package webui

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"

	"casetrend/internal/analysis"
	"casetrend/internal/clean"
	"casetrend/internal/dataset"
	"casetrend/internal/parser"
	"casetrend/internal/pipeline"
	"casetrend/internal/schema"
)

var errNoDataset = errors.New("no dataset loaded")

type errorResponse struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Status: status, Error: err.Error()})
}

// statusFor maps pipeline errors onto HTTP statuses: bad selections are 400,
// empty selections 404 and well-formed input that cannot be charted or
// cleaned 422.
func statusFor(err error) int {
	var (
		ic  *analysis.InvalidCriteriaError
		um  *schema.UnknownMetricError
		uk  *analysis.UnknownChartKindError
		nd  *analysis.NoDataError
		ed  *analysis.EmptyDistributionError
		se  *clean.SchemaError
		mbe *http.MaxBytesError
	)
	switch {
	case errors.As(err, &ic), errors.As(err, &um), errors.As(err, &uk),
		errors.Is(err, parser.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.As(err, &nd):
		return http.StatusNotFound
	case errors.As(err, &ed), errors.As(err, &se):
		return http.StatusUnprocessableEntity
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

type snapshotInfo struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
	Rows     int       `json:"rows"`
}

func infoOf(snap *dataset.Snapshot) *snapshotInfo {
	if snap == nil {
		return nil
	}
	return &snapshotInfo{
		ID:       snap.ID.String(),
		Source:   snap.Source,
		LoadedAt: snap.LoadedAt,
		Rows:     snap.Table.Len(),
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Snapshot *snapshotInfo
		Choices  analysis.Choices
		Defaults analysis.Criteria
	}{Defaults: s.cfg.Defaults}
	if snap := s.store.Current(); snap != nil {
		data.Snapshot = infoOf(snap)
		data.Choices = analysis.Options(snap.Table)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		log.Println("template error:", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, struct {
		Status   string        `json:"status"`
		Snapshot *snapshotInfo `json:"snapshot"`
	}{Status: "ok", Snapshot: infoOf(s.store.Current())})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w, r)
	if snap == nil {
		return
	}
	render.JSON(w, r, struct {
		Snapshot *snapshotInfo `json:"snapshot"`
		analysis.Choices
		Defaults analysis.Criteria `json:"defaults"`
	}{infoOf(snap), analysis.Options(snap.Table), s.cfg.Defaults})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w, r)
	if snap == nil {
		return
	}
	c := s.cfg.Defaults
	if len(r.URL.Query()) > 0 {
		var err error
		if c, err = criteriaFromQuery(r); err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
	}
	in, err := pipeline.BuildChart(snap.Table, c)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	render.JSON(w, r, in)
}

type tableResponse struct {
	Snapshot *snapshotInfo `json:"snapshot"`
	Columns  []string      `json:"columns"`
	Total    int           `json:"total"`
	Rows     [][]string    `json:"rows"`
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot(w, r)
	if snap == nil {
		return
	}
	c, err := criteriaFromQuery(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	lim, err := intParam(r, "limit")
	if err != nil || lim < 0 {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("limit must be a non-negative integer"))
		return
	}

	t := snap.Table.Filter(c.Matches)
	resp := tableResponse{
		Snapshot: infoOf(snap),
		Columns:  []string{schema.ColDate, schema.ColRegion},
		Total:    t.Len(),
		Rows:     make([][]string, 0, t.Len()),
	}
	for _, m := range schema.Metrics {
		resp.Columns = append(resp.Columns, m.String())
	}
	for i, rec := range t.Records() {
		if lim > 0 && i >= lim {
			break
		}
		row := make([]string, len(rec))
		for j, f := range rec {
			row[j] = f.Value
		}
		resp.Rows = append(resp.Rows, row)
	}
	render.JSON(w, r, resp)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		writeError(w, r, http.StatusForbidden, errors.New("uploads are disabled"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	f, hdr, err := r.FormFile("file")
	if err != nil {
		status := http.StatusBadRequest
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, r, status, fmt.Errorf("file: %w", err))
		return
	}
	defer f.Close()

	sum, err := s.runner.Ingest(hdr.Filename, f)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, struct {
		Snapshot *snapshotInfo `json:"snapshot"`
		Loaded   int           `json:"loaded"`
		Skipped  int           `json:"skipped"`
		Dropped  int           `json:"dropped"`
		Outliers int           `json:"outliers"`
	}{infoOf(sum.Snapshot), sum.Loaded, sum.Skipped, sum.Clean.Dropped(), sum.Outliers})
}

// criteriaFromQuery reads region, month, year, metric and kind. Range checks
// are left to the resolver so they surface as InvalidCriteriaError.
func criteriaFromQuery(r *http.Request) (analysis.Criteria, error) {
	q := r.URL.Query()
	month, err := intParam(r, "month")
	if err != nil {
		return analysis.Criteria{}, fmt.Errorf("month must be an integer")
	}
	year, err := intParam(r, "year")
	if err != nil {
		return analysis.Criteria{}, fmt.Errorf("year must be an integer")
	}
	return analysis.Criteria{
		Region:    q.Get("region"),
		Month:     month,
		Year:      year,
		Metric:    q.Get("metric"),
		ChartKind: q.Get("kind"),
	}, nil
}

func intParam(r *http.Request, name string) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
