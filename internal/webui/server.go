// Package webui serves the cleaned dataset and chart instructions over HTTP,
// plus a small HTML page to pick a selection and see the result.
//
// Routes:
//
//	GET  /            → selection form
//	GET  /healthz     → liveness and current snapshot
//	GET  /api/options → selectable regions, years, months, metrics, kinds
//	GET  /api/chart   → chart instruction for region, month, year, metric, kind
//	GET  /api/table   → cleaned rows, optionally filtered by region, year, month
//	POST /api/upload  → multipart "file" replaces the current dataset
package webui

import (
	_ "embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"casetrend/internal/analysis"
	"casetrend/internal/dataset"
	"casetrend/internal/metrics"
	"casetrend/internal/pipeline"
)

// DefaultMaxUploadBytes caps upload bodies when Config.MaxUploadBytes is 0.
const DefaultMaxUploadBytes = 32 << 20

// Config controls server behavior.
type Config struct {
	Addr string

	// RateLimit is the sustained request rate across all clients; zero
	// disables limiting. Burst defaults to 1 when limiting is on.
	RateLimit float64
	Burst     int

	MaxUploadBytes int64

	// Defaults is the selection used by /api/chart when the request carries
	// no query parameters.
	Defaults analysis.Criteria
}

// Server routes requests against a dataset.Store.
type Server struct {
	cfg    Config
	store  *dataset.Store
	runner *pipeline.Runner
	tmpl   *template.Template
	router chi.Router
}

// NewServer constructs a Server. runner handles uploads; when nil, uploads
// are rejected.
func NewServer(cfg Config, store *dataset.Store, runner *pipeline.Runner) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.RateLimit > 0 && cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	s := &Server{
		cfg:    cfg,
		store:  store,
		runner: runner,
		tmpl:   template.Must(template.New("index").Parse(indexHTML)),
	}
	s.routes()
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// HTTPServer returns an http.Server for cfg.Addr with conservative timeouts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      time.Minute,
	}
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observe)
	if s.cfg.RateLimit > 0 {
		r.Use(limit(rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.Burst)))
	}

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/options", s.handleOptions)
		r.Get("/chart", s.handleChart)
		r.Get("/table", s.handleTable)
		r.Post("/upload", s.handleUpload)
	})
	s.router = r
}

// observe logs each request and records it by route pattern and status.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		metrics.RecordRequest(route, status)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, status, time.Since(start).Truncate(time.Microsecond))
	})
}

// limit rejects requests beyond the limiter's rate with 429.
func limit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, r, http.StatusTooManyRequests, errors.New("rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// snapshot returns the current dataset or writes 503 and returns nil.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) *dataset.Snapshot {
	snap := s.store.Current()
	if snap == nil {
		writeError(w, r, http.StatusServiceUnavailable, errNoDataset)
	}
	return snap
}

// indexHTML is the embedded selection page.
//
//go:embed index.tmpl.html
var indexHTML string
