// Command casetrend-web serves the cleaned dataset and chart instructions
// over HTTP. The configured source is loaded once at startup (and optionally
// re-loaded on an interval); uploads replace it at runtime.
//
// Usage:
//
//	casetrend-web -config configs/pipelines/india.json -addr :8080 -reload 1h
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"casetrend/internal/config"
	"casetrend/internal/dataset"
	"casetrend/internal/metrics/setup"
	"casetrend/internal/pipeline"
	"casetrend/internal/webui"

	_ "casetrend/internal/storage/all"
)

// server is the part of *http.Server that run drives.
type server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// newServer is a test seam; it builds the HTTP server for a configured UI.
var newServer = func(s *webui.Server) server { return s.HTTPServer() }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], log.Default()); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, logger *log.Logger) error {
	fs := flag.NewFlagSet("casetrend-web", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "pipeline config path; empty starts with no dataset")
	addr := fs.String("addr", "", "listen address (overrides server.addr, default :8080)")
	reload := fs.Duration("reload", 0, "re-load the configured source on this interval; 0 disables")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var p config.Pipeline
	if *cfgPath != "" {
		var err error
		if p, err = config.Load(*cfgPath); err != nil {
			return err
		}
		issues := config.ValidatePipeline(p)
		for _, iss := range issues {
			logger.Printf("%s: %s: %s", iss.Severity, iss.Path, iss.Message)
		}
		if config.HasErrors(issues) {
			return errors.New("configuration is invalid: " + *cfgPath)
		}
	}
	if *addr != "" {
		p.Server.Addr = *addr
	}
	if p.Server.Addr == "" {
		p.Server.Addr = ":8080"
	}

	flush, err := setup.Install(p.Metrics, p.Job)
	if err != nil {
		logger.Printf("%v; using nop", err)
	}
	defer flush()

	store := dataset.NewStore()
	runner := pipeline.NewRunner(p, store)
	hasSource := p.Source.Kind != ""
	if hasSource {
		if _, err := runner.Run(ctx); err != nil {
			return err
		}
	}

	ui := webui.NewServer(webui.Config{
		Addr:           p.Server.Addr,
		RateLimit:      p.Server.RateLimit,
		Burst:          p.Server.Burst,
		MaxUploadBytes: p.Server.MaxUploadBytes,
		Defaults:       pipeline.CriteriaFromConfig(p.Chart),
	}, store, runner)
	srv := newServer(ui)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Printf("listening on %s", p.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})
	if hasSource && *reload > 0 {
		g.Go(func() error {
			tick := time.NewTicker(*reload)
			defer tick.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-tick.C:
					// A failed reload keeps the previous snapshot.
					if _, err := runner.Run(gctx); err != nil {
						logger.Printf("reload: %v", err)
					}
				}
			}
		})
	}
	return g.Wait()
}
