package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/dustin/go-humanize"

	"casetrend/internal/config"
	"casetrend/internal/datasource"
	"casetrend/internal/datasource/file"
	"casetrend/internal/datasource/httpds"
	"casetrend/internal/parser"
	"casetrend/internal/storage"
	"casetrend/pkg/records"
)

// Source kinds accepted in config.Source.Kind.
const (
	SourceFile = "file"
	SourceHTTP = "http"
	SourceSQL  = "sql"
)

// Loaded is the raw output of a load.
type Loaded struct {
	Name    string
	Records []records.Record
	// Skipped counts input rows the parser could not read.
	Skipped int
	Bytes   int64
}

// openSQLFn is a test seam for the storage factory.
var openSQLFn = storage.New

// NewSource builds the byte source described by src. SQL sources are not
// byte sources; use LoadSQL for them.
func NewSource(src config.Source) (datasource.Source, error) {
	switch src.Kind {
	case SourceFile:
		return file.NewLocal(src.File.Path, file.WithProgress(src.File.Progress)), nil
	case SourceHTTP:
		c := httpds.NewClient(httpds.Config{
			Timeout:    time.Duration(src.HTTP.TimeoutSeconds) * time.Second,
			MaxRetries: src.HTTP.Retries,
		})
		return httpds.NewSource(c, src.HTTP.URL), nil
	}
	return nil, fmt.Errorf("source kind %q is not a byte source", src.Kind)
}

// LoadSource opens src and parses it. The parser is chosen by p.Kind, or by
// the source name's extension when p.Kind is "auto" or empty.
func LoadSource(ctx context.Context, src datasource.Source, p config.Parser) (Loaded, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return Loaded{}, err
	}
	defer rc.Close()
	return Parse(src.Name(), rc, p)
}

// Parse reads r, named name, with the parser p selects.
func Parse(name string, r io.Reader, p config.Parser) (Loaded, error) {
	ps, err := parser.New(p.Kind, name, p.Options)
	if err != nil {
		return Loaded{}, fmt.Errorf("%s: %w", name, err)
	}
	cr := &countingReader{r: r}
	recs, skipped, err := ps.Parse(cr)
	if err != nil {
		return Loaded{}, fmt.Errorf("parse %s: %w", name, err)
	}
	log.Printf("loaded %s: %s rows from %s (%d unreadable)",
		name, humanize.Comma(int64(len(recs))), humanize.Bytes(uint64(cr.n)), skipped)
	return Loaded{Name: name, Records: recs, Skipped: skipped, Bytes: cr.n}, nil
}

// LoadSQL reads records from the database described by sq.
func LoadSQL(ctx context.Context, sq config.SourceSQL) (Loaded, error) {
	repo, err := openSQLFn(ctx, storage.Config{Kind: sq.Driver, DSN: sq.DSN, Table: sq.Table, Query: sq.Query})
	if err != nil {
		return Loaded{}, err
	}
	defer repo.Close()

	recs, err := repo.Load(ctx)
	if err != nil {
		return Loaded{}, err
	}
	log.Printf("loaded %s: %s rows", repo.Name(), humanize.Comma(int64(len(recs))))
	return Loaded{Name: repo.Name(), Records: recs}, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
