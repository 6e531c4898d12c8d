// Package sqlite implements a read-only SQLite source using database/sql and
// the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"casetrend/internal/storage"
	"casetrend/pkg/records"

	_ "modernc.org/sqlite"
)

// Repository reads records from one SQLite database.
type Repository struct {
	db  *sql.DB
	cfg storage.Config
}

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg)
	})
}

// NewRepository opens cfg.DSN, a file path or "file:" URI, and pings it.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Repository{db: db, cfg: cfg}, nil
}

// Load implements storage.Repository.
func (r *Repository) Load(ctx context.Context) ([]records.Record, error) {
	stmt, err := storage.Statement(r.cfg, quoteFQN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	recs, err := storage.QueryRecords(ctx, r.db, stmt)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return recs, nil
}

// Name implements storage.Repository.
func (r *Repository) Name() string { return "sqlite:" + sourceLabel(r.cfg) }

// Close releases the connection pool.
func (r *Repository) Close() { _ = r.db.Close() }

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func quoteFQN(name string) string { return storage.QuoteFQN(name, quoteIdent) }

func sourceLabel(cfg storage.Config) string {
	if cfg.Table != "" && strings.TrimSpace(cfg.Query) == "" {
		return cfg.Table
	}
	return "query"
}
