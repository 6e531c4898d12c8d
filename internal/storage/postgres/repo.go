// Package postgres implements a read-only Postgres source on a pgx v5 pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"casetrend/internal/storage"
	"casetrend/pkg/records"
)

// Repository reads records through a pgxpool.Pool.
type Repository struct {
	pool *pgxpool.Pool
	cfg  storage.Config
}

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg)
	})
}

// NewRepository parses cfg.DSN and opens a pool. The pool connects lazily, so
// a bad host surfaces on the first Load.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	return &Repository{pool: pool, cfg: cfg}, nil
}

// Load implements storage.Repository.
func (r *Repository) Load(ctx context.Context) ([]records.Record, error) {
	stmt, err := storage.Statement(r.cfg, pgFQN)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	rows, err := r.pool.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("postgres: query: %w", describe(err))
	}
	return collect(rows)
}

// Name implements storage.Repository.
func (r *Repository) Name() string {
	if strings.TrimSpace(r.cfg.Query) != "" {
		return "postgres:query"
	}
	return "postgres:" + r.cfg.Table
}

// Close closes the pool.
func (r *Repository) Close() { r.pool.Close() }

func collect(rows pgx.Rows) ([]records.Record, error) {
	defer rows.Close()
	fds := rows.FieldDescriptions()
	var out []records.Record
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("postgres: values: %w", err)
		}
		rec := make(records.Record, len(fds))
		for i, fd := range fds {
			rec[i] = records.Field{Key: fd.Name, Value: storage.Stringify(vals[i])}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows: %w", describe(err))
	}
	return out, nil
}

// describe adds the SQLSTATE and detail of a server error to its message.
func describe(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%s (SQLSTATE %s) %s: %w", pgErr.Message, pgErr.Code, pgErr.Detail, err)
	}
	return err
}

// pgIdent double-quotes an identifier, escaping embedded quotes.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a possibly schema-qualified name like "public.covid_cases" to
// "public"."covid_cases".
func pgFQN(name string) string { return storage.QuoteFQN(name, pgIdent) }
