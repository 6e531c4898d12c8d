// Package mssql implements a read-only Microsoft SQL Server source on the
// go-mssqldb driver.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"casetrend/internal/storage"
	"casetrend/pkg/records"
)

// Repository reads records from one SQL Server database.
type Repository struct {
	db  *sql.DB
	cfg storage.Config
}

func init() {
	storage.Register("mssql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg)
	})
}

// NewRepository validates cfg.DSN, opens the pool and pings the server.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	if _, err := msdsn.Parse(cfg.DSN); err != nil {
		return nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sql.Open("sqlserver", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Repository{db: db, cfg: cfg}, nil
}

// Load implements storage.Repository.
func (r *Repository) Load(ctx context.Context) ([]records.Record, error) {
	stmt, err := storage.Statement(r.cfg, quoteFQN)
	if err != nil {
		return nil, fmt.Errorf("mssql: %w", err)
	}
	recs, err := storage.QueryRecords(ctx, r.db, stmt)
	if err != nil {
		return nil, fmt.Errorf("mssql: %w", describe(err))
	}
	return recs, nil
}

// Name implements storage.Repository.
func (r *Repository) Name() string {
	if strings.TrimSpace(r.cfg.Query) != "" {
		return "mssql:query"
	}
	return "mssql:" + r.cfg.Table
}

// Close closes the pool.
func (r *Repository) Close() { _ = r.db.Close() }

// describe prefixes server errors with their error number.
func describe(err error) error {
	var me mssql.Error
	if errors.As(err, &me) {
		return fmt.Errorf("error %d: %w", me.Number, err)
	}
	return err
}

func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

// quoteFQN quotes a possibly schema-qualified table name, e.g.:
//
//	"dbo.Cases" -> [dbo].[Cases]
//	"Cases"     -> [Cases]
func quoteFQN(fqn string) string { return storage.QuoteFQN(fqn, quoteIdent) }
