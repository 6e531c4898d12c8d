// Package mysql implements a read-only MySQL/MariaDB source on
// go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"casetrend/internal/storage"
	"casetrend/pkg/records"
)

// Repository reads records from one MySQL database.
type Repository struct {
	db  *sql.DB
	cfg storage.Config
}

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg)
	})
}

// NewRepository accepts a driver DSN ("user:pass@tcp(host)/db") or a
// mysql:// / mariadb:// URL, opens the pool and pings the server.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	dsn, err := toDriverDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}
	return &Repository{db: db, cfg: cfg}, nil
}

// Load implements storage.Repository.
func (r *Repository) Load(ctx context.Context) ([]records.Record, error) {
	stmt, err := storage.Statement(r.cfg, quoteFQN)
	if err != nil {
		return nil, fmt.Errorf("mysql: %w", err)
	}
	recs, err := storage.QueryRecords(ctx, r.db, stmt)
	if err != nil {
		return nil, fmt.Errorf("mysql: %w", describe(err))
	}
	return recs, nil
}

// Name implements storage.Repository.
func (r *Repository) Name() string {
	if strings.TrimSpace(r.cfg.Query) != "" {
		return "mysql:query"
	}
	return "mysql:" + r.cfg.Table
}

// Close closes the pool.
func (r *Repository) Close() { _ = r.db.Close() }

// toDriverDSN converts URL-style DSNs to the driver format and validates the
// result. parseTime is forced on so DATE columns scan as time.Time.
func toDriverDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mysql://") || strings.HasPrefix(dsn, "mariadb://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("mysql dsn: %w", err)
		}
		c := mysql.NewConfig()
		if u.User != nil {
			c.User = u.User.Username()
			c.Passwd, _ = u.User.Password()
		}
		c.Net = "tcp"
		c.Addr = u.Host
		c.DBName = strings.TrimPrefix(u.Path, "/")
		if c.User == "" || c.Addr == "" || c.DBName == "" {
			return "", fmt.Errorf("mysql dsn: user, host and database are required")
		}
		c.ParseTime = true
		return c.FormatDSN(), nil
	}
	c, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("mysql dsn: %w", err)
	}
	c.ParseTime = true
	return c.FormatDSN(), nil
}

func describe(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return fmt.Errorf("error %d: %w", me.Number, err)
	}
	return err
}

func quoteIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

func quoteFQN(fqn string) string { return storage.QuoteFQN(fqn, quoteIdent) }
