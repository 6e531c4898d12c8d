// Package storage reads case-count tables out of SQL databases. Backends
// register a Factory under their kind ("postgres", "mysql", "mssql",
// "sqlite") from init; callers stay backend-agnostic through New.
//
// Sources are read-only: a configured query, or SELECT * from a table, is
// turned into raw records exactly like a CSV export would be.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"casetrend/pkg/records"
)

// Config selects a backend and what to read from it. Query wins over Table.
type Config struct {
	Kind  string
	DSN   string
	Table string
	Query string
}

// Repository is an open, read-only SQL source.
type Repository interface {
	// Load runs the configured statement and returns one record per row,
	// keyed by result column name in result order.
	Load(ctx context.Context) ([]records.Record, error)
	// Name describes the source in logs, e.g. "sqlite:cases".
	Name() string
	Close()
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
