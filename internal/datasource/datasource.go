// Package datasource defines where raw case-count exports come from.
package datasource

import (
	"context"
	"io"
)

// Source yields the raw bytes of one export. Name is the file name used for
// format dispatch; for remote sources it is only final after Open.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Name() string
}
