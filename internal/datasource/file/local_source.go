// Package file implements a local filesystem-backed data source.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
)

// Local is a filesystem data source that opens files from the local disk.
type Local struct {
	path     string
	progress bool
}

// Option configures a Local source.
type Option func(*Local)

// WithProgress renders a byte progress bar on stderr while the file is read.
func WithProgress(on bool) Option { return func(l *Local) { l.progress = on } }

// NewLocal returns a new Local data source bound to the provided filesystem
// path. The returned value is safe for concurrent use by multiple goroutines
// as long as the underlying path location is valid for concurrent reads.
func NewLocal(path string, opts ...Option) *Local {
	l := &Local{path: path}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Name returns the base name of the configured path.
func (l *Local) Name() string { return filepath.Base(l.path) }

// Open opens the configured path for reading and returns an io.ReadCloser.
//
// Behavior:
//   - If the context is already canceled or its deadline exceeded at the time
//     of the call, Open returns the context error immediately without touching
//     the filesystem.
//   - Otherwise, Open attempts to open the underlying file, hints the kernel
//     that it will be read sequentially, and returns it.
//   - Any filesystem error is wrapped with the path for context, while still
//     permitting errors.Is/As checks by callers (e.g., errors.Is(err, os.ErrNotExist)).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	adviseSequential(f)
	if !l.progress {
		return f, nil
	}
	size := int64(-1)
	if st, err := f.Stat(); err == nil {
		size = st.Size()
	}
	pr := progressbar.NewReader(f, progressbar.DefaultBytes(size, "reading "+l.Name()))
	return &pr, nil
}
