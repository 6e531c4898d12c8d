package dataset

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Snapshot is a published table together with where it came from.
type Snapshot struct {
	ID       uuid.UUID
	Source   string
	LoadedAt time.Time
	Table    *Table
}

// Store holds the current dataset. Writers build a complete Table first and
// then Publish it; readers call Current and keep using the snapshot they got
// even if a newer one is published meanwhile.
type Store struct {
	cur atomic.Pointer[Snapshot]
	now func() time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Publish makes t the current dataset and returns the new snapshot.
func (s *Store) Publish(source string, t *Table) *Snapshot {
	snap := &Snapshot{
		ID:       uuid.New(),
		Source:   source,
		LoadedAt: s.now().UTC(),
		Table:    t,
	}
	s.cur.Store(snap)
	return snap
}

// Current returns the current snapshot, or nil when nothing was published.
func (s *Store) Current() *Snapshot {
	return s.cur.Load()
}
