package store

import (
	"errors"

	"github.com/jpalmerr/livefeed/internal/snapshot"
)

// ErrPersistenceWrite marks a create whose snapshot write failed.
//
// The record it accompanies was still inserted and is visible to readers;
// only its durability is in doubt.
var ErrPersistenceWrite = errors.New("persistence write failed")

// Record is implemented by every type stored in a [Repository].
type Record interface {
	// RecordID returns the id the repository assigned to the record.
	RecordID() string
}

// Snapshotter loads and saves whole-collection snapshots.
//
// [snapshot.FileStore] is the production implementation.
type Snapshotter interface {
	// Load returns the stored snapshot for name, or nil if none exists.
	Load(name string) (*snapshot.Snapshot, error)

	// Save replaces the stored snapshot for name.
	Save(name string, snap snapshot.Snapshot) error
}
