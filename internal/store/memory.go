package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/jpalmerr/livefeed/internal/snapshot"
)

// Repository is an in-memory, snapshot-backed collection of records.
//
// Repository is safe for concurrent use. Create holds an exclusive lock across
// id reservation, insertion, and the snapshot write, so concurrent creates
// never share an id and the final snapshot reflects all of them. Reads take a
// shared lock and return copies.
//
// Each record's JSON encoding is cached alongside the value, so records
// hydrated from a snapshot are written back exactly as they were read.
type Repository[T Record] struct {
	name   string
	prefix string
	snaps  Snapshotter
	logger *slog.Logger

	mu       sync.RWMutex
	entities map[string]T
	raw      map[string]json.RawMessage
	order    []string // ids in ascending creation order
	nextID   int
}

// New creates a [Repository] for the named collection and hydrates it.
//
// Ids are generated as prefix followed by a counter starting at 1, e.g.
// "post_1". If snaps is nil the repository is memory-only.
//
// A snapshot that cannot be read or decoded is logged at warn level and the
// repository starts empty; startup never fails on bad persisted state.
func New[T Record](name, prefix string, snaps Snapshotter, logger *slog.Logger) *Repository[T] {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Repository[T]{
		name:     name,
		prefix:   prefix,
		snaps:    snaps,
		logger:   logger.With("collection", name),
		entities: make(map[string]T),
		raw:      make(map[string]json.RawMessage),
		nextID:   1,
	}
	r.hydrate()
	return r
}

// Name returns the collection name.
func (r *Repository[T]) Name() string {
	return r.name
}

// Create reserves the next id, builds the record with factory, inserts it and
// persists the collection.
//
// factory receives the assigned id and must return a record whose RecordID
// equals it. factory runs inside the repository's critical section and must
// not call back into the same repository.
//
// The returned record is always valid. A non-nil error wraps
// [ErrPersistenceWrite]: the record is in memory but the snapshot may not
// contain it. Callers treat this as a warning, not a failed create.
func (r *Repository[T]) Create(factory func(id string) T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.prefix + strconv.Itoa(r.nextID)
	r.nextID++

	rec := factory(id)
	r.entities[id] = rec
	r.order = append(r.order, id)

	if err := r.persistLocked(); err != nil {
		return rec, fmt.Errorf("%w: %s: %v", ErrPersistenceWrite, r.name, err)
	}
	return rec, nil
}

// Get returns the record with the given id.
func (r *Repository[T]) Get(id string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.entities[id]
	return rec, ok
}

// List returns all records, most recently created first.
//
// The returned slice is a copy; modifications do not affect the repository.
func (r *Repository[T]) List() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]T, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		out = append(out, r.entities[r.order[i]])
	}
	return out
}

// Find returns the oldest record for which match reports true.
func (r *Repository[T]) Find(match func(T) bool) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if rec := r.entities[id]; match(rec) {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// Len returns the number of records.
func (r *Repository[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// persistLocked writes the whole collection. Caller must hold r.mu.
//
// Records without a cached encoding are encoded here, so a record that failed
// to encode once is retried on every later write. Records that still fail are
// left out of this snapshot and reported in the returned error.
func (r *Repository[T]) persistLocked() error {
	if r.snaps == nil {
		return nil
	}

	var encErr error
	entities := make(map[string]json.RawMessage, len(r.order))
	for _, id := range r.order {
		data, ok := r.raw[id]
		if !ok {
			enc, err := json.Marshal(r.entities[id])
			if err != nil {
				encErr = errors.Join(encErr, fmt.Errorf("encode %s: %w", id, err))
				continue
			}
			r.raw[id] = enc
			data = enc
		}
		entities[id] = data
	}

	err := r.snaps.Save(r.name, snapshot.Snapshot{
		Name:     r.name,
		Entities: entities,
		NextID:   r.nextID,
	})
	return errors.Join(encErr, err)
}

func (r *Repository[T]) hydrate() {
	if r.snaps == nil {
		return
	}

	snap, err := r.snaps.Load(r.name)
	if err != nil {
		r.logger.Warn("snapshot unreadable, starting empty", "error", err)
		return
	}
	if snap == nil {
		return
	}

	entities := make(map[string]T, len(snap.Entities))
	for id, data := range snap.Entities {
		var rec T
		if err := json.Unmarshal(data, &rec); err != nil {
			r.logger.Warn("snapshot record undecodable, starting empty",
				"id", id,
				"error", err,
			)
			return
		}
		entities[id] = rec
	}

	order := make([]string, 0, len(entities))
	maxSeq := 0
	for id := range entities {
		order = append(order, id)
		if seq, ok := r.sequence(id); ok && seq > maxSeq {
			maxSeq = seq
		}
	}
	sort.Slice(order, func(i, j int) bool {
		return r.less(order[i], order[j])
	})

	r.entities = entities
	r.order = order
	for id, data := range snap.Entities {
		r.raw[id] = data
	}

	// ids are never reused, even if the stored counter lags behind the data
	r.nextID = snap.NextID
	if r.nextID <= maxSeq {
		r.nextID = maxSeq + 1
	}
	if r.nextID < 1 {
		r.nextID = 1
	}

	r.logger.Info("loaded records from persistence",
		"count", len(entities),
		"next_id", r.nextID,
	)
}

// sequence extracts the numeric counter from an id carrying the repository prefix.
func (r *Repository[T]) sequence(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, r.prefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// less orders ids by creation. Foreign ids sort before generated ones.
func (r *Repository[T]) less(a, b string) bool {
	sa, okA := r.sequence(a)
	sb, okB := r.sequence(b)
	switch {
	case okA && okB:
		return sa < sb
	case okA != okB:
		return okB
	default:
		return a < b
	}
}
