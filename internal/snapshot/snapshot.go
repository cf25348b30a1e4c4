package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
)

// counterKey is the top-level key holding the id counter in every snapshot file.
const counterKey = "idCounter"

// ErrCorruptSnapshot is returned by [FileStore.Load] when a snapshot file exists
// but cannot be parsed.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// Snapshot is the full serialised state of one collection at a point in time.
type Snapshot struct {
	// Name is the collection name. It doubles as the top-level JSON key under
	// which the entities are stored.
	Name string

	// Entities maps record id to the record's JSON encoding.
	Entities map[string]json.RawMessage

	// NextID is the next counter value to hand out.
	NextID int
}

// MarshalJSON encodes the snapshot using its collection name as the entity key.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	if s.Name == "" {
		return nil, errors.New("snapshot name is required")
	}
	if s.Name == counterKey {
		return nil, fmt.Errorf("snapshot name %q is reserved", counterKey)
	}

	entities := s.Entities
	if entities == nil {
		entities = map[string]json.RawMessage{}
	}

	return json.Marshal(map[string]any{
		s.Name:     entities,
		counterKey: s.NextID,
	})
}

// decode parses data as the snapshot of the named collection.
//
// A document without the collection key is treated as an empty collection,
// matching files written before the first record existed.
func decode(name string, data []byte) (*Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, name, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: %s: document is null", ErrCorruptSnapshot, name)
	}

	snap := &Snapshot{
		Name:     name,
		Entities: map[string]json.RawMessage{},
	}

	if body, ok := raw[name]; ok && string(body) != "null" {
		if err := json.Unmarshal(body, &snap.Entities); err != nil {
			return nil, fmt.Errorf("%w: %s: entities: %v", ErrCorruptSnapshot, name, err)
		}
	}

	if body, ok := raw[counterKey]; ok && string(body) != "null" {
		if err := json.Unmarshal(body, &snap.NextID); err != nil {
			return nil, fmt.Errorf("%w: %s: %s: %v", ErrCorruptSnapshot, name, counterKey, err)
		}
	}

	return snap, nil
}
