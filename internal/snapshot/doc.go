// Package snapshot provides durable JSON persistence for record collections.
//
// Each collection is stored as one JSON document under a data directory:
//
//	<dir>/<name>.json
//
// with the shape
//
//	{ "<name>": { "<id>": record, ... }, "idCounter": N }
//
// Records are kept as raw JSON so that loading a snapshot and saving it back
// unchanged preserves their content. Saves are atomic from the reader's point
// of view: data is written to a temporary file in the same directory, synced,
// and renamed over the target.
//
// The main components are:
//
//   - [Snapshot]: Serialisable state of one collection
//   - [FileStore]: Directory-backed store implementing Load and Save
package snapshot
