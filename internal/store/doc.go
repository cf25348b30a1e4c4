// Package store provides the in-memory record repositories behind livefeed.
//
// A [Repository] holds one collection of records (accounts or posts) keyed by
// a generated id of the form "<prefix><n>". It is hydrated synchronously from
// a snapshot at construction and writes the whole collection back after every
// successful create, so the snapshot on disk always mirrors a complete state
// the repository once held.
//
// The main components are:
//
//   - [Record]: Constraint satisfied by every stored type
//   - [Snapshotter]: Durable persistence the repository writes through
//   - [Repository]: Generic append-only collection with concurrent-safe reads
//
// Repositories are append-only: there is no update or delete. Each repository
// serialises its own creates; different repositories never share a lock.
package store
