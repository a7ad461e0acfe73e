// Package store provides the persistence medium for techtrack and the
// adapter that reads and writes the record collection through it.
//
// A Medium is a plain key-value store with get/set/remove semantics, the
// same contract browser local storage offers. Backends:
//   - SQLite (default): single-file database, WAL mode
//   - PostgreSQL: shared database for a self-hosted setup
//   - Redis: networked key-value server
//   - Memory: map-backed, for tests and dry runs
//
// # Collection Layout
//
// The Adapter owns one collection key. Its value is always a JSON array of
// records, replaced by a single Set on every save; no partial updates.
// Alongside it live:
//   - <key>_schema_version: decimal schema version stamped by migrations
//   - <key>_backup_<epochMillis>: pre-migration copies of the collection
//
// Writes are attempted once. A failed write surfaces as a
// tech.PersistenceError; nothing retries it.
package store
