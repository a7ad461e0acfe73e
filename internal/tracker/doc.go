// Package tracker holds the record repository: the single in-memory owner
// of the technology collection.
//
// Every mutation is computed on a copy of the collection, persisted through
// the store adapter, and only then swapped in. A failed write therefore
// leaves the in-memory collection exactly as it was before the call, and
// the caller gets a tech.PersistenceError.
//
// One Repository is created per process and passed explicitly to the CLI,
// the HTTP API and the import/export codec.
package tracker
