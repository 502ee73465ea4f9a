// Package sqlite provides the persisted vector index.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. A built index is a single
// database file holding the embedding records and the parameters they were
// built with:
//
//   - index_meta: key/value build parameters (model, dimensions, chunk geometry)
//   - records: chunks in insertion order with their embeddings as float32 blobs
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// The database is stored at <storage_path>/index.db.
//
// # Completeness
//
// A build writes every record and then a built_at marker inside one
// transaction. An index without the marker is treated as absent, so an
// interrupted ingestion is redone on the next run.
package sqlite
