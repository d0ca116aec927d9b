// Package sqlite provides a SQLite-based reference store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Reference chunks are stored with their
// embeddings as little-endian float32 blobs; similarity search is a cosine scan
// over the stored vectors, which suits corpora of a few thousand chunks.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.medreport/data/references.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
