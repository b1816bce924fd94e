// Package sqlite provides the SQLite-backed vector store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Chunk text and embeddings live in a
// single table keyed by chunk id; similarity is computed in-process with cosine
// similarity over the rows of interest, trading index structures for simplicity
// at small-to-moderate dataset sizes.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.docrag/vectors.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. Writes are serialised by the
// store; reads run concurrently under SQLite's WAL mode.
package sqlite
