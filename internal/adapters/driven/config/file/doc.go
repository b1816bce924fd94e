// Package file provides the file-backed configuration store.
//
// Settings live in config.toml under the docrag data directory. Nested TOML
// tables are flattened into dot-notation keys on load ("chunking.chunk_size")
// and written back as tables on save.
package file
