// Package domain defines the core entities of the docrag engine.
//
// This package is the innermost layer of the hexagon. It defines:
//
//   - Document: an ingested document, its flags and optionally its content
//   - DocumentMetadata: the bookkeeping record persisted by the metadata store
//   - DocumentChunk: a retrievable slice of a document with its embedding
//   - StructuredDocument: optional heading/section-aware extraction output
//   - SimilarityResult: a chunk paired with its relevance score
//   - Settings: typed engine configuration
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
