// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ContentStore: raw document text, one blob per document
//   - MetadataStore: document bookkeeping records
//   - VectorStore: chunk text + embeddings with similarity search
//   - ChunkingStrategy: one variant of the chunking engine
//   - DocumentProcessor: text and structure extraction per file type
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
//   - EmbeddingService: without it, ingestion and retrieval are unavailable
//     but reads and deletes still work.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or processor package
package driven
