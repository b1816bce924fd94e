package driven

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// ChunkingStrategy is one variant of the chunking engine.
// Strategies are tried in a fixed priority order; the first applicable one wins.
type ChunkingStrategy interface {
	// Name returns the strategy name used in configuration.
	Name() string

	// CanChunk reports whether the strategy applies to the input.
	// structured may be nil.
	CanChunk(doc *domain.Document, structured *domain.StructuredDocument) bool

	// Chunk splits the document into ordered chunks. Implementations fill
	// Content, Source, SectionPath and Metadata; identity is assigned by the engine.
	Chunk(ctx context.Context, doc *domain.Document, structured *domain.StructuredDocument) ([]domain.DocumentChunk, error)
}

// Chunker is the chunking engine contract consumed by ingestion.
type Chunker interface {
	Chunk(ctx context.Context, doc *domain.Document, structured *domain.StructuredDocument) ([]domain.DocumentChunk, error)
}
