package driven

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// VectorStore persists chunk embeddings and answers similarity queries.
// Backed by an embedded SQLite file; scores are cosine similarities in [-1, 1].
type VectorStore interface {
	// AddVectors inserts or replaces chunks keyed by chunk id.
	// The batch is atomic: if any chunk fails validation, none are persisted.
	AddVectors(ctx context.Context, chunks []domain.DocumentChunk) error

	// ReplaceVectors atomically swaps the chunk set of documentID for chunks.
	// Every chunk must belong to documentID. On error the old set is kept.
	ReplaceVectors(ctx context.Context, documentID string, chunks []domain.DocumentChunk) error

	// RemoveVectors deletes every chunk owned by documentID.
	// A document without chunks is not an error.
	RemoveVectors(ctx context.Context, documentID string) error

	// Search returns up to limit chunks ordered by descending score.
	Search(ctx context.Context, query []float32, limit int) ([]domain.SimilarityResult, error)

	// SearchInDocuments is Search restricted to chunks owned by documentIDs.
	SearchInDocuments(ctx context.Context, query []float32, documentIDs []string, limit int) ([]domain.SimilarityResult, error)

	// GetChunkByID returns the chunk, or nil when absent.
	GetChunkByID(ctx context.Context, chunkID string) (*domain.DocumentChunk, error)

	// GetChunksByDocument returns the chunk set of documentID in position order.
	GetChunksByDocument(ctx context.Context, documentID string) ([]domain.DocumentChunk, error)

	// CountByDocument returns the number of chunks owned by documentID.
	CountByDocument(ctx context.Context, documentID string) (int, error)

	// Dimension returns the embedding length every chunk must have,
	// or 0 while the store is empty and unconfigured.
	Dimension() int

	// Close releases resources.
	Close() error
}
