package driving

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// RetrievalService ranks stored chunks against a query.
type RetrievalService interface {
	// RetrieveRelevantChunks embeds query and returns at most maxResults chunks
	// scoring at or above the configured minimum, best first.
	// An empty documentIDs searches every document.
	// maxResults <= 0 uses the configured default.
	RetrieveRelevantChunks(ctx context.Context, query string, documentIDs []string, maxResults int) ([]domain.SimilarityResult, error)

	// RetrieveFromSelected is RetrieveRelevantChunks scoped to selected documents.
	RetrieveFromSelected(ctx context.Context, query string, maxResults int) ([]domain.SimilarityResult, error)

	// CalculateRelevanceScore returns the cosine similarity between query and chunk.
	CalculateRelevanceScore(ctx context.Context, query string, chunk domain.DocumentChunk) (float64, error)
}
