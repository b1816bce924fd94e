package domain

// Cosine similarity bounds. Every SimilarityResult.Score lies in this range.
const (
	MinSimilarityScore = -1.0
	MaxSimilarityScore = 1.0
)

// SimilarityResult pairs a chunk with its relevance score.
// Result lists are ordered by descending Score; ties keep insertion order.
type SimilarityResult struct {
	Chunk DocumentChunk
	Score float64
}
