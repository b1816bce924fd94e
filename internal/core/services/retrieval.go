package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/logger"
	"github.com/custodia-labs/docrag/internal/similarity"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService ranks stored chunks against natural-language queries.
type RetrievalService struct {
	vectors   driven.VectorStore
	embedding driven.EmbeddingService
	repo      driving.DocumentRepository
	settings  domain.RetrievalSettings
	log       logger.Logger
}

// NewRetrievalService creates a retrieval service.
// repo is only needed by RetrieveFromSelected and may be nil otherwise.
func NewRetrievalService(
	vectors driven.VectorStore,
	embedding driven.EmbeddingService,
	repo driving.DocumentRepository,
	settings domain.RetrievalSettings,
	log logger.Logger,
) *RetrievalService {
	if log == nil {
		log = logger.Discard()
	}
	defaults := domain.DefaultSettings().Retrieval
	if settings.CandidateLimit <= 0 {
		settings.CandidateLimit = defaults.CandidateLimit
	}
	if settings.CandidateFactor <= 0 {
		settings.CandidateFactor = defaults.CandidateFactor
	}
	if settings.DefaultMaxResults <= 0 {
		settings.DefaultMaxResults = defaults.DefaultMaxResults
	}
	return &RetrievalService{
		vectors:   vectors,
		embedding: embedding,
		repo:      repo,
		settings:  settings,
		log:       log.With("component", "retrieval"),
	}
}

// RetrieveRelevantChunks embeds query, searches, drops results under the
// minimum score and returns at most maxResults, best first.
func (s *RetrievalService) RetrieveRelevantChunks(
	ctx context.Context, query string, documentIDs []string, maxResults int,
) ([]domain.SimilarityResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SimilarityResult{}, nil
	}
	if maxResults <= 0 {
		maxResults = s.settings.DefaultMaxResults
	}

	vec, err := s.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	limit := s.candidateLimit(maxResults)
	var candidates []domain.SimilarityResult
	if len(documentIDs) == 0 {
		candidates, err = s.vectors.Search(ctx, vec, limit)
	} else {
		candidates, err = s.vectors.SearchInDocuments(ctx, vec, documentIDs, limit)
	}
	if err != nil {
		s.log.Error("vector search failed", "error", err, "scoped", len(documentIDs) > 0)
		return nil, fmt.Errorf("searching vectors: %w", err)
	}

	results := make([]domain.SimilarityResult, 0, maxResults)
	for _, c := range candidates {
		if c.Score < s.settings.MinScore {
			// Candidates are sorted, so the rest score lower.
			break
		}
		results = append(results, c)
		if len(results) == maxResults {
			break
		}
	}

	s.log.Debug("retrieved chunks",
		"candidates", len(candidates), "results", len(results),
		"limit", limit, "min_score", s.settings.MinScore)
	return results, nil
}

// RetrieveFromSelected searches only the selected documents.
// With nothing selected the result is empty.
func (s *RetrievalService) RetrieveFromSelected(ctx context.Context, query string, maxResults int) ([]domain.SimilarityResult, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("%w: no document repository", domain.ErrInvalidConfig)
	}
	ids, err := s.repo.SelectedDocumentIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.SimilarityResult{}, nil
	}
	return s.RetrieveRelevantChunks(ctx, query, ids, maxResults)
}

// CalculateRelevanceScore returns the cosine similarity of query and chunk.
// A chunk without an embedding has its text embedded first. Nothing is stored.
func (s *RetrievalService) CalculateRelevanceScore(ctx context.Context, query string, chunk domain.DocumentChunk) (float64, error) {
	qv, err := s.embed(ctx, query)
	if err != nil {
		return 0, err
	}
	cv := chunk.Embedding
	if len(cv) == 0 {
		if cv, err = s.embed(ctx, chunk.Content); err != nil {
			return 0, err
		}
	}
	if len(qv) != len(cv) {
		return 0, fmt.Errorf("%w: query has %d dimensions, chunk %d",
			domain.ErrDimensionMismatch, len(qv), len(cv))
	}
	return similarity.Cosine(qv, cv), nil
}

func (s *RetrievalService) candidateLimit(maxResults int) int {
	return max(s.settings.CandidateLimit, maxResults*s.settings.CandidateFactor)
}

func (s *RetrievalService) embed(ctx context.Context, text string) ([]float32, error) {
	if s.embedding == nil {
		return nil, fmt.Errorf("%w: not configured", domain.ErrEmbeddingUnavailable)
	}
	vec, err := s.embedding.Embed(ctx, text)
	if err != nil {
		s.log.Error("embedding failed", "error", err)
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return vec, nil
}
