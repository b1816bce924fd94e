package mcp

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results    []domain.SimilarityResult
	err        error
	lastQuery  string
	lastDocIDs []string
	lastMax    int
	fromSelect bool
}

func (m *mockRetrievalService) RetrieveRelevantChunks(
	_ context.Context,
	query string,
	documentIDs []string,
	maxResults int,
) ([]domain.SimilarityResult, error) {
	m.lastQuery, m.lastDocIDs, m.lastMax = query, documentIDs, maxResults
	return m.results, m.err
}

func (m *mockRetrievalService) RetrieveFromSelected(
	_ context.Context,
	query string,
	maxResults int,
) ([]domain.SimilarityResult, error) {
	m.fromSelect = true
	m.lastQuery, m.lastMax = query, maxResults
	return m.results, m.err
}

func (m *mockRetrievalService) CalculateRelevanceScore(
	_ context.Context,
	_ string,
	_ domain.DocumentChunk,
) (float64, error) {
	return 0, m.err
}

// mockRepository is a mock implementation of driving.DocumentRepository.
type mockRepository struct {
	documents []domain.Document
	full      *domain.Document
	err       error
}

func (m *mockRepository) GetAllDocuments(_ context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockRepository) GetDocumentByID(_ context.Context, _ string) (*domain.Document, error) {
	return m.full, m.err
}

func (m *mockRepository) LoadFullContent(_ context.Context, _ string) (*domain.Document, error) {
	return m.full, m.err
}

func (m *mockRepository) SaveDocument(_ context.Context, _ *domain.Document) error {
	return m.err
}

func (m *mockRepository) DeleteDocument(_ context.Context, _ string) error {
	return m.err
}

func (m *mockRepository) GetChunkByID(_ context.Context, _ string, _ ...string) (*domain.DocumentChunk, error) {
	return nil, m.err
}

func (m *mockRepository) SetSelected(_ context.Context, _ string, _ bool) error {
	return m.err
}

func (m *mockRepository) SelectedDocumentIDs(_ context.Context) ([]string, error) {
	return nil, m.err
}
