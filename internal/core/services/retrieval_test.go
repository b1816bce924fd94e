package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docrag/internal/core/domain"
)

func newRetrievalFixture(t *testing.T, settings domain.RetrievalSettings) (*RetrievalService, *repoFixture, *keywordEmbedder) {
	t.Helper()
	f := newRepoFixture(t)
	emb := &keywordEmbedder{}
	svc := NewRetrievalService(f.vectors, emb, f.repo, settings, f.log)
	return svc, f, emb
}

func TestRetrieveRelevantChunks_RanksAndThresholds(t *testing.T) {
	svc, f, _ := newRetrievalFixture(t, domain.RetrievalSettings{MinScore: 0.3})
	ctx := context.Background()
	f.save(t, testDocument("A", []float32{1, 0}))
	f.save(t, testDocument("B", []float32{0, 1}))

	results, err := svc.RetrieveRelevantChunks(ctx, "alpha", nil, 5)
	require.NoError(t, err)

	// "beta" scores 0 against [1,0] and falls under the threshold.
	require.Len(t, results, 1)
	assert.Equal(t, "A", results[0].Chunk.DocumentID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
}

func TestRetrieveRelevantChunks_CapsResults(t *testing.T) {
	svc, f, _ := newRetrievalFixture(t, domain.RetrievalSettings{MinScore: 0.1})
	ctx := context.Background()
	f.save(t, testDocument("A", []float32{1, 0}, []float32{1, 0.1}, []float32{1, 0.2}, []float32{1, 0.3}))

	results, err := svc.RetrieveRelevantChunks(ctx, "alpha", nil, 2)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.Equal(t, domain.ChunkID("A", 0), results[0].Chunk.ID)
}

func TestRetrieveRelevantChunks_DefaultMaxResults(t *testing.T) {
	svc, f, _ := newRetrievalFixture(t, domain.RetrievalSettings{MinScore: 0, DefaultMaxResults: 3})
	ctx := context.Background()
	embs := make([][]float32, 10)
	for i := range embs {
		embs[i] = []float32{1, float32(i) / 10}
	}
	f.save(t, testDocument("A", embs...))

	results, err := svc.RetrieveRelevantChunks(ctx, "alpha", nil, 0)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestRetrieveRelevantChunks_EmptyQuery(t *testing.T) {
	svc, _, emb := newRetrievalFixture(t, domain.RetrievalSettings{})

	results, err := svc.RetrieveRelevantChunks(context.Background(), "   ", nil, 5)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Zero(t, emb.calls)
}

func TestRetrieveRelevantChunks_Scoped(t *testing.T) {
	svc, f, _ := newRetrievalFixture(t, domain.RetrievalSettings{MinScore: -1})
	ctx := context.Background()
	f.save(t, testDocument("A", []float32{1, 0}))
	f.save(t, testDocument("B", []float32{0, 1}))

	results, err := svc.RetrieveRelevantChunks(ctx, "alpha", []string{"B"}, 5)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, "B", results[0].Chunk.DocumentID)
	assert.InDelta(t, 0.0, results[0].Score, 1e-6)
}

func TestRetrieveRelevantChunks_CandidateLimit(t *testing.T) {
	tests := []struct {
		name       string
		settings   domain.RetrievalSettings
		maxResults int
		want       int
	}{
		{"floor wins", domain.RetrievalSettings{CandidateLimit: 50, CandidateFactor: 4}, 5, 50},
		{"factor wins", domain.RetrievalSettings{CandidateLimit: 50, CandidateFactor: 4}, 20, 80},
		{"defaults", domain.RetrievalSettings{}, 1, domain.DefaultCandidateLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewRetrievalService(memory.NewVectorStore(2), &keywordEmbedder{}, nil, tt.settings, nil)
			assert.Equal(t, tt.want, svc.candidateLimit(tt.maxResults))
		})
	}
}

func TestRetrieveRelevantChunks_EmbeddingFailure(t *testing.T) {
	f := newRepoFixture(t)
	emb := &mockEmbeddingService{}
	boom := errors.New("connection refused")
	emb.On("Embed", mock.Anything, "anything").Return(nil, boom)
	svc := NewRetrievalService(f.vectors, emb, f.repo, domain.RetrievalSettings{}, f.log)

	_, err := svc.RetrieveRelevantChunks(context.Background(), "anything", nil, 5)

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.ErrorIs(t, err, boom)
	emb.AssertExpectations(t)
}

func TestRetrieveRelevantChunks_NoEmbedder(t *testing.T) {
	svc := NewRetrievalService(memory.NewVectorStore(0), nil, nil, domain.RetrievalSettings{}, nil)

	_, err := svc.RetrieveRelevantChunks(context.Background(), "query", nil, 5)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestRetrieveRelevantChunks_SearchFailure(t *testing.T) {
	svc, f, _ := newRetrievalFixture(t, domain.RetrievalSettings{})
	boom := errors.New("locked")
	f.vectors.FailOn(memory.OpSearch, boom)

	_, err := svc.RetrieveRelevantChunks(context.Background(), "alpha", nil, 5)
	assert.ErrorIs(t, err, boom)
}

func TestRetrieveFromSelected(t *testing.T) {
	svc, f, _ := newRetrievalFixture(t, domain.RetrievalSettings{MinScore: -1})
	ctx := context.Background()
	f.save(t, testDocument("A", []float32{1, 0}))
	f.save(t, testDocument("B", []float32{0, 1}))

	results, err := svc.RetrieveFromSelected(ctx, "alpha", 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	require.NoError(t, f.repo.SetSelected(ctx, "B", true))
	results, err = svc.RetrieveFromSelected(ctx, "alpha", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "B", results[0].Chunk.DocumentID)
}

func TestRetrieveFromSelected_NoRepository(t *testing.T) {
	svc := NewRetrievalService(memory.NewVectorStore(0), &keywordEmbedder{}, nil, domain.RetrievalSettings{}, nil)

	_, err := svc.RetrieveFromSelected(context.Background(), "alpha", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestCalculateRelevanceScore(t *testing.T) {
	svc, _, emb := newRetrievalFixture(t, domain.RetrievalSettings{})
	ctx := context.Background()

	score, err := svc.CalculateRelevanceScore(ctx, "alpha", domain.DocumentChunk{Embedding: []float32{1, 0}})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-6)
	assert.Equal(t, 1, emb.calls)

	// The chunk text is embedded when no vector is attached.
	score, err = svc.CalculateRelevanceScore(ctx, "alpha", domain.DocumentChunk{Content: "beta"})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, score, 1e-6)
	assert.Equal(t, 3, emb.calls)
}

func TestCalculateRelevanceScore_DimensionMismatch(t *testing.T) {
	svc, _, _ := newRetrievalFixture(t, domain.RetrievalSettings{})

	_, err := svc.CalculateRelevanceScore(context.Background(), "alpha", domain.DocumentChunk{Embedding: []float32{1, 0, 0}})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}
