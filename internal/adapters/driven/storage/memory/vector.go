package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/similarity"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
type VectorStore struct {
	faults
	mu     sync.RWMutex
	dim    int
	chunks []domain.DocumentChunk // insertion order
	index  map[string]int
}

// NewVectorStore creates a new in-memory vector store.
// A zero dimension is fixed by the first stored batch.
func NewVectorStore(dimension int) *VectorStore {
	return &VectorStore{
		dim:   dimension,
		index: make(map[string]int),
	}
}

// AddVectors inserts or replaces chunks; an invalid batch stores nothing.
func (s *VectorStore) AddVectors(_ context.Context, chunks []domain.DocumentChunk) error {
	if err := s.check(OpAdd); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dim, err := s.validate(chunks)
	if err != nil {
		return err
	}
	s.dim = dim
	s.insert(chunks)
	return nil
}

// ReplaceVectors swaps the chunks of documentID for chunks; on error
// the old set is kept. Faults injected on remove or add apply here too.
func (s *VectorStore) ReplaceVectors(_ context.Context, documentID string, chunks []domain.DocumentChunk) error {
	if err := s.check(OpRemove); err != nil {
		return err
	}
	if err := s.check(OpAdd); err != nil {
		return err
	}
	for i := range chunks {
		if chunks[i].DocumentID != documentID {
			return fmt.Errorf("%w: chunk %s belongs to %q, not %q",
				domain.ErrInvalidInput, chunks[i].ID, chunks[i].DocumentID, documentID)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dim, err := s.validate(chunks)
	if err != nil {
		return err
	}
	s.remove(documentID)
	if len(chunks) > 0 {
		s.dim = dim
		s.insert(chunks)
	}
	return nil
}

// Dimension returns the fixed embedding length, or 0 while unset.
func (s *VectorStore) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dim
}

func (s *VectorStore) validate(chunks []domain.DocumentChunk) (int, error) {
	dim := s.dim
	if dim == 0 && len(chunks) > 0 {
		dim = len(chunks[0].Embedding)
	}
	for i := range chunks {
		c := &chunks[i]
		if c.ID == "" || c.DocumentID == "" || len(c.Embedding) == 0 {
			return 0, fmt.Errorf("%w: chunk %d is incomplete", domain.ErrInvalidInput, i)
		}
		if len(c.Embedding) != dim {
			return 0, fmt.Errorf("%w: chunk %s has %d dimensions, want %d",
				domain.ErrDimensionMismatch, c.ID, len(c.Embedding), dim)
		}
	}
	return dim, nil
}

func (s *VectorStore) insert(chunks []domain.DocumentChunk) {
	for _, c := range chunks {
		if i, ok := s.index[c.ID]; ok {
			s.chunks[i] = c
			continue
		}
		s.index[c.ID] = len(s.chunks)
		s.chunks = append(s.chunks, c)
	}
}

// RemoveVectors deletes every chunk of documentID.
func (s *VectorStore) RemoveVectors(_ context.Context, documentID string) error {
	if err := s.check(OpRemove); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(documentID)
	return nil
}

func (s *VectorStore) remove(documentID string) {
	kept := s.chunks[:0]
	for _, c := range s.chunks {
		if c.DocumentID != documentID {
			kept = append(kept, c)
		}
	}
	s.chunks = kept
	s.index = make(map[string]int, len(kept))
	for i, c := range kept {
		s.index[c.ID] = i
	}
}

// Search scores every chunk.
func (s *VectorStore) Search(ctx context.Context, query []float32, limit int) ([]domain.SimilarityResult, error) {
	return s.search(query, nil, limit)
}

// SearchInDocuments scores the chunks of documentIDs.
func (s *VectorStore) SearchInDocuments(_ context.Context, query []float32, documentIDs []string, limit int) ([]domain.SimilarityResult, error) {
	if len(documentIDs) == 0 {
		return []domain.SimilarityResult{}, nil
	}
	allowed := make(map[string]bool, len(documentIDs))
	for _, id := range documentIDs {
		allowed[id] = true
	}
	return s.search(query, allowed, limit)
}

func (s *VectorStore) search(query []float32, allowed map[string]bool, limit int) ([]domain.SimilarityResult, error) {
	if err := s.check(OpSearch); err != nil {
		return nil, err
	}
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []domain.SimilarityResult{}
	if s.dim == 0 || limit <= 0 {
		return results, nil
	}
	if len(query) != s.dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, want %d",
			domain.ErrDimensionMismatch, len(query), s.dim)
	}

	scorer := similarity.NewQuery(query)
	for _, c := range s.chunks {
		if allowed != nil && !allowed[c.DocumentID] {
			continue
		}
		results = append(results, domain.SimilarityResult{Chunk: c, Score: scorer.Score(c.Embedding)})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// GetChunkByID returns the chunk, or nil when absent.
func (s *VectorStore) GetChunkByID(_ context.Context, chunkID string) (*domain.DocumentChunk, error) {
	if err := s.check(OpGetChunk); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[chunkID]
	if !ok {
		return nil, nil
	}
	c := s.chunks[i]
	return &c, nil
}

// GetChunksByDocument returns the chunks of documentID ordered by position.
func (s *VectorStore) GetChunksByDocument(_ context.Context, documentID string) ([]domain.DocumentChunk, error) {
	if err := s.check(OpGetChunk); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.DocumentChunk
	for _, c := range s.chunks {
		if c.DocumentID == documentID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// CountByDocument returns the number of chunks of documentID.
func (s *VectorStore) CountByDocument(_ context.Context, documentID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.chunks {
		if c.DocumentID == documentID {
			n++
		}
	}
	return n, nil
}

// Close is a no-op.
func (s *VectorStore) Close() error {
	return nil
}
