// Package cached memoises embeddings in a bounded LRU cache.
package cached

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService returns cached vectors for texts seen before and
// delegates the rest to the wrapped service.
type EmbeddingService struct {
	next  driven.EmbeddingService
	cache *lru.Cache[string, []float32]
}

// New wraps next with a cache holding up to size vectors.
func New(next driven.EmbeddingService, size int) (*EmbeddingService, error) {
	if size <= 0 {
		return nil, fmt.Errorf("embedding cache size must be greater than zero, got %d", size)
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("init embedding cache: %w", err)
	}
	return &EmbeddingService{next: next, cache: cache}, nil
}

// Embed returns the cached vector for text or embeds it.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	key := s.key(text)
	if v, ok := s.cache.Get(key); ok {
		return clone(v), nil
	}
	v, err := s.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, clone(v))
	return v, nil
}

// EmbedBatch embeds only the texts missing from the cache, in one call.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var slots []int
	for i, t := range texts {
		if v, ok := s.cache.Get(s.key(t)); ok {
			out[i] = clone(v)
			continue
		}
		missing = append(missing, t)
		slots = append(slots, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vectors, err := s.next.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missing) {
		return nil, fmt.Errorf("embedding cache: got %d embeddings for %d texts", len(vectors), len(missing))
	}
	for j, v := range vectors {
		out[slots[j]] = v
		s.cache.Add(s.key(missing[j]), clone(v))
	}
	return out, nil
}

// Len returns the number of cached vectors.
func (s *EmbeddingService) Len() int { return s.cache.Len() }

func (s *EmbeddingService) Dimensions() int                { return s.next.Dimensions() }
func (s *EmbeddingService) ModelName() string              { return s.next.ModelName() }
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

// Close purges the cache and closes the wrapped service.
func (s *EmbeddingService) Close() error {
	s.cache.Purge()
	return s.next.Close()
}

// key scopes entries by model so a model change never serves stale vectors.
func (s *EmbeddingService) key(text string) string {
	sum := sha256.Sum256([]byte(s.next.ModelName() + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

func clone(v []float32) []float32 {
	return append([]float32(nil), v...)
}
