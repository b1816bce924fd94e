// Package limited throttles calls to an embedding service.
package limited

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService waits on a token bucket before every upstream request.
// A batch counts as one request.
type EmbeddingService struct {
	next    driven.EmbeddingService
	limiter *rate.Limiter
}

// New wraps next with a limit of requestsPerSecond and the given burst.
// A burst below 1 is raised to 1.
func New(next driven.EmbeddingService, requestsPerSecond float64, burst int) *EmbeddingService {
	if burst < 1 {
		burst = 1
	}
	return &EmbeddingService{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Embed waits for a token and embeds text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.next.Embed(ctx, text)
}

// EmbedBatch waits for a token and embeds texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.next.EmbedBatch(ctx, texts)
}

func (s *EmbeddingService) wait(ctx context.Context) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("embedding rate limit: %w", err)
	}
	return nil
}

func (s *EmbeddingService) Dimensions() int                { return s.next.Dimensions() }
func (s *EmbeddingService) ModelName() string              { return s.next.ModelName() }
func (s *EmbeddingService) Ping(ctx context.Context) error { return s.next.Ping(ctx) }
func (s *EmbeddingService) Close() error                   { return s.next.Close() }
