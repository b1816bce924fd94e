// Package chunking splits documents into ordered, identified chunks.
//
// An Engine holds a fixed-priority list of strategies. The first strategy
// that reports itself applicable produces the chunks; the engine then assigns
// positions and ids so identical input always yields identical chunk sets.
package chunking

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure Engine implements the chunker port.
var _ driven.Chunker = (*Engine)(nil)

// Engine runs the first applicable strategy.
type Engine struct {
	strategies []driven.ChunkingStrategy
}

// New creates an engine trying strategies in the order provided.
func New(strategies ...driven.ChunkingStrategy) *Engine {
	return &Engine{strategies: strategies}
}

// Chunk splits doc into chunks. structured may be nil.
func (e *Engine) Chunk(ctx context.Context, doc *domain.Document, structured *domain.StructuredDocument) ([]domain.DocumentChunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}

	strategy := e.Select(doc, structured)
	if strategy == nil {
		return nil, fmt.Errorf("%w: no chunking strategy applies to document %s", domain.ErrInvalidConfig, doc.ID)
	}

	chunks, err := strategy.Chunk(ctx, doc, structured)
	if err != nil {
		return nil, fmt.Errorf("strategy %s: %w", strategy.Name(), err)
	}

	for i := range chunks {
		chunks[i].DocumentID = doc.ID
		chunks[i].Position = i
		chunks[i].ID = domain.ChunkID(doc.ID, i)
		if chunks[i].Source == "" {
			chunks[i].Source = doc.Name
		}
		if chunks[i].Metadata == nil {
			chunks[i].Metadata = make(map[string]string)
		}
		chunks[i].Metadata["strategy"] = strategy.Name()
	}

	return chunks, nil
}

// Select returns the strategy that would chunk doc, or nil.
func (e *Engine) Select(doc *domain.Document, structured *domain.StructuredDocument) driven.ChunkingStrategy {
	for _, s := range e.strategies {
		if s.CanChunk(doc, structured) {
			return s
		}
	}
	return nil
}

// Names returns the strategy names in priority order.
func (e *Engine) Names() []string {
	names := make([]string, len(e.strategies))
	for i, s := range e.strategies {
		names[i] = s.Name()
	}
	return names
}
