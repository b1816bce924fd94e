// Package window provides the fixed-size sliding window chunking strategy.
package window

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure Strategy implements the interface.
var _ driven.ChunkingStrategy = (*Strategy)(nil)

// Strategy splits text into windows of chunkSize runes, each starting
// chunkSize-overlap runes after the previous one. It applies to every document.
type Strategy struct {
	chunkSize int
	overlap   int
}

// New creates a window strategy.
// Returns domain.ErrInvalidConfig unless 0 <= overlap < chunkSize.
func New(chunkSize, overlap int) (*Strategy, error) {
	if err := Validate(chunkSize, overlap); err != nil {
		return nil, err
	}
	return &Strategy{chunkSize: chunkSize, overlap: overlap}, nil
}

// Validate checks window parameters.
func Validate(chunkSize, overlap int) error {
	switch {
	case chunkSize <= 0:
		return fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfig, chunkSize)
	case overlap < 0:
		return fmt.Errorf("%w: overlap cannot be negative, got %d", domain.ErrInvalidConfig, overlap)
	case overlap >= chunkSize:
		return fmt.Errorf("%w: overlap %d must be smaller than chunk size %d", domain.ErrInvalidConfig, overlap, chunkSize)
	}
	return nil
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return domain.StrategyWindow
}

// ChunkSize returns the window length in runes.
func (s *Strategy) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the number of runes shared by consecutive windows.
func (s *Strategy) Overlap() int {
	return s.overlap
}

// CanChunk always returns true.
func (s *Strategy) CanChunk(*domain.Document, *domain.StructuredDocument) bool {
	return true
}

// Chunk splits the document content. Structure is ignored.
func (s *Strategy) Chunk(_ context.Context, doc *domain.Document, _ *domain.StructuredDocument) ([]domain.DocumentChunk, error) {
	pieces := s.Split(doc.Content)
	if len(pieces) == 0 {
		return nil, nil
	}

	chunks := make([]domain.DocumentChunk, 0, len(pieces))
	for _, p := range pieces {
		chunks = append(chunks, domain.DocumentChunk{
			Content: p,
			Source:  doc.Name,
		})
	}
	return chunks, nil
}

// Split returns the windows of text. Windows holding only whitespace are dropped.
func (s *Strategy) Split(text string) []string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	step := s.chunkSize - s.overlap
	pieces := make([]string, 0, n/step+1)

	for start := 0; start < n; start += step {
		end := start + s.chunkSize
		if end > n {
			end = n
		}

		piece := string(runes[start:end])
		if strings.TrimSpace(piece) != "" {
			pieces = append(pieces, piece)
		}

		// The tail window already reached the end of the text.
		if end == n {
			break
		}
	}

	return pieces
}
