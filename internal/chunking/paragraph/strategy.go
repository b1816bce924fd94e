// Package paragraph provides a chunking strategy for plain text with
// paragraph breaks, backed by langchaingo's recursive character splitter.
package paragraph

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/custodia-labs/docrag/internal/chunking/window"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure Strategy implements the interface.
var _ driven.ChunkingStrategy = (*Strategy)(nil)

var (
	newlinePattern   = regexp.MustCompile(`\r\n|\r`)
	paragraphPattern = regexp.MustCompile(`\n[ \t]*\n`)
)

// Strategy splits on paragraph breaks first, then lines, then words.
type Strategy struct {
	splitter textsplitter.RecursiveCharacter
}

// New creates a paragraph strategy.
// Returns domain.ErrInvalidConfig unless 0 <= overlap < chunkSize.
func New(chunkSize, overlap int) (*Strategy, error) {
	if err := window.Validate(chunkSize, overlap); err != nil {
		return nil, err
	}
	return &Strategy{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(overlap),
			textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
		),
	}, nil
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return domain.StrategyParagraph
}

// CanChunk reports whether the content has at least one blank-line break.
func (s *Strategy) CanChunk(doc *domain.Document, _ *domain.StructuredDocument) bool {
	return paragraphPattern.MatchString(normalize(doc.Content))
}

// Chunk splits the document content.
func (s *Strategy) Chunk(_ context.Context, doc *domain.Document, _ *domain.StructuredDocument) ([]domain.DocumentChunk, error) {
	text := strings.TrimSpace(normalize(doc.Content))
	if text == "" {
		return nil, nil
	}

	segments, err := s.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("splitting document %s: %w", doc.ID, err)
	}

	chunks := make([]domain.DocumentChunk, 0, len(segments))
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		chunks = append(chunks, domain.DocumentChunk{
			Content: seg,
			Source:  doc.Name,
		})
	}
	return chunks, nil
}

func normalize(text string) string {
	return newlinePattern.ReplaceAllString(text, "\n")
}
