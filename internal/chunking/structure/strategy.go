// Package structure provides the structure-aware chunking strategy.
//
// Consecutive elements are packed into chunks up to the configured size.
// An element that fits is never split, headings start a new chunk, and an
// element larger than a chunk is cut with the sliding window.
package structure

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docrag/internal/chunking/window"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure Strategy implements the interface.
var _ driven.ChunkingStrategy = (*Strategy)(nil)

const separator = "\n\n"

// minElements is the number of text elements a structured document needs
// before structure is worth following.
const minElements = 2

// Strategy packs structured elements into chunks.
type Strategy struct {
	chunkSize int
	window    *window.Strategy
}

// New creates a structure strategy. Oversized elements are split with a
// window of the same size and overlap.
func New(chunkSize, overlap int) (*Strategy, error) {
	w, err := window.New(chunkSize, overlap)
	if err != nil {
		return nil, err
	}
	return &Strategy{chunkSize: chunkSize, window: w}, nil
}

// Name returns the strategy name.
func (s *Strategy) Name() string {
	return domain.StrategyStructure
}

// CanChunk reports whether structured is present and non-trivial.
func (s *Strategy) CanChunk(_ *domain.Document, structured *domain.StructuredDocument) bool {
	if structured == nil {
		return false
	}
	n := 0
	for i := range structured.Elements {
		if strings.TrimSpace(structured.Elements[i].Text) != "" {
			n++
		}
	}
	return n >= minElements
}

// Chunk packs the elements of structured in document order.
func (s *Strategy) Chunk(_ context.Context, doc *domain.Document, structured *domain.StructuredDocument) ([]domain.DocumentChunk, error) {
	p := &packer{
		size:     s.chunkSize,
		source:   doc.Name,
		fallback: structured.Title,
	}
	if p.source == "" {
		p.source = structured.Title
	}

	for _, el := range structured.Elements {
		text := strings.TrimSpace(el.Text)
		if text == "" {
			continue
		}

		if el.Type.IsHeading() {
			p.flush()
		}

		n := utf8.RuneCountInString(text)
		if n > s.chunkSize {
			p.flush()
			for _, piece := range s.window.Split(text) {
				p.emit(strings.TrimSpace(piece), el)
			}
			continue
		}

		if p.len > 0 && p.len+len(separator)+n > s.chunkSize {
			p.flush()
		}
		p.add(text, n, el)
	}
	p.flush()

	return p.chunks, nil
}

// packer accumulates element texts into one pending chunk.
type packer struct {
	size     int
	source   string
	fallback string

	parts []string
	len   int
	first *domain.StructuredElement
	types []string

	chunks []domain.DocumentChunk
}

func (p *packer) add(text string, n int, el domain.StructuredElement) {
	if p.len > 0 {
		p.len += len(separator)
	}
	p.parts = append(p.parts, text)
	p.len += n
	if p.first == nil {
		e := el
		p.first = &e
	}
	p.types = appendUnique(p.types, string(el.Type))
}

func (p *packer) flush() {
	if len(p.parts) == 0 {
		return
	}
	p.chunks = append(p.chunks, domain.DocumentChunk{
		Content:     strings.Join(p.parts, separator),
		Source:      p.source,
		SectionPath: p.sectionPath(*p.first),
		Metadata: map[string]string{
			"element_types": strings.Join(p.types, ","),
		},
	})
	p.parts = nil
	p.len = 0
	p.first = nil
	p.types = nil
}

func (p *packer) emit(text string, el domain.StructuredElement) {
	if text == "" {
		return
	}
	p.chunks = append(p.chunks, domain.DocumentChunk{
		Content:     text,
		Source:      p.source,
		SectionPath: p.sectionPath(el),
		Metadata: map[string]string{
			"element_types": string(el.Type),
			"split":         "true",
		},
	})
}

func (p *packer) sectionPath(el domain.StructuredElement) string {
	if el.SectionPath != "" {
		return el.SectionPath
	}
	return p.fallback
}

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}
