package chunking

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

type stubStrategy struct {
	name   string
	can    bool
	chunks []domain.DocumentChunk
	err    error
	calls  int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) CanChunk(*domain.Document, *domain.StructuredDocument) bool { return s.can }

func (s *stubStrategy) Chunk(context.Context, *domain.Document, *domain.StructuredDocument) ([]domain.DocumentChunk, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.DocumentChunk, len(s.chunks))
	copy(out, s.chunks)
	return out, nil
}

func TestEngine_FirstApplicableWins(t *testing.T) {
	skipped := &stubStrategy{name: "skipped", can: false}
	first := &stubStrategy{name: "first", can: true, chunks: []domain.DocumentChunk{{Content: "a"}}}
	second := &stubStrategy{name: "second", can: true, chunks: []domain.DocumentChunk{{Content: "b"}}}
	e := New(skipped, first, second)

	chunks, err := e.Chunk(context.Background(), &domain.Document{ID: "doc"}, nil)

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a", chunks[0].Content)
	assert.Equal(t, "first", chunks[0].Metadata["strategy"])
	assert.Zero(t, skipped.calls)
	assert.Zero(t, second.calls)
}

func TestEngine_AssignsIdentity(t *testing.T) {
	s := &stubStrategy{name: "s", can: true, chunks: []domain.DocumentChunk{
		{Content: "one"}, {Content: "two", Source: "custom"}, {Content: "three"},
	}}
	e := New(s)

	chunks, err := e.Chunk(context.Background(), &domain.Document{ID: "doc", Name: "doc.txt"}, nil)

	require.NoError(t, err)
	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.Position)
		assert.Equal(t, "doc", c.DocumentID)
		assert.Equal(t, domain.ChunkID("doc", i), c.ID)
	}
	assert.Equal(t, "doc.txt", chunks[0].Source)
	assert.Equal(t, "custom", chunks[1].Source)
}

func TestEngine_NilDocument(t *testing.T) {
	_, err := New().Chunk(context.Background(), nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEngine_NoApplicableStrategy(t *testing.T) {
	_, err := New(&stubStrategy{name: "never"}).Chunk(context.Background(), &domain.Document{ID: "d"}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestEngine_StrategyError(t *testing.T) {
	boom := errors.New("boom")
	_, err := New(&stubStrategy{name: "bad", can: true, err: boom}).Chunk(context.Background(), &domain.Document{ID: "d"}, nil)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "strategy bad")
}

func TestNewEngine_DefaultOrder(t *testing.T) {
	e, err := NewEngine(domain.ChunkingSettings{ChunkSize: 100, Overlap: 10})

	require.NoError(t, err)
	assert.Equal(t, []string{"structure", "paragraph", "window"}, e.Names())
}

func TestNewEngine_AppendsWindowFallback(t *testing.T) {
	e, err := NewEngine(domain.ChunkingSettings{ChunkSize: 100, Overlap: 10, Strategies: []string{"paragraph", "paragraph"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"paragraph", "window"}, e.Names())
}

func TestNewEngine_UnknownStrategy(t *testing.T) {
	_, err := NewEngine(domain.ChunkingSettings{ChunkSize: 100, Overlap: 10, Strategies: []string{"semantic"}})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestNewEngine_OverlapLargerThanChunkSize(t *testing.T) {
	e, err := NewEngine(domain.ChunkingSettings{ChunkSize: 100, Overlap: 150})

	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	assert.Nil(t, e)
}

func TestEngine_SelectsByInput(t *testing.T) {
	e, err := NewEngine(domain.ChunkingSettings{ChunkSize: 200, Overlap: 20})
	require.NoError(t, err)

	structured := &domain.StructuredDocument{Elements: []domain.StructuredElement{
		{Type: domain.ElementHeading1, Text: "Title"},
		{Type: domain.ElementParagraph, Text: "Body"},
	}}
	assert.Equal(t, "structure", e.Select(&domain.Document{}, structured).Name())
	assert.Equal(t, "paragraph", e.Select(&domain.Document{Content: "a\n\nb"}, nil).Name())
	assert.Equal(t, "window", e.Select(&domain.Document{Content: "single block"}, nil).Name())
}

func TestEngine_Idempotent(t *testing.T) {
	e, err := NewEngine(domain.ChunkingSettings{ChunkSize: 80, Overlap: 10})
	require.NoError(t, err)

	doc := &domain.Document{ID: "doc-1", Name: "doc.md", Content: strings.Repeat("Some sentence here. ", 30)}
	structured := &domain.StructuredDocument{Title: "Doc", Elements: []domain.StructuredElement{
		{Type: domain.ElementHeading1, Text: "Doc", SectionPath: "Doc"},
		{Type: domain.ElementParagraph, Text: strings.Repeat("Body text. ", 20), SectionPath: "Doc"},
		{Type: domain.ElementListItem, Text: "item", SectionPath: "Doc"},
	}}

	for _, sd := range []*domain.StructuredDocument{nil, structured} {
		a, err := e.Chunk(context.Background(), doc, sd)
		require.NoError(t, err)
		b, err := e.Chunk(context.Background(), doc, sd)
		require.NoError(t, err)

		require.Equal(t, len(a), len(b))
		require.NotEmpty(t, a)
		for i := range a {
			assert.Equal(t, a[i].ID, b[i].ID)
			assert.Equal(t, a[i].Position, b[i].Position)
			assert.Equal(t, a[i].Content, b[i].Content)
		}
	}
}
