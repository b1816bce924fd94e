package paragraph

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(100, 150)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestStrategy_CanChunk(t *testing.T) {
	s, err := New(100, 10)
	require.NoError(t, err)

	assert.False(t, s.CanChunk(&domain.Document{Content: "one line\nanother line"}, nil))
	assert.True(t, s.CanChunk(&domain.Document{Content: "para one\n\npara two"}, nil))
	assert.True(t, s.CanChunk(&domain.Document{Content: "para one\r\n\r\npara two"}, nil))
	assert.True(t, s.CanChunk(&domain.Document{Content: "para one\n  \npara two"}, nil))
}

func TestStrategy_Chunk_KeepsParagraphsWhole(t *testing.T) {
	s, err := New(40, 0)
	require.NoError(t, err)
	doc := &domain.Document{
		Name:    "notes.txt",
		Content: "The first paragraph is here.\n\nThe second paragraph follows.",
	}

	chunks, err := s.Chunk(context.Background(), doc, nil)
	require.NoError(t, err)

	require.Len(t, chunks, 2)
	assert.Equal(t, "The first paragraph is here.", chunks[0].Content)
	assert.Equal(t, "The second paragraph follows.", chunks[1].Content)
	assert.Equal(t, "notes.txt", chunks[0].Source)
}

func TestStrategy_Chunk_RespectsSize(t *testing.T) {
	s, err := New(50, 10)
	require.NoError(t, err)
	doc := &domain.Document{Content: strings.Repeat("word ", 40) + "\n\n" + strings.Repeat("more ", 40)}

	chunks, err := s.Chunk(context.Background(), doc, nil)
	require.NoError(t, err)

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Content)), 50)
		assert.NotEmpty(t, strings.TrimSpace(c.Content))
	}
}

func TestStrategy_Chunk_Empty(t *testing.T) {
	s, err := New(50, 10)
	require.NoError(t, err)

	chunks, err := s.Chunk(context.Background(), &domain.Document{Content: " \n\n "}, nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
