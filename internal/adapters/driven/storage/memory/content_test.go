package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

func TestContentStore_SaveLoadDelete(t *testing.T) {
	store := NewContentStore()
	ctx := context.Background()

	require.NoError(t, store.SaveContent(ctx, "doc-1", "hello"))
	assert.True(t, store.Has("doc-1"))

	text, err := store.LoadContent(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	require.NoError(t, store.DeleteContent(ctx, "doc-1"))
	require.NoError(t, store.DeleteContent(ctx, "doc-1"))
	_, err = store.LoadContent(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestContentStore_FailOn(t *testing.T) {
	store := NewContentStore()
	ctx := context.Background()
	boom := errors.New("disk gone")
	require.NoError(t, store.SaveContent(ctx, "doc-1", "hello"))

	store.FailOn(OpDelete, boom)
	assert.ErrorIs(t, store.DeleteContent(ctx, "doc-1"), boom)
	assert.True(t, store.Has("doc-1"))

	store.FailOn(OpDelete, nil)
	assert.NoError(t, store.DeleteContent(ctx, "doc-1"))
}

func TestContentStore_Reset(t *testing.T) {
	store := NewContentStore()
	store.FailOn(OpSave, errors.New("x"))
	store.FailOn(OpLoad, errors.New("y"))

	store.Reset()

	assert.NoError(t, store.SaveContent(context.Background(), "a", "b"))
}
