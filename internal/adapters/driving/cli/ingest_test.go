package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCmd(t *testing.T) {
	f := setupTestServices(t)
	path := f.write(t, "readme.md", "# Readme\n\nHello there.")

	out, err := execute(t, "add", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Added readme.md")
	docs, err := f.repo.GetAllDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.True(t, docs[0].IsProcessed)
	assert.Positive(t, docs[0].ChunkCount)
}

func TestAddCmd_PartialFailure(t *testing.T) {
	f := setupTestServices(t)
	good := f.write(t, "good.txt", "plain text")
	bad := f.write(t, "image.png", "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00")

	out, err := execute(t, "add", good, bad)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
	assert.Contains(t, out, "Added good.txt")
	assert.Contains(t, out, "Failed to add "+bad)
}

func TestAddCmd_RequiresArgs(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "add")

	assert.Error(t, err)
}

func TestAddDirCmd(t *testing.T) {
	f := setupTestServices(t)
	f.write(t, "docs/a.md", "# A\n\nalpha")
	f.write(t, "docs/b.txt", "beta")
	f.write(t, "docs/drafts/c.md", "# C\n\ngamma")
	f.write(t, "docs/logo.png", "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00")

	out, err := execute(t, "add-dir", filepath.Join(f.dir, "docs"), "--exclude", "drafts/**")

	require.NoError(t, err)
	assert.Contains(t, out, "Ingested: 2  Skipped: 1  Failed: 0")
	docs, err := f.repo.GetAllDocuments(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestAddDirCmd_Include(t *testing.T) {
	f := setupTestServices(t)
	f.write(t, "docs/a.md", "# A\n\nalpha")
	f.write(t, "docs/b.txt", "beta")

	out, err := execute(t, "add-dir", filepath.Join(f.dir, "docs"), "--include", "**/*.md")

	require.NoError(t, err)
	assert.Contains(t, out, "Ingested: 1")
}

func TestReprocessCmd(t *testing.T) {
	f := setupTestServices(t)
	doc := f.add(t, "notes.txt", "first version")
	require.NoError(t, os.WriteFile(doc.SourcePath, []byte("second version with more words"), 0o644))

	out, err := execute(t, "reprocess", doc.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Reprocessed "+doc.ID)

	full, err := f.repo.LoadFullContent(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "second version with more words", full.Content)
}

func TestReprocessCmd_Unknown(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "reprocess", "ghost")

	assert.Error(t, err)
}
