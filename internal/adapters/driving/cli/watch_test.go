package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/watcher"
)

func TestWatchCmd_Flags(t *testing.T) {
	fl := watchCmd.Flags().Lookup("debounce")
	require.NotNil(t, fl)
	assert.Equal(t, watcher.DefaultDebounce.String(), fl.DefValue)
}

func TestWatchCmd_MissingDirectory(t *testing.T) {
	f := setupTestServices(t)

	_, err := execute(t, "watch", filepath.Join(f.dir, "missing"))

	assert.Error(t, err)
}

func TestWatchCmd_InitialIngestThenStops(t *testing.T) {
	f := setupTestServices(t)
	f.write(t, "notes/a.md", "# A\n\nalpha")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	resetFlags(rootCmd)
	watchCmd.SetContext(ctx)
	rootCmd.SetArgs([]string{"watch", filepath.Join(f.dir, "notes")})
	defer rootCmd.SetArgs(nil)
	out := &safeBuffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)

	require.NoError(t, rootCmd.ExecuteContext(ctx))

	assert.Contains(t, out.String(), "Ingested: 1  Skipped: 0  Failed: 0")
	assert.Contains(t, out.String(), "Watching")
	docs, err := f.repo.GetAllDocuments(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}
