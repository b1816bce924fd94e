package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemStore(t *testing.T) (*ConfigStore, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store, err := NewConfigStoreWithFs(fs, "/data")
	require.NoError(t, err)
	return store, fs
}

func TestNewConfigStore_OnDisk(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ConfigFile), store.Path())

	require.NoError(t, store.Set("embedding.provider", "ollama"))
	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestNewConfigStore_BadDirectory(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create")
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, _ := newMemStore(t)

	require.NoError(t, store.Set("s", "hello"))
	require.NoError(t, store.Set("i", 42))
	require.NoError(t, store.Set("f", 0.25))
	require.NoError(t, store.Set("b", true))
	require.NoError(t, store.Set("l", []string{"a", "b"}))

	assert.Equal(t, "hello", store.GetString("s"))
	assert.Equal(t, 42, store.GetInt("i"))
	assert.InDelta(t, 0.25, store.GetFloat("f"), 1e-9)
	assert.InDelta(t, 42.0, store.GetFloat("i"), 1e-9)
	assert.True(t, store.GetBool("b"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("l"))

	// Wrong types and missing keys yield zero values.
	assert.Empty(t, store.GetString("i"))
	assert.Zero(t, store.GetInt("s"))
	assert.Zero(t, store.GetFloat("s"))
	assert.False(t, store.GetBool("s"))
	assert.Nil(t, store.GetStringSlice("missing"))
	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_RoundTripNested(t *testing.T) {
	store, fs := newMemStore(t)
	require.NoError(t, store.Set("chunking.chunk_size", 800))
	require.NoError(t, store.Set("chunking.strategies", []string{"paragraph", "window"}))
	require.NoError(t, store.Set("retrieval.min_score", 0.5))
	require.NoError(t, store.Set("log_level", "debug"))

	raw, err := afero.ReadFile(fs, store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[chunking]")
	assert.Contains(t, string(raw), "[retrieval]")

	reopened, err := NewConfigStoreWithFs(fs, "/data")
	require.NoError(t, err)
	assert.Equal(t, 800, reopened.GetInt("chunking.chunk_size"))
	assert.Equal(t, []string{"paragraph", "window"}, reopened.GetStringSlice("chunking.strategies"))
	assert.InDelta(t, 0.5, reopened.GetFloat("retrieval.min_score"), 1e-9)
	assert.Equal(t, "debug", reopened.GetString("log_level"))
	assert.Equal(t,
		[]string{"chunking.chunk_size", "chunking.strategies", "log_level", "retrieval.min_score"},
		reopened.Keys())
}

func TestConfigStore_ValueShadowingTable(t *testing.T) {
	store, fs := newMemStore(t)
	require.NoError(t, store.Set("embedding", "plain"))
	require.NoError(t, store.Set("embedding.model", "nomic-embed-text"))

	reopened, err := NewConfigStoreWithFs(fs, "/data")
	require.NoError(t, err)
	assert.Equal(t, "plain", reopened.GetString("embedding"))
	assert.Equal(t, "nomic-embed-text", reopened.GetString("embedding.model"))
}

func TestConfigStore_HandWrittenFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := `
[chunking]
chunk_size = 500
overlap = 50

[embedding]
provider = "openai"
`
	require.NoError(t, afero.WriteFile(fs, "/data/"+ConfigFile, []byte(content), 0o600))

	store, err := NewConfigStoreWithFs(fs, "/data")
	require.NoError(t, err)
	assert.Equal(t, 500, store.GetInt("chunking.chunk_size"))
	assert.Equal(t, 50, store.GetInt("chunking.overlap"))
	assert.Equal(t, "openai", store.GetString("embedding.provider"))
}

func TestConfigStore_EmptyFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/"+ConfigFile, nil, 0o600))

	store, err := NewConfigStoreWithFs(fs, "/data")
	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_CorruptFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/"+ConfigFile, []byte("not toml {{[["), 0o600))

	store, err := NewConfigStoreWithFs(fs, "/data")
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_LoadAfterExternalEdit(t *testing.T) {
	store, fs := newMemStore(t)
	require.NoError(t, store.Set("a", "1"))
	require.NoError(t, afero.WriteFile(fs, store.Path(), []byte(`b = "2"`), 0o600))

	require.NoError(t, store.Load())
	_, ok := store.Get("a")
	assert.False(t, ok)
	assert.Equal(t, "2", store.GetString("b"))
}

func TestConfigStore_WriteFailure(t *testing.T) {
	store, fs := newMemStore(t)
	store.fs = afero.NewReadOnlyFs(fs)

	assert.Error(t, store.Set("a", "1"))
	assert.Error(t, store.Save())
}

func TestConfigStore_EmptyKey(t *testing.T) {
	store, _ := newMemStore(t)
	assert.Error(t, store.Set("", "x"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, _ := newMemStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "key" + string(rune('0'+id))
			assert.NoError(t, store.Set(key, id))
			_ = store.GetInt(key)
			_ = store.Keys()
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 10)
}
