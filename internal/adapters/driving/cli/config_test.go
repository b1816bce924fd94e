package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/config"
	"github.com/custodia-labs/docrag/internal/core/domain"
)

type stubValidator struct {
	err   error
	calls int
}

func (s *stubValidator) ValidateEmbedding(*domain.EmbeddingSettings) error {
	s.calls++
	return s.err
}

func TestConfigSetAndGet(t *testing.T) {
	f := setupTestServices(t)

	_, err := execute(t, "config", "set", config.KeyChunkSize, "800")
	require.NoError(t, err)
	_, err = execute(t, "config", "set", config.KeyChunkStrategies, "structure, window")
	require.NoError(t, err)

	assert.Equal(t, 800, f.config.GetInt(config.KeyChunkSize))
	assert.Equal(t, []string{"structure", "window"}, f.config.GetStringSlice(config.KeyChunkStrategies))

	out, err := execute(t, "config", "get", config.KeyChunkStrategies)
	require.NoError(t, err)
	assert.Contains(t, out, "structure,window")

	out, err = execute(t, "config", "get")
	require.NoError(t, err)
	assert.Contains(t, out, "chunking.chunk_size = 800")
}

func TestConfigSet_Invalid(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "config", "set", "nope.key", "1")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = execute(t, "config", "set", config.KeyChunkSize, "big")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestConfigGet_Unset(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "config", "get", config.KeyEmbedModel)

	assert.ErrorContains(t, err, "is not set")
}

func TestConfigGet_MasksSecret(t *testing.T) {
	f := setupTestServices(t)
	require.NoError(t, f.config.Set(config.KeyEmbedAPIKey, "sk-1234567890abcdef"))

	out, err := execute(t, "config", "get")

	require.NoError(t, err)
	assert.Contains(t, out, "sk-1...cdef")
	assert.NotContains(t, out, "1234567890")
}

func TestConfigSetKey_FromInput(t *testing.T) {
	f := setupTestServices(t)

	out, err := executeWithInput(t, "sk-abcdefghijkl\n", "config", "set-key")

	require.NoError(t, err)
	assert.Equal(t, "sk-abcdefghijkl", f.config.GetString(config.KeyEmbedAPIKey))
	assert.Contains(t, out, "sk-a...ijkl")
}

func TestConfigSetKey_Empty(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "config", "set-key")

	assert.ErrorContains(t, err, "no key entered")
}

func TestConfigCheck(t *testing.T) {
	f := setupTestServices(t)
	v := &stubValidator{}
	aiValidator = v
	t.Cleanup(func() { aiValidator = nil })

	out, err := execute(t, "config", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid.")
	assert.Contains(t, out, "Embedding provider ollama is reachable.")
	assert.Equal(t, 1, v.calls)

	v.err = errors.New("connection refused")
	_, err = execute(t, "config", "check")
	assert.ErrorContains(t, err, "connection refused")

	require.NoError(t, f.config.Set(config.KeyChunkOverlap, 5000))
	_, err = execute(t, "config", "check")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "abcd...mnop", maskAPIKey("abcdefghijklmnop"))
}
