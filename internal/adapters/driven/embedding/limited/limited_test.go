package limited

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct{ calls int }

func (s *stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	s.calls++
	return []float32{1}, nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	return make([][]float32, len(texts)), nil
}

func (s *stubEmbedder) Dimensions() int            { return 1 }
func (s *stubEmbedder) ModelName() string          { return "stub" }
func (s *stubEmbedder) Ping(context.Context) error { return nil }
func (s *stubEmbedder) Close() error               { return nil }

func TestEmbed_WithinBurstDoesNotWait(t *testing.T) {
	inner := &stubEmbedder{}
	svc := New(inner, 1, 3)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := svc.Embed(ctx, "x")
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, 3, inner.calls)
}

func TestEmbedBatch_CancelledWhileWaiting(t *testing.T) {
	inner := &stubEmbedder{}
	svc := New(inner, 0.1, 1)

	_, err := svc.EmbedBatch(context.Background(), []string{"a"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.EmbedBatch(ctx, []string{"b"})

	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestNew_ClampsBurst(t *testing.T) {
	svc := New(&stubEmbedder{}, 5, 0)
	_, err := svc.Embed(context.Background(), "x")
	assert.NoError(t, err)
}

func TestDelegates(t *testing.T) {
	svc := New(&stubEmbedder{}, 5, 1)
	assert.Equal(t, 1, svc.Dimensions())
	assert.Equal(t, "stub", svc.ModelName())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}
