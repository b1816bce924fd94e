// Package ollama provides an embedding service adapter using Ollama.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/docrag/internal/adapters/driven/embedding/httpjson"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 2
)

// Config holds configuration for the Ollama embedding service.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the embedding model to use (default: nomic-embed-text).
	Model string

	// Timeout bounds each HTTP request (default: 30s).
	Timeout time.Duration

	// Dimensions is the expected vector size. Zero learns it from the first response.
	Dimensions int

	// MaxRetries for transient failures (default: 2).
	MaxRetries int

	// Backoff is the first retry delay.
	Backoff time.Duration
}

// EmbeddingService generates embeddings using Ollama's /api/embed endpoint.
type EmbeddingService struct {
	http       *httpjson.Client
	baseURL    string
	model      string
	dimensions atomic.Int64
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// NewEmbeddingService creates a new Ollama embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	s := &EmbeddingService{
		http: &httpjson.Client{
			HTTP:       &http.Client{Timeout: cfg.Timeout},
			Provider:   "ollama",
			MaxRetries: uint64(cfg.MaxRetries),
			Backoff:    cfg.Backoff,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}
	s.dimensions.Store(int64(cfg.Dimensions))
	return s
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in a single request.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var resp embedResponse
	err := s.http.Do(ctx, http.MethodPost, s.baseURL+"/api/embed", embedRequest{Model: s.model, Input: texts}, &resp)
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embed: got %d embeddings for %d inputs", len(resp.Embeddings), len(texts))
	}

	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if err := s.checkDimensions(len(e)); err != nil {
			return nil, err
		}
		out[i] = toFloat32(e)
	}
	return out, nil
}

// checkDimensions records the first vector size and rejects later deviations.
func (s *EmbeddingService) checkDimensions(n int) error {
	if n == 0 {
		return fmt.Errorf("ollama embed: empty embedding")
	}
	if s.dimensions.CompareAndSwap(0, int64(n)) {
		return nil
	}
	if want := s.dimensions.Load(); int64(n) != want {
		return fmt.Errorf("ollama embed: model %s returned %d dimensions, expected %d", s.model, n, want)
	}
	return nil
}

// Dimensions returns the vector size, or 0 before the first response when unconfigured.
func (s *EmbeddingService) Dimensions() int {
	return int(s.dimensions.Load())
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping checks that the server is up and the model is pulled.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := s.http.Do(ctx, http.MethodGet, s.baseURL+"/api/tags", nil, &tags); err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	for _, m := range tags.Models {
		if m.Name == s.model || strings.TrimSuffix(m.Name, ":latest") == s.model {
			return nil
		}
	}
	return fmt.Errorf("ollama: model %s is not pulled, run 'ollama pull %s'", s.model, s.model)
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
