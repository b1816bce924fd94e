package domain

import "time"

// Chunking strategy names, in default priority order.
const (
	StrategyStructure = "structure"
	StrategyParagraph = "paragraph"
	StrategyWindow    = "window"
)

// Defaults used when the configuration leaves a value unset.
const (
	DefaultChunkSize         = 1000
	DefaultChunkOverlap      = 200
	DefaultMinScore          = 0.3
	DefaultCandidateLimit    = 50
	DefaultMaxResults        = 5
	DefaultCandidateFactor   = 4
	DefaultEmbeddingCache    = 256
	DefaultEmbeddingProvider = AIProviderOllama
)

// DefaultStrategies is the default chunking priority list.
func DefaultStrategies() []string {
	return []string{StrategyStructure, StrategyParagraph, StrategyWindow}
}

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available embedding providers.
const (
	AIProviderOllama AIProvider = "ollama"
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI
}

// RequiresAPIKey returns true for cloud providers.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// ChunkingSettings configures the chunking engine.
type ChunkingSettings struct {
	ChunkSize  int      `validate:"gt=0"`
	Overlap    int      `validate:"gte=0,ltfield=ChunkSize"`
	Strategies []string `validate:"dive,oneof=structure paragraph window"`
}

// RetrievalSettings configures the retrieval service.
type RetrievalSettings struct {
	// MinScore drops results below this cosine similarity.
	MinScore float64 `validate:"gte=-1,lte=1"`

	// CandidateLimit is the minimum number of candidates pulled from the vector store.
	CandidateLimit int `validate:"gt=0"`

	// CandidateFactor scales maxResults into a candidate limit when it exceeds CandidateLimit.
	CandidateFactor int `validate:"gt=0"`

	// DefaultMaxResults applies when callers pass maxResults <= 0.
	DefaultMaxResults int `validate:"gt=0"`
}

// EmbeddingSettings configures the embedding service.
type EmbeddingSettings struct {
	Provider          AIProvider
	Model             string
	BaseURL           string
	APIKey            string
	Dimensions        int     `validate:"gte=0"`
	Timeout           time.Duration
	CacheSize         int     `validate:"gte=0"`
	RequestsPerSecond float64 `validate:"gte=0"`
	MaxRetries        int     `validate:"gte=0"`
}

// IsConfigured reports whether the settings can build a service.
func (s *EmbeddingSettings) IsConfigured() bool {
	if !s.Provider.IsValid() {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}

// StorageSettings locates the persisted stores.
type StorageSettings struct {
	DataDir string
}

// Settings is the full engine configuration.
type Settings struct {
	Chunking  ChunkingSettings
	Retrieval RetrievalSettings
	Embedding EmbeddingSettings
	Storage   StorageSettings
	LogLevel  string
}

// DefaultSettings returns settings populated with defaults.
func DefaultSettings() Settings {
	return Settings{
		Chunking: ChunkingSettings{
			ChunkSize:  DefaultChunkSize,
			Overlap:    DefaultChunkOverlap,
			Strategies: DefaultStrategies(),
		},
		Retrieval: RetrievalSettings{
			MinScore:          DefaultMinScore,
			CandidateLimit:    DefaultCandidateLimit,
			CandidateFactor:   DefaultCandidateFactor,
			DefaultMaxResults: DefaultMaxResults,
		},
		Embedding: EmbeddingSettings{
			Provider:  DefaultEmbeddingProvider,
			CacheSize: DefaultEmbeddingCache,
		},
		LogLevel: "info",
	}
}
