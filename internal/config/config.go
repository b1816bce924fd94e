// Package config turns the raw key/value ConfigStore into typed settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Config keys.
//
//nolint:gosec // G101: key names, not credentials.
const (
	KeyChunkSize          = "chunking.chunk_size"
	KeyChunkOverlap       = "chunking.overlap"
	KeyChunkStrategies    = "chunking.strategies"
	KeyMinScore           = "retrieval.min_score"
	KeyCandidateLimit     = "retrieval.candidate_limit"
	KeyCandidateFactor    = "retrieval.candidate_factor"
	KeyDefaultMaxResults  = "retrieval.default_max_results"
	KeyEmbedProvider      = "embedding.provider"
	KeyEmbedModel         = "embedding.model"
	KeyEmbedBaseURL       = "embedding.base_url"
	KeyEmbedAPIKey        = "embedding.api_key"
	KeyEmbedDimensions    = "embedding.dimensions"
	KeyEmbedTimeout       = "embedding.timeout"
	KeyEmbedCacheSize     = "embedding.cache_size"
	KeyEmbedRatePerSecond = "embedding.requests_per_second"
	KeyEmbedMaxRetries    = "embedding.max_retries"
	KeyDataDir            = "storage.data_dir"
	KeyLogLevel           = "log_level"
)

// Environment overrides.
const (
	EnvOpenAIKey = "OPENAI_API_KEY"
	EnvDataDir   = "DOCRAG_DATA_DIR"
)

type kind int

const (
	kindString kind = iota
	kindInt
	kindFloat
	kindList
	kindDuration
)

// keyKinds lists every recognised key with the type it is stored as.
var keyKinds = map[string]kind{
	KeyChunkSize:          kindInt,
	KeyChunkOverlap:       kindInt,
	KeyChunkStrategies:    kindList,
	KeyMinScore:           kindFloat,
	KeyCandidateLimit:     kindInt,
	KeyCandidateFactor:    kindInt,
	KeyDefaultMaxResults:  kindInt,
	KeyEmbedProvider:      kindString,
	KeyEmbedModel:         kindString,
	KeyEmbedBaseURL:       kindString,
	KeyEmbedAPIKey:        kindString,
	KeyEmbedDimensions:    kindInt,
	KeyEmbedTimeout:       kindDuration,
	KeyEmbedCacheSize:     kindInt,
	KeyEmbedRatePerSecond: kindFloat,
	KeyEmbedMaxRetries:    kindInt,
	KeyDataDir:            kindString,
	KeyLogLevel:           kindString,
}

// Loader reads Settings from a ConfigStore.
type Loader struct {
	store    driven.ConfigStore
	getenv   func(string) string
	validate *validator.Validate
}

// NewLoader creates a loader over store that consults the process environment.
func NewLoader(store driven.ConfigStore) *Loader {
	return &Loader{
		store:    store,
		getenv:   os.Getenv,
		validate: validator.New(),
	}
}

// Load returns the effective settings: defaults, then the store, then
// environment overrides. Invalid results fail with domain.ErrInvalidConfig.
func (l *Loader) Load() (domain.Settings, error) {
	s := domain.DefaultSettings()

	s.Chunking.ChunkSize = l.intOr(KeyChunkSize, s.Chunking.ChunkSize)
	s.Chunking.Overlap = l.intOr(KeyChunkOverlap, s.Chunking.Overlap)
	if list := l.store.GetStringSlice(KeyChunkStrategies); len(list) > 0 {
		s.Chunking.Strategies = list
	}

	s.Retrieval.MinScore = l.floatOr(KeyMinScore, s.Retrieval.MinScore)
	s.Retrieval.CandidateLimit = l.intOr(KeyCandidateLimit, s.Retrieval.CandidateLimit)
	s.Retrieval.CandidateFactor = l.intOr(KeyCandidateFactor, s.Retrieval.CandidateFactor)
	s.Retrieval.DefaultMaxResults = l.intOr(KeyDefaultMaxResults, s.Retrieval.DefaultMaxResults)

	if p := l.store.GetString(KeyEmbedProvider); p != "" {
		s.Embedding.Provider = domain.AIProvider(strings.ToLower(p))
	}
	s.Embedding.Model = l.store.GetString(KeyEmbedModel)
	s.Embedding.BaseURL = l.store.GetString(KeyEmbedBaseURL)
	s.Embedding.APIKey = l.store.GetString(KeyEmbedAPIKey)
	s.Embedding.Dimensions = l.intOr(KeyEmbedDimensions, 0)
	s.Embedding.CacheSize = l.intOr(KeyEmbedCacheSize, s.Embedding.CacheSize)
	s.Embedding.RequestsPerSecond = l.floatOr(KeyEmbedRatePerSecond, 0)
	s.Embedding.MaxRetries = l.intOr(KeyEmbedMaxRetries, 0)
	if raw := l.store.GetString(KeyEmbedTimeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return s, fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfig, KeyEmbedTimeout, err)
		}
		s.Embedding.Timeout = d
	}

	s.Storage.DataDir = l.store.GetString(KeyDataDir)
	if lv := l.store.GetString(KeyLogLevel); lv != "" {
		s.LogLevel = lv
	}

	if dir := l.getenv(EnvDataDir); dir != "" {
		s.Storage.DataDir = dir
	}
	if key := l.getenv(EnvOpenAIKey); key != "" && s.Embedding.APIKey == "" {
		s.Embedding.APIKey = key
	}

	if err := l.Validate(s); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks s against its struct constraints.
func (l *Loader) Validate(s domain.Settings) error {
	if err := l.validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed %q", domain.ErrInvalidConfig, verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidConfig, s.Embedding.Provider)
	}
	return nil
}

func (l *Loader) intOr(key string, def int) int {
	if _, ok := l.store.Get(key); !ok {
		return def
	}
	return l.store.GetInt(key)
}

func (l *Loader) floatOr(key string, def float64) float64 {
	if _, ok := l.store.Get(key); !ok {
		return def
	}
	return l.store.GetFloat(key)
}

// Set parses raw into the type registered for key and stores it.
// Unknown keys are rejected.
func Set(store driven.ConfigStore, key, raw string) error {
	k, ok := keyKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown key %q", domain.ErrInvalidConfig, key)
	}
	var value any
	switch k {
	case kindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer", domain.ErrInvalidConfig, key)
		}
		value = n
	case kindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects a number", domain.ErrInvalidConfig, key)
		}
		value = f
	case kindList:
		var list []string
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				list = append(list, item)
			}
		}
		value = list
	case kindDuration:
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("%w: %s expects a duration such as 30s", domain.ErrInvalidConfig, key)
		}
		value = raw
	default:
		value = raw
	}
	return store.Set(key, value)
}

// Keys returns every recognised key.
func Keys() []string {
	out := make([]string, 0, len(keyKinds))
	for k := range keyKinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IsSecret reports whether the value of key should be masked on display.
func IsSecret(key string) bool {
	return key == KeyEmbedAPIKey
}
