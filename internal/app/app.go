// Package app wires the stores, adapters and services into a runnable engine.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/docrag/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/docrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docrag/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/docrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docrag/internal/chunking"
	"github.com/custodia-labs/docrag/internal/config"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/services"
	"github.com/custodia-labs/docrag/internal/logger"
	"github.com/custodia-labs/docrag/internal/processors"
)

// DefaultDirName is the directory under the user's home holding config and data.
const DefaultDirName = ".docrag"

// Options controls how the engine is opened.
type Options struct {
	// ConfigDir holds config.toml. Empty means ~/.docrag.
	ConfigDir string

	// Verbose forces debug logging regardless of log_level.
	Verbose bool

	// LogOutput receives log lines. Nil means stderr.
	LogOutput io.Writer
}

// App holds the wired engine. Close releases the stores.
type App struct {
	Settings   domain.Settings
	Config     driven.ConfigStore
	Log        logger.Logger
	Embedding  driven.EmbeddingService
	Repository *services.DocumentRepository
	Retrieval  *services.RetrievalService
	Ingestion  *services.IngestionService
	Validator  driven.AIConfigValidator

	vectors *sqlite.VectorStore
}

// Open loads configuration and builds every component.
// A missing embedding provider leaves Embedding nil; ingestion and
// retrieval then fail with domain.ErrEmbeddingUnavailable.
func Open(opts Options) (*App, error) {
	store, err := configfile.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	settings, err := config.NewLoader(store).Load()
	if err != nil {
		return nil, err
	}

	level := logger.ParseLevel(settings.LogLevel)
	if opts.Verbose {
		level = logger.DebugLevel
	}
	log := logger.New(logger.Config{Level: level, Output: opts.LogOutput})

	dataDir, err := resolveDataDir(settings.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	settings.Storage.DataDir = dataDir

	vectors, err := sqlite.NewVectorStore(dataDir, settings.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	content, err := file.NewContentStore(dataDir)
	if err != nil {
		_ = vectors.Close()
		return nil, err
	}
	metadata, err := file.NewMetadataStore(dataDir)
	if err != nil {
		_ = vectors.Close()
		return nil, err
	}

	chunker, err := chunking.NewEngine(settings.Chunking)
	if err != nil {
		_ = vectors.Close()
		return nil, err
	}

	embedding, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		_ = vectors.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	if embedding == nil {
		log.Warn("no embedding provider configured", "provider", settings.Embedding.Provider)
	}

	repo := services.NewDocumentRepository(content, vectors, metadata, log)
	a := &App{
		Settings:   settings,
		Config:     store,
		Log:        log,
		Embedding:  embedding,
		Repository: repo,
		Retrieval:  services.NewRetrievalService(vectors, embedding, repo, settings.Retrieval, log),
		Ingestion:  services.NewIngestionService(processors.Default(), chunker, embedding, repo, log),
		Validator:  ai.NewConfigValidator(),
		vectors:    vectors,
	}
	log.Debug("engine opened", "data_dir", dataDir, "config", store.Path())
	return a, nil
}

// Close releases the embedding service and the vector database.
func (a *App) Close() error {
	var errs []error
	if a.Embedding != nil {
		errs = append(errs, a.Embedding.Close())
	}
	if a.vectors != nil {
		errs = append(errs, a.vectors.Close())
	}
	return errors.Join(errs...)
}

func resolveDataDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName), nil
}
