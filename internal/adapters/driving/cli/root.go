// Package cli provides the docrag command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by the composition root.
var (
	repository       driving.DocumentRepository
	retrievalService driving.RetrievalService
	ingestionService driving.IngestionService
	configStore      driven.ConfigStore
	aiValidator      driven.AIConfigValidator
	appLogger        logger.Logger = logger.Discard()
)

// Services carries the dependencies commands run against.
type Services struct {
	Repository driving.DocumentRepository
	Retrieval  driving.RetrievalService
	Ingestion  driving.IngestionService
	Config     driven.ConfigStore
	Validator  driven.AIConfigValidator
	Logger     logger.Logger
}

// Bootstrap builds the services once flags are parsed.
// The returned cleanup runs after the command finishes.
type Bootstrap func(verbose bool) (*Services, func() error, error)

// Runtime supplies the lazily built dependencies of Execute.
type Runtime struct {
	// Boot builds the engine for commands that need it.
	Boot Bootstrap

	// OpenConfig opens the config store without building the engine,
	// so config commands work even when the stored config is invalid.
	OpenConfig func() (driven.ConfigStore, error)

	// Validator checks embedding settings for config check.
	Validator driven.AIConfigValidator
}

var (
	verbose    bool
	bootstrap  Bootstrap
	openConfig func() (driven.ConfigStore, error)
	cleanup    func() error
)

// skipBootstrap marks commands that run without services.
const skipBootstrap = "skip-bootstrap"

var rootCmd = &cobra.Command{
	Use:   "docrag",
	Short: "Local retrieval over your documents",
	Long: `docrag ingests local documents, splits them into chunks, embeds them
and answers similarity queries from an embedded vector database.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: runBootstrap,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices injects services directly, bypassing Bootstrap.
func SetServices(s *Services) {
	repository = s.Repository
	retrievalService = s.Retrieval
	ingestionService = s.Ingestion
	configStore = s.Config
	aiValidator = s.Validator
	if s.Logger != nil {
		appLogger = s.Logger
	} else {
		appLogger = logger.Discard()
	}
}

// Execute runs the root command. rt.Boot is called before any command
// that needs services unless they were set with SetServices.
func Execute(ctx context.Context, rt Runtime) error {
	bootstrap = rt.Boot
	openConfig = rt.OpenConfig
	if rt.Validator != nil {
		aiValidator = rt.Validator
	}
	defer func() {
		bootstrap, openConfig = nil, nil
		if cleanup != nil {
			if err := cleanup(); err != nil {
				appLogger.Warn("cleanup failed", "error", err)
			}
			cleanup = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipBootstrap] == "true" {
			return nil
		}
	}
	if bootstrap == nil || repository != nil {
		return nil
	}
	s, done, err := bootstrap(verbose)
	if err != nil {
		return err
	}
	SetServices(s)
	cleanup = done
	return nil
}

// notFound formats a missing-document error that still matches domain.ErrNotFound.
func notFound(id string) error {
	return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
}

var (
	errNoRepository = errors.New("document repository not configured")
	errNoRetrieval  = errors.New("retrieval service not configured")
	errNoIngestion  = errors.New("ingestion service not configured")
	errNoConfig     = errors.New("config store not configured")
)
