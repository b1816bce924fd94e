// Command docrag ingests local documents and retrieves passages from them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docrag/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/docrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/docrag/internal/app"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

func main() {
	// A .env file is optional; provider keys usually come from the shell.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.Execute(ctx, cli.Runtime{
		Boot:       boot,
		OpenConfig: openConfig,
		Validator:  ai.NewConfigValidator(),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func boot(verbose bool) (*cli.Services, func() error, error) {
	a, err := app.Open(app.Options{Verbose: verbose})
	if err != nil {
		return nil, nil, err
	}
	return &cli.Services{
		Repository: a.Repository,
		Retrieval:  a.Retrieval,
		Ingestion:  a.Ingestion,
		Config:     a.Config,
		Validator:  a.Validator,
		Logger:     a.Log,
	}, a.Close, nil
}

func openConfig() (driven.ConfigStore, error) {
	return configfile.NewConfigStore("")
}
