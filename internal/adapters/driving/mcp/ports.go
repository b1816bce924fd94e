package mcp

import (
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/logger"
)

// Ports holds what the MCP server calls into.
type Ports struct {
	// Retrieval ranks chunks against a query.
	Retrieval driving.RetrievalService

	// Repository lists documents and loads their content. Optional.
	Repository driving.DocumentRepository

	// Logger receives request failures. Optional.
	Logger logger.Logger
}

// Validate reports a missing required port.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
