package chunking

import (
	"github.com/custodia-labs/docrag/internal/chunking/paragraph"
	"github.com/custodia-labs/docrag/internal/chunking/structure"
	"github.com/custodia-labs/docrag/internal/chunking/window"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// RegisterDefaults registers all built-in strategies with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(domain.StrategyWindow, buildWindow)
	r.Register(domain.StrategyStructure, buildStructure)
	r.Register(domain.StrategyParagraph, buildParagraph)
}

// NewEngine builds an engine over the built-in strategies.
func NewEngine(settings domain.ChunkingSettings) (*Engine, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	return r.NewEngine(settings)
}

func buildWindow(s domain.ChunkingSettings) (driven.ChunkingStrategy, error) {
	return window.New(s.ChunkSize, s.Overlap)
}

func buildStructure(s domain.ChunkingSettings) (driven.ChunkingStrategy, error) {
	return structure.New(s.ChunkSize, s.Overlap)
}

func buildParagraph(s domain.ChunkingSettings) (driven.ChunkingStrategy, error) {
	return paragraph.New(s.ChunkSize, s.Overlap)
}
