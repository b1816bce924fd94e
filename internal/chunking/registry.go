package chunking

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// BuilderFunc creates a strategy from chunking settings.
type BuilderFunc func(settings domain.ChunkingSettings) (driven.ChunkingStrategy, error)

// Registry maps strategy names to their builders.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates an empty strategy registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds a strategy builder to the registry.
// Name should match the strategy's Name() return value.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates a strategy by name.
func (r *Registry) Build(name string, settings domain.ChunkingSettings) (driven.ChunkingStrategy, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown chunking strategy %q", domain.ErrInvalidConfig, name)
	}
	return builder(settings)
}

// Has returns true if a strategy with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns all registered strategy names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewEngine builds an engine from settings using r.
// Strategies run in configured order; the window fallback is appended when missing.
func (r *Registry) NewEngine(settings domain.ChunkingSettings) (*Engine, error) {
	names := settings.Strategies
	if len(names) == 0 {
		names = domain.DefaultStrategies()
	}

	seen := make(map[string]bool, len(names)+1)
	strategies := make([]driven.ChunkingStrategy, 0, len(names)+1)
	for _, name := range append(append([]string{}, names...), domain.StrategyWindow) {
		if seen[name] {
			continue
		}
		seen[name] = true
		s, err := r.Build(name, settings)
		if err != nil {
			return nil, err
		}
		strategies = append(strategies, s)
	}

	return New(strategies...), nil
}
