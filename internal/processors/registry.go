package processors

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/processors/html"
	"github.com/custodia-labs/docrag/internal/processors/markdown"
	"github.com/custodia-labs/docrag/internal/processors/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.ProcessorRegistry = (*Registry)(nil)

// Registry holds processors in priority order.
type Registry struct {
	mu         sync.RWMutex
	processors []driven.DocumentProcessor
	detect     func(path string) (*mimetype.MIME, error)
}

// NewRegistry creates a registry trying processors in the given order.
func NewRegistry(processors ...driven.DocumentProcessor) *Registry {
	return &Registry{
		processors: processors,
		detect:     mimetype.DetectFile,
	}
}

// Default returns the registry with markdown, html and plaintext, in that order.
func Default() *Registry {
	return NewRegistry(markdown.New(), html.New(), plaintext.New())
}

// Register appends p with the lowest priority.
func (r *Registry) Register(p driven.DocumentProcessor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors = append(r.processors, p)
}

// ProcessorFor returns the first processor claiming the extension of path.
// Files with an unknown extension are sniffed and matched by MIME type,
// walking up the detected type's parents.
func (r *Registry) ProcessorFor(path string) (driven.DocumentProcessor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" {
		for _, p := range r.processors {
			if contains(p.SupportedExtensions(), ext) {
				return p, nil
			}
		}
	}

	mt, err := r.detect(path)
	if err != nil {
		return nil, fmt.Errorf("detecting type of %s: %w", path, err)
	}
	for m := mt; m != nil; m = m.Parent() {
		for _, p := range r.processors {
			for _, supported := range p.SupportedMIMETypes() {
				if m.Is(supported) {
					return p, nil
				}
			}
		}
	}
	return nil, fmt.Errorf("%w: %s (%s)", domain.ErrUnsupportedType, filepath.Base(path), mt.String())
}

// SupportedExtensions returns every extension some processor claims, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, p := range r.processors {
		for _, ext := range p.SupportedExtensions() {
			if !seen[ext] {
				seen[ext] = true
				out = append(out, ext)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Names returns processor names in priority order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.processors))
	for i, p := range r.processors {
		names[i] = p.Name()
	}
	return names
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
