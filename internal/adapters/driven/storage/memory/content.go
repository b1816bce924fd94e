package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure ContentStore implements the interface.
var _ driven.ContentStore = (*ContentStore)(nil)

// ContentStore is an in-memory implementation of driven.ContentStore.
type ContentStore struct {
	faults
	mu    sync.RWMutex
	texts map[string]string
}

// NewContentStore creates a new in-memory content store.
func NewContentStore() *ContentStore {
	return &ContentStore{
		texts: make(map[string]string),
	}
}

// LoadContent returns the text for id, or domain.ErrNotFound.
func (s *ContentStore) LoadContent(_ context.Context, id string) (string, error) {
	if err := s.check(OpLoad); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.texts[id]
	if !ok {
		return "", fmt.Errorf("content %s: %w", id, domain.ErrNotFound)
	}
	return text, nil
}

// SaveContent stores the text for id.
func (s *ContentStore) SaveContent(_ context.Context, id, text string) error {
	if err := s.check(OpSave); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts[id] = text
	return nil
}

// DeleteContent removes the text for id.
func (s *ContentStore) DeleteContent(_ context.Context, id string) error {
	if err := s.check(OpDelete); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.texts, id)
	return nil
}

// Has reports whether text is stored for id.
func (s *ContentStore) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.texts[id]
	return ok
}
