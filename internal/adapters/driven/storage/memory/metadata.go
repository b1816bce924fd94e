package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Ensure MetadataStore implements the interface.
var _ driven.MetadataStore = (*MetadataStore)(nil)

// MetadataStore is an in-memory implementation of driven.MetadataStore.
type MetadataStore struct {
	faults
	mu      sync.RWMutex
	records map[string]domain.DocumentMetadata
}

// NewMetadataStore creates a new in-memory metadata store.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{
		records: make(map[string]domain.DocumentMetadata),
	}
}

// LoadAll returns a copy of every record.
func (s *MetadataStore) LoadAll(_ context.Context) (map[string]domain.DocumentMetadata, error) {
	if err := s.check(OpLoadAll); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.DocumentMetadata, len(s.records))
	for id, m := range s.records {
		out[id] = m
	}
	return out, nil
}

// SaveAll replaces every record.
func (s *MetadataStore) SaveAll(_ context.Context, all map[string]domain.DocumentMetadata) error {
	if err := s.check(OpSaveAll); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]domain.DocumentMetadata, len(all))
	for id, m := range all {
		s.records[id] = m
	}
	return nil
}

// GetByID returns the record for id, or nil when absent.
func (s *MetadataStore) GetByID(_ context.Context, id string) (*domain.DocumentMetadata, error) {
	if err := s.check(OpGet); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

// Save creates or replaces a record.
func (s *MetadataStore) Save(_ context.Context, meta domain.DocumentMetadata) error {
	if err := s.check(OpSave); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[meta.ID] = meta
	return nil
}

// Delete removes a record.
func (s *MetadataStore) Delete(_ context.Context, id string) error {
	if err := s.check(OpDelete); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}
