package driven

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// MetadataStore persists document bookkeeping records.
type MetadataStore interface {
	// LoadAll returns every record keyed by document id.
	LoadAll(ctx context.Context) (map[string]domain.DocumentMetadata, error)

	// SaveAll replaces the full set of records.
	SaveAll(ctx context.Context, all map[string]domain.DocumentMetadata) error

	// GetByID returns the record for id, or nil when absent.
	GetByID(ctx context.Context, id string) (*domain.DocumentMetadata, error)

	// Save creates or replaces a single record.
	Save(ctx context.Context, meta domain.DocumentMetadata) error

	// Delete removes the record for id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
}
