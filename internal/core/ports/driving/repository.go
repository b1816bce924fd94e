package driving

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// DocumentRepository keeps the content, chunk set and metadata of a document
// consistent across three independently persisted stores.
//
// Save order: metadata placeholder, content, embeddings, final metadata.
// Delete order: content, embeddings, metadata. A failed step aborts the
// sequence; committed steps are never rolled back, so re-running the same
// operation on the same id is the recovery path.
type DocumentRepository interface {
	// GetAllDocuments returns summaries of every document, oldest first.
	GetAllDocuments(ctx context.Context) ([]domain.Document, error)

	// GetDocumentByID returns a summary, or nil when the id is unknown.
	GetDocumentByID(ctx context.Context, id string) (*domain.Document, error)

	// LoadFullContent returns the document with content and chunk set
	// populated, or nil when the id is unknown.
	LoadFullContent(ctx context.Context, id string) (*domain.Document, error)

	// SaveDocument creates or replaces every facet of doc.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// DeleteDocument removes every facet of the document.
	// Deleting an unknown id is not an error.
	DeleteDocument(ctx context.Context, id string) error

	// GetChunkByID returns the chunk, or nil when absent.
	// With no allowedDocumentIDs the lookup spans every document.
	// Otherwise a chunk owned by a document outside the list is reported as absent.
	GetChunkByID(ctx context.Context, chunkID string, allowedDocumentIDs ...string) (*domain.DocumentChunk, error)

	// SetSelected toggles whether the document is part of the retrieval scope.
	SetSelected(ctx context.Context, id string, selected bool) error

	// SelectedDocumentIDs returns the ids of every selected document.
	SelectedDocumentIDs(ctx context.Context) ([]string, error)
}
