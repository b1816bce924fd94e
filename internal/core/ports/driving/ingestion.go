package driving

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// IngestionService turns files into stored, searchable documents.
type IngestionService interface {
	// IngestFile extracts, chunks, embeds and saves the file at path
	// as a new document.
	IngestFile(ctx context.Context, path string) (*domain.Document, error)

	// ReprocessDocument re-reads the source of an existing document and
	// replaces its content and chunk set.
	ReprocessDocument(ctx context.Context, id string) (*domain.Document, error)

	// IngestDirectory ingests every supported file under root whose
	// slash-separated relative path matches include (all when empty) and none of exclude.
	IngestDirectory(ctx context.Context, root string, include, exclude []string) (*IngestReport, error)

	// SyncFile ingests path, or reprocesses the document already ingested from it.
	SyncFile(ctx context.Context, path string) (*domain.Document, error)

	// RemoveBySourcePath deletes every document ingested from path.
	// Returns the number removed.
	RemoveBySourcePath(ctx context.Context, path string) (int, error)
}

// IngestReport summarises a directory ingest.
type IngestReport struct {
	// Ingested are the documents created or reprocessed.
	Ingested []domain.Document

	// Skipped counts files no processor handles.
	Skipped int

	// Failed maps a path to the error that stopped it.
	Failed map[string]error
}
