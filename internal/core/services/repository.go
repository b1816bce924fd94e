package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/logger"
)

// Ensure DocumentRepository implements the interface.
var _ driving.DocumentRepository = (*DocumentRepository)(nil)

// Step names one stage of a cross-store write.
type Step string

// Save runs StepMetadataPlaceholder, StepContent, StepEmbeddings, StepMetadataFinal.
// Delete runs StepContent, StepEmbeddings, StepMetadata.
const (
	StepMetadataPlaceholder Step = "metadata_placeholder"
	StepContent             Step = "content"
	StepEmbeddings          Step = "embeddings"
	StepMetadataFinal       Step = "metadata_final"
	StepMetadata            Step = "metadata"
)

// Repository operation names carried by StepError.
const (
	OpSave   = "save"
	OpDelete = "delete"
)

// StepError reports the step at which a save or delete stopped.
// Steps before it committed and were not rolled back; steps after it never ran.
type StepError struct {
	Op         string
	DocumentID string
	Step       Step
	Err        error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s document %s: %s step: %v", e.Op, e.DocumentID, e.Step, e.Err)
}

// Unwrap returns the store error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// DocumentRepository coordinates the content, vector and metadata stores.
//
// The stores share no transaction. Writes run as a fixed sequence of steps and
// a failing step aborts the rest, so every crash or error leaves one of a few
// known partial states:
//
//	save fails at content:      placeholder metadata only (IsProcessed=false)
//	save fails at embeddings:   placeholder metadata + content, old chunks intact
//	save fails at final:        everything stored, metadata still the placeholder
//	delete fails at content:    nothing changed
//	delete fails at embeddings: content gone, chunks and metadata intact
//	delete fails at metadata:   metadata-only orphan
//
// Re-running the same save or delete is always safe.
type DocumentRepository struct {
	content  driven.ContentStore
	vectors  driven.VectorStore
	metadata driven.MetadataStore
	log      logger.Logger
	locks    *keyedMutex
	now      func() time.Time
}

// NewDocumentRepository creates a repository over the three stores.
// A nil log discards diagnostics.
func NewDocumentRepository(
	content driven.ContentStore,
	vectors driven.VectorStore,
	metadata driven.MetadataStore,
	log logger.Logger,
) *DocumentRepository {
	if log == nil {
		log = logger.Discard()
	}
	return &DocumentRepository{
		content:  content,
		vectors:  vectors,
		metadata: metadata,
		log:      log.With("component", "repository"),
		locks:    newKeyedMutex(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SaveDocument persists every facet of doc, replacing an earlier version.
// On success doc carries the stored bookkeeping fields.
func (r *DocumentRepository) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("%w: document without id", domain.ErrInvalidInput)
	}
	chunks, err := ownedChunks(doc, r.vectors.Dimension())
	if err != nil {
		return err
	}

	unlock := r.locks.Lock(doc.ID)
	defer unlock()

	// Started steps always finish so no store is left half-written.
	ctx = context.WithoutCancel(ctx)
	log := r.log.With("op", OpSave, "document_id", doc.ID)
	now := r.now()

	existing, err := r.metadata.GetByID(ctx, doc.ID)
	if err != nil {
		return r.fail(log, OpSave, doc.ID, StepMetadataPlaceholder, err, false)
	}

	meta := doc.Metadata()
	meta.IsProcessed = false
	meta.HasEmbeddings = false
	meta.ChunkCount = 0
	meta.ProcessedAt = time.Time{}
	meta.UpdatedAt = now
	switch {
	case existing != nil && !existing.AddedAt.IsZero():
		meta.AddedAt = existing.AddedAt
	case meta.AddedAt.IsZero():
		meta.AddedAt = now
	}

	if err := r.metadata.Save(ctx, meta); err != nil {
		return r.fail(log, OpSave, doc.ID, StepMetadataPlaceholder, err, false)
	}

	if err := r.content.SaveContent(ctx, doc.ID, doc.Content); err != nil {
		return r.fail(log, OpSave, doc.ID, StepContent, err, true)
	}

	if err := r.vectors.ReplaceVectors(ctx, doc.ID, chunks); err != nil {
		return r.fail(log, OpSave, doc.ID, StepEmbeddings, err, true)
	}

	meta.IsProcessed = true
	meta.HasEmbeddings = len(chunks) > 0
	meta.ChunkCount = len(chunks)
	meta.ProcessedAt = now
	if err := r.metadata.Save(ctx, meta); err != nil {
		return r.fail(log, OpSave, doc.ID, StepMetadataFinal, err, true)
	}

	doc.IsProcessed = meta.IsProcessed
	doc.HasEmbeddings = meta.HasEmbeddings
	doc.ChunkCount = meta.ChunkCount
	doc.AddedAt = meta.AddedAt
	doc.ProcessedAt = meta.ProcessedAt
	doc.UpdatedAt = meta.UpdatedAt
	doc.Chunks = chunks

	log.Info("document saved", "chunks", len(chunks))
	return nil
}

// ownedChunks validates the chunk set of doc before anything is written.
// Every embedding must have the same length, equal to dim when dim is set.
func ownedChunks(doc *domain.Document, dim int) ([]domain.DocumentChunk, error) {
	chunks := make([]domain.DocumentChunk, len(doc.Chunks))
	copy(chunks, doc.Chunks)
	for i := range chunks {
		c := &chunks[i]
		if c.DocumentID == "" {
			c.DocumentID = doc.ID
		}
		switch {
		case c.DocumentID != doc.ID:
			return nil, fmt.Errorf("%w: chunk %s belongs to document %s, not %s",
				domain.ErrInvalidInput, c.ID, c.DocumentID, doc.ID)
		case c.ID == "":
			return nil, fmt.Errorf("%w: chunk %d of document %s has no id", domain.ErrInvalidInput, i, doc.ID)
		case len(c.Embedding) == 0:
			return nil, fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, c.ID)
		}
		if dim == 0 {
			dim = len(c.Embedding)
		}
		if len(c.Embedding) != dim {
			return nil, fmt.Errorf("%w: chunk %s has %d dimensions, want %d",
				domain.ErrDimensionMismatch, c.ID, len(c.Embedding), dim)
		}
	}
	return chunks, nil
}

// DeleteDocument removes content, then embeddings, then metadata.
// A failing step aborts the rest; an unknown id is not an error.
func (r *DocumentRepository) DeleteDocument(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty document id", domain.ErrInvalidInput)
	}

	unlock := r.locks.Lock(id)
	defer unlock()

	ctx = context.WithoutCancel(ctx)
	log := r.log.With("op", OpDelete, "document_id", id)

	if err := r.content.DeleteContent(ctx, id); err != nil {
		return r.fail(log, OpDelete, id, StepContent, err, true)
	}
	if err := r.vectors.RemoveVectors(ctx, id); err != nil {
		return r.fail(log, OpDelete, id, StepEmbeddings, err, true)
	}
	if err := r.metadata.Delete(ctx, id); err != nil {
		return r.fail(log, OpDelete, id, StepMetadata, err, false)
	}

	log.Info("document deleted")
	return nil
}

// fail logs a step failure and wraps it. Aborting steps log at critical level.
func (r *DocumentRepository) fail(log logger.Logger, op, id string, step Step, err error, critical bool) error {
	kv := []any{"step", string(step), "error", err}
	if critical {
		log.Critical(op+" aborted", kv...)
	} else {
		log.Error(op+" failed", kv...)
	}
	return &StepError{Op: op, DocumentID: id, Step: step, Err: err}
}

// GetAllDocuments returns summaries ordered by AddedAt, then ID.
func (r *DocumentRepository) GetAllDocuments(ctx context.Context) ([]domain.Document, error) {
	all, err := r.metadata.LoadAll(ctx)
	if err != nil {
		r.log.Error("listing documents failed", "op", "list", "error", err)
		return nil, fmt.Errorf("loading metadata: %w", err)
	}

	docs := make([]domain.Document, 0, len(all))
	for _, m := range all {
		docs = append(docs, domain.DocumentFromMetadata(m))
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].AddedAt.Equal(docs[j].AddedAt) {
			return docs[i].AddedAt.Before(docs[j].AddedAt)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs, nil
}

// GetDocumentByID returns a summary, or nil when the id is unknown.
func (r *DocumentRepository) GetDocumentByID(ctx context.Context, id string) (*domain.Document, error) {
	m, err := r.metadata.GetByID(ctx, id)
	if err != nil {
		r.log.Error("reading document failed", "op", "get", "document_id", id, "error", err)
		return nil, fmt.Errorf("loading metadata for %s: %w", id, err)
	}
	if m == nil {
		return nil, nil
	}
	doc := domain.DocumentFromMetadata(*m)
	return &doc, nil
}

// LoadFullContent returns the document with content and chunks, or nil when
// the id is unknown. A document whose save stopped before the content step
// loads with empty content.
func (r *DocumentRepository) LoadFullContent(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := r.GetDocumentByID(ctx, id)
	if err != nil || doc == nil {
		return doc, err
	}
	log := r.log.With("op", "load", "document_id", id)

	text, err := r.content.LoadContent(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		log.Warn("document has metadata but no content")
	case err != nil:
		log.Error("loading content failed", "error", err)
		return nil, fmt.Errorf("loading content for %s: %w", id, err)
	}

	chunks, err := r.vectors.GetChunksByDocument(ctx, id)
	if err != nil {
		log.Error("loading chunks failed", "error", err)
		return nil, fmt.Errorf("loading chunks for %s: %w", id, err)
	}
	if chunks == nil {
		chunks = []domain.DocumentChunk{}
	}
	for i := range chunks {
		if chunks[i].Source == "" {
			chunks[i].Source = doc.Name
		}
	}
	if doc.ChunkCount != len(chunks) {
		log.Warn("chunk count differs from metadata", "metadata", doc.ChunkCount, "stored", len(chunks))
	}

	doc.Content = text
	doc.Chunks = chunks
	doc.ContentLoaded = true
	return doc, nil
}

// GetChunkByID returns the chunk, or nil when absent.
//
// Without allowedDocumentIDs the lookup spans every document. This unscoped
// form is kept for callers that predate selection scoping. With an allow-list,
// a chunk owned by any other document is reported as absent.
func (r *DocumentRepository) GetChunkByID(ctx context.Context, chunkID string, allowedDocumentIDs ...string) (*domain.DocumentChunk, error) {
	chunk, err := r.vectors.GetChunkByID(ctx, chunkID)
	if err != nil {
		r.log.Error("reading chunk failed", "op", "get_chunk", "chunk_id", chunkID, "error", err)
		return nil, fmt.Errorf("loading chunk %s: %w", chunkID, err)
	}
	if chunk == nil || len(allowedDocumentIDs) == 0 {
		return chunk, nil
	}
	for _, id := range allowedDocumentIDs {
		if id == chunk.DocumentID {
			return chunk, nil
		}
	}
	r.log.Debug("chunk outside allow-list", "chunk_id", chunkID, "document_id", chunk.DocumentID)
	return nil, nil
}

// SetSelected updates the selection flag of a document.
func (r *DocumentRepository) SetSelected(ctx context.Context, id string, selected bool) error {
	unlock := r.locks.Lock(id)
	defer unlock()

	ctx = context.WithoutCancel(ctx)
	m, err := r.metadata.GetByID(ctx, id)
	if err != nil {
		r.log.Error("reading document failed", "op", "select", "document_id", id, "error", err)
		return fmt.Errorf("loading metadata for %s: %w", id, err)
	}
	if m == nil {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	if m.IsSelected == selected {
		return nil
	}

	m.IsSelected = selected
	m.UpdatedAt = r.now()
	if err := r.metadata.Save(ctx, *m); err != nil {
		r.log.Error("saving selection failed", "op", "select", "document_id", id, "error", err)
		return fmt.Errorf("saving metadata for %s: %w", id, err)
	}
	r.log.Debug("selection changed", "document_id", id, "selected", selected)
	return nil
}

// SelectedDocumentIDs returns the ids of selected documents, sorted.
func (r *DocumentRepository) SelectedDocumentIDs(ctx context.Context) ([]string, error) {
	all, err := r.metadata.LoadAll(ctx)
	if err != nil {
		r.log.Error("listing documents failed", "op", "selected", "error", err)
		return nil, fmt.Errorf("loading metadata: %w", err)
	}
	ids := make([]string, 0, len(all))
	for id, m := range all {
		if m.IsSelected {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
