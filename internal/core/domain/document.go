package domain

import (
	"fmt"
	"time"
)

// Document is an ingested document.
//
// A Document read in summary mode carries only the metadata facet;
// Content and Chunks stay unallocated until a full load.
type Document struct {
	// ID is assigned at ingestion and never reused.
	ID string

	// Name is the display name, usually the file name.
	Name string

	// SourcePath is where the document was ingested from.
	SourcePath string

	// IsProcessed reports whether chunking and embedding completed.
	IsProcessed bool

	// IsSelected marks the document as part of the retrieval scope.
	IsSelected bool

	// HasEmbeddings reports whether a chunk set is persisted in the vector store.
	HasEmbeddings bool

	// ChunkCount is the size of the persisted chunk set.
	ChunkCount int

	// AddedAt is when the document was first saved.
	AddedAt time.Time

	// ProcessedAt is when the chunk set was last written.
	ProcessedAt time.Time

	// UpdatedAt is when any facet was last written.
	UpdatedAt time.Time

	// Extra holds free-form metadata (front matter, MIME type, ...).
	Extra map[string]string

	// Content is the full text. Empty unless ContentLoaded.
	Content string

	// Chunks is the chunk set. Nil unless ContentLoaded.
	Chunks []DocumentChunk

	// ContentLoaded reports whether Content and Chunks were loaded.
	ContentLoaded bool
}

// DocumentMetadata is the record persisted by the metadata store.
type DocumentMetadata struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	SourcePath    string            `json:"source_path"`
	IsProcessed   bool              `json:"is_processed"`
	IsSelected    bool              `json:"is_selected"`
	HasEmbeddings bool              `json:"has_embeddings"`
	ChunkCount    int               `json:"chunk_count"`
	AddedAt       time.Time         `json:"added_at"`
	ProcessedAt   time.Time         `json:"processed_at,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Extra         map[string]string `json:"extra,omitempty"`
}

// Metadata returns the metadata facet of the document.
func (d *Document) Metadata() DocumentMetadata {
	return DocumentMetadata{
		ID:            d.ID,
		Name:          d.Name,
		SourcePath:    d.SourcePath,
		IsProcessed:   d.IsProcessed,
		IsSelected:    d.IsSelected,
		HasEmbeddings: d.HasEmbeddings,
		ChunkCount:    d.ChunkCount,
		AddedAt:       d.AddedAt,
		ProcessedAt:   d.ProcessedAt,
		UpdatedAt:     d.UpdatedAt,
		Extra:         copyStrings(d.Extra),
	}
}

// DocumentFromMetadata builds a summary Document from a metadata record.
func DocumentFromMetadata(m DocumentMetadata) Document {
	return Document{
		ID:            m.ID,
		Name:          m.Name,
		SourcePath:    m.SourcePath,
		IsProcessed:   m.IsProcessed,
		IsSelected:    m.IsSelected,
		HasEmbeddings: m.HasEmbeddings,
		ChunkCount:    m.ChunkCount,
		AddedAt:       m.AddedAt,
		ProcessedAt:   m.ProcessedAt,
		UpdatedAt:     m.UpdatedAt,
		Extra:         copyStrings(m.Extra),
	}
}

// DocumentChunk is a retrievable slice of a document.
// Chunks are immutable once created; re-processing replaces the whole set.
type DocumentChunk struct {
	// ID is derived from DocumentID and Position, see ChunkID.
	ID string

	// DocumentID is the owning document (back-reference only).
	DocumentID string

	// Position is the zero-based ordinal within the document.
	Position int

	// Content is the text slice.
	Content string

	// Embedding is the vector for Content.
	Embedding []float32

	// Source is a display label, usually the document name.
	Source string

	// SectionPath is the heading lineage, e.g. "Guide > Install".
	SectionPath string

	// Metadata holds strategy-specific annotations.
	Metadata map[string]string
}

// ChunkID derives the stable identifier of the chunk at position in documentID.
// Re-chunking identical input therefore yields identical ids.
func ChunkID(documentID string, position int) string {
	return fmt.Sprintf("%s#%06d", documentID, position)
}

// Dimension returns the embedding length.
func (c *DocumentChunk) Dimension() int {
	return len(c.Embedding)
}

func copyStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
