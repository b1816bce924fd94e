package mcp

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve_chunks tool.
type RetrieveInput struct {
	Query        string   `json:"query" jsonschema:"the question or text to find relevant passages for"`
	DocumentIDs  []string `json:"document_ids,omitempty" jsonschema:"restrict the search to these document ids"`
	MaxResults   int      `json:"max_results,omitempty" jsonschema:"maximum number of chunks to return"`
	SelectedOnly bool     `json:"selected_only,omitempty" jsonschema:"search only documents marked as selected"`
}

// RetrieveOutput is the output schema for the retrieve_chunks tool.
type RetrieveOutput struct {
	Chunks []ChunkOutput `json:"chunks"`
	Count  int           `json:"count"`
}

// ChunkOutput represents a single retrieved chunk.
type ChunkOutput struct {
	ChunkID     string  `json:"chunk_id"`
	DocumentID  string  `json:"document_id"`
	Source      string  `json:"source"`
	SectionPath string  `json:"section_path,omitempty"`
	Content     string  `json:"content"`
	Score       float64 `json:"score"`
}

// ListDocumentsInput is the input schema for the list_documents tool.
type ListDocumentsInput struct {
	SelectedOnly bool `json:"selected_only,omitempty" jsonschema:"list only documents marked as selected"`
}

// ListDocumentsOutput is the output schema for the list_documents tool.
type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput is a document summary.
type DocumentOutput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SourcePath  string `json:"source_path"`
	IsSelected  bool   `json:"is_selected"`
	IsProcessed bool   `json:"is_processed"`
	ChunkCount  int    `json:"chunk_count"`
	AddedAt     string `json:"added_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve_chunks",
		Description: "Find the document passages most relevant to a query, best match first",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List the documents available for retrieval",
	}, s.handleListDocuments)
}

// handleRetrieve handles the retrieve_chunks tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, RetrieveOutput{}, errors.New("query is required")
	}

	var (
		results []domain.SimilarityResult
		err     error
	)
	if input.SelectedOnly && len(input.DocumentIDs) == 0 {
		results, err = s.ports.Retrieval.RetrieveFromSelected(ctx, input.Query, input.MaxResults)
	} else {
		results, err = s.ports.Retrieval.RetrieveRelevantChunks(ctx, input.Query, input.DocumentIDs, input.MaxResults)
	}
	if err != nil {
		s.log.Error("retrieve_chunks failed", "error", err)
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Chunks: make([]ChunkOutput, len(results)),
		Count:  len(results),
	}
	for i := range results {
		c := &results[i].Chunk
		output.Chunks[i] = ChunkOutput{
			ChunkID:     c.ID,
			DocumentID:  c.DocumentID,
			Source:      c.Source,
			SectionPath: c.SectionPath,
			Content:     c.Content,
			Score:       results[i].Score,
		}
	}
	return nil, output, nil
}

// handleListDocuments handles the list_documents tool invocation.
func (s *Server) handleListDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListDocumentsInput,
) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	output := ListDocumentsOutput{Documents: []DocumentOutput{}}
	if s.ports.Repository == nil {
		return nil, output, nil
	}

	docs, err := s.ports.Repository.GetAllDocuments(ctx)
	if err != nil {
		s.log.Error("list_documents failed", "error", err)
		return nil, ListDocumentsOutput{}, err
	}
	for i := range docs {
		if input.SelectedOnly && !docs[i].IsSelected {
			continue
		}
		output.Documents = append(output.Documents, toDocumentOutput(&docs[i]))
	}
	output.Count = len(output.Documents)
	return nil, output, nil
}

func toDocumentOutput(d *domain.Document) DocumentOutput {
	return DocumentOutput{
		ID:          d.ID,
		Name:        d.Name,
		SourcePath:  d.SourcePath,
		IsSelected:  d.IsSelected,
		IsProcessed: d.IsProcessed,
		ChunkCount:  d.ChunkCount,
		AddedAt:     d.AddedAt.UTC().Format(time.RFC3339),
	}
}
