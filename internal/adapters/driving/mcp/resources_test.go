package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{"valid URI", "docrag://documents/doc-123", "doc-123"},
		{"uuid", "docrag://documents/4b0c1f7e-9a52-4c55-8f9c-0c3c2a1d7e10", "4b0c1f7e-9a52-4c55-8f9c-0c3c2a1d7e10"},
		{"wrong scheme", "other://documents/doc-123", ""},
		{"wrong path", "docrag://sources/doc-123", ""},
		{"nested path", "docrag://documents/doc-123/chunks", ""},
		{"empty id", "docrag://documents/", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractDocumentID(tt.uri))
		})
	}
}

func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil repository returns empty list", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docrag://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	})

	t.Run("returns summaries as JSON", func(t *testing.T) {
		repo := &mockRepository{documents: []domain.Document{{ID: "a", Name: "a.md"}}}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Repository: repo})
		require.NoError(t, err)

		result, err := server.handleDocumentsResource(ctx, makeReadResourceRequest("docrag://documents"))
		require.NoError(t, err)

		var docs []DocumentOutput
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &docs))
		require.Len(t, docs, 1)
		assert.Equal(t, "a.md", docs[0].Name)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := &mockRepository{err: errors.New("boom")}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Repository: repo})
		require.NoError(t, err)

		_, err = server.handleDocumentsResource(ctx, makeReadResourceRequest("docrag://documents"))
		assert.ErrorContains(t, err, "listing documents")
	})
}

func TestServer_handleDocumentContentResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil repository returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		_, err = server.handleDocumentContentResource(ctx, makeReadResourceRequest("docrag://documents/doc-123"))
		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Repository: &mockRepository{}})
		require.NoError(t, err)

		_, err = server.handleDocumentContentResource(ctx, makeReadResourceRequest("docrag://invalid/uri"))
		require.Error(t, err)
	})

	t.Run("unknown document returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Repository: &mockRepository{}})
		require.NoError(t, err)

		_, err = server.handleDocumentContentResource(ctx, makeReadResourceRequest("docrag://documents/ghost"))
		require.Error(t, err)
	})

	t.Run("returns content successfully", func(t *testing.T) {
		repo := &mockRepository{full: &domain.Document{
			ID:            "doc-123",
			Content:       "# Hello World\n\nThis is the document content.",
			ContentLoaded: true,
		}}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Repository: repo})
		require.NoError(t, err)

		result, err := server.handleDocumentContentResource(ctx, makeReadResourceRequest("docrag://documents/doc-123"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "# Hello World\n\nThis is the document content.", result.Contents[0].Text)
		assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
	})

	t.Run("returns error on load failure", func(t *testing.T) {
		repo := &mockRepository{err: errors.New("content unreadable")}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Repository: repo})
		require.NoError(t, err)

		_, err = server.handleDocumentContentResource(ctx, makeReadResourceRequest("docrag://documents/doc-123"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading document content")
	})
}
