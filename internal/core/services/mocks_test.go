package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// mockEmbeddingService is a testify mock of driven.EmbeddingService.
type mockEmbeddingService struct {
	mock.Mock
}

func (m *mockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	v, _ := args.Get(0).([]float32)
	return v, args.Error(1)
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	v, _ := args.Get(0).([][]float32)
	return v, args.Error(1)
}

func (m *mockEmbeddingService) Dimensions() int            { return 2 }
func (m *mockEmbeddingService) ModelName() string          { return "mock" }
func (m *mockEmbeddingService) Ping(context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error               { return nil }

// keywordEmbedder maps text to a 2-d vector: "alpha" -> [1,0], "beta" -> [0,1],
// anything else -> [1,1].
type keywordEmbedder struct {
	calls int
}

func (k *keywordEmbedder) vector(text string) []float32 {
	switch {
	case strings.Contains(text, "alpha"):
		return []float32{1, 0}
	case strings.Contains(text, "beta"):
		return []float32{0, 1}
	default:
		return []float32{1, 1}
	}
}

func (k *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	k.calls++
	return k.vector(text), nil
}

func (k *keywordEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	k.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = k.vector(t)
	}
	return out, nil
}

func (k *keywordEmbedder) Dimensions() int            { return 2 }
func (k *keywordEmbedder) ModelName() string          { return "keyword" }
func (k *keywordEmbedder) Ping(context.Context) error { return nil }
func (k *keywordEmbedder) Close() error               { return nil }

// textProcessor reads files verbatim; .md files also yield one paragraph
// element per non-empty line.
type textProcessor struct{}

func (textProcessor) Name() string                  { return "text" }
func (textProcessor) SupportedExtensions() []string { return []string{".txt", ".md"} }
func (textProcessor) SupportedMIMETypes() []string  { return []string{"text/plain"} }
func (textProcessor) SupportsStructuredExtraction(ext string) bool {
	return ext == ".md"
}

func (textProcessor) ExtractText(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (p textProcessor) ExtractStructuredContent(ctx context.Context, path string) (*domain.StructuredDocument, error) {
	text, err := p.ExtractText(ctx, path)
	if err != nil {
		return nil, err
	}
	sd := &domain.StructuredDocument{Title: "Title of " + filepath.Base(path)}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			sd.Elements = append(sd.Elements, domain.StructuredElement{Type: domain.ElementParagraph, Text: line})
		}
	}
	return sd, nil
}

// extRegistry selects textProcessor for its extensions.
type extRegistry struct{}

func (extRegistry) ProcessorFor(path string) (driven.DocumentProcessor, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range (textProcessor{}).SupportedExtensions() {
		if e == ext {
			return textProcessor{}, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", path, domain.ErrUnsupportedType)
}

func (extRegistry) SupportedExtensions() []string {
	return textProcessor{}.SupportedExtensions()
}

// lineChunker emits one chunk per non-empty line, or one per element when
// structure is present.
type lineChunker struct{}

func (lineChunker) Chunk(_ context.Context, doc *domain.Document, structured *domain.StructuredDocument) ([]domain.DocumentChunk, error) {
	var texts []string
	if structured != nil {
		for _, el := range structured.Elements {
			texts = append(texts, el.Text)
		}
	} else {
		for _, line := range strings.Split(doc.Content, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				texts = append(texts, line)
			}
		}
	}
	chunks := make([]domain.DocumentChunk, len(texts))
	for i, t := range texts {
		chunks[i] = domain.DocumentChunk{
			ID:         domain.ChunkID(doc.ID, i),
			DocumentID: doc.ID,
			Position:   i,
			Content:    t,
			Source:     doc.Name,
		}
	}
	return chunks, nil
}
