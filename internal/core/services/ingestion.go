package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/logger"
	"github.com/custodia-labs/docrag/internal/pathfilter"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// embedBatchSize bounds the texts sent in one embedding request.
const embedBatchSize = 32

// IngestionService extracts, chunks, embeds and saves documents.
type IngestionService struct {
	processors driven.ProcessorRegistry
	chunker    driven.Chunker
	embedding  driven.EmbeddingService
	repo       driving.DocumentRepository
	log        logger.Logger
	newID      func() string
}

// NewIngestionService creates an ingestion service.
func NewIngestionService(
	processors driven.ProcessorRegistry,
	chunker driven.Chunker,
	embedding driven.EmbeddingService,
	repo driving.DocumentRepository,
	log logger.Logger,
) *IngestionService {
	if log == nil {
		log = logger.Discard()
	}
	return &IngestionService{
		processors: processors,
		chunker:    chunker,
		embedding:  embedding,
		repo:       repo,
		log:        log.With("component", "ingestion"),
		newID:      uuid.NewString,
	}
}

// IngestFile creates a new document from the file at path.
func (s *IngestionService) IngestFile(ctx context.Context, path string) (*domain.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	doc := &domain.Document{
		ID:         s.newID(),
		Name:       filepath.Base(abs),
		SourcePath: abs,
	}
	if err := s.build(ctx, doc); err != nil {
		return nil, err
	}
	if err := s.repo.SaveDocument(ctx, doc); err != nil {
		return nil, err
	}

	s.log.Info("document ingested", "document_id", doc.ID, "path", abs, "chunks", len(doc.Chunks))
	return doc, nil
}

// ReprocessDocument rebuilds the content and chunks of id from its source file.
func (s *IngestionService) ReprocessDocument(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := s.repo.GetDocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	if err := s.build(ctx, doc); err != nil {
		return nil, err
	}
	if err := s.repo.SaveDocument(ctx, doc); err != nil {
		return nil, err
	}

	s.log.Info("document reprocessed", "document_id", doc.ID, "chunks", len(doc.Chunks))
	return doc, nil
}

// SyncFile reprocesses the document ingested from path, or ingests it.
func (s *IngestionService) SyncFile(ctx context.Context, path string) (*domain.Document, error) {
	matches, err := s.bySourcePath(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return s.IngestFile(ctx, path)
	}
	return s.ReprocessDocument(ctx, matches[0].ID)
}

// RemoveBySourcePath deletes every document ingested from path.
func (s *IngestionService) RemoveBySourcePath(ctx context.Context, path string) (int, error) {
	matches, err := s.bySourcePath(ctx, path)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, doc := range matches {
		if err := s.repo.DeleteDocument(ctx, doc.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// IngestDirectory walks root and syncs every matching, supported file.
// Failures are collected per file and do not stop the walk.
func (s *IngestionService) IngestDirectory(ctx context.Context, root string, include, exclude []string) (*driving.IngestReport, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	filter, err := pathfilter.New(abs, include, exclude)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	report := &driving.IngestReport{Failed: make(map[string]error)}
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			report.Failed[path] = walkErr
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if filter.SkipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !filter.Match(path) {
			return nil
		}

		doc, err := s.SyncFile(ctx, path)
		switch {
		case errors.Is(err, domain.ErrUnsupportedType):
			report.Skipped++
		case err != nil:
			s.log.Warn("ingest failed", "path", path, "error", err)
			report.Failed[path] = err
		default:
			report.Ingested = append(report.Ingested, *doc)
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("walking %s: %w", abs, err)
	}

	s.log.Info("directory ingested", "root", abs,
		"ingested", len(report.Ingested), "skipped", report.Skipped, "failed", len(report.Failed))
	return report, nil
}

// build fills Content, Chunks and Extra of doc from doc.SourcePath.
func (s *IngestionService) build(ctx context.Context, doc *domain.Document) error {
	if s.embedding == nil {
		return fmt.Errorf("%w: not configured", domain.ErrEmbeddingUnavailable)
	}

	proc, err := s.processors.ProcessorFor(doc.SourcePath)
	if err != nil {
		return err
	}

	text, err := proc.ExtractText(ctx, doc.SourcePath)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", doc.SourcePath, err)
	}

	var structured *domain.StructuredDocument
	ext := strings.ToLower(filepath.Ext(doc.SourcePath))
	if proc.SupportsStructuredExtraction(ext) {
		structured, err = proc.ExtractStructuredContent(ctx, doc.SourcePath)
		if err != nil {
			// Plain-text chunking still works without structure.
			s.log.Warn("structured extraction failed", "path", doc.SourcePath, "error", err)
			structured = nil
		}
	}

	chunks, err := s.chunker.Chunk(ctx, &domain.Document{ID: doc.ID, Name: doc.Name, Content: text}, structured)
	if err != nil {
		return fmt.Errorf("chunking %s: %w", doc.SourcePath, err)
	}
	if err := s.embedChunks(ctx, chunks); err != nil {
		return err
	}

	if doc.Extra == nil {
		doc.Extra = make(map[string]string)
	}
	doc.Extra["processor"] = proc.Name()
	if structured != nil && structured.Title != "" {
		doc.Extra["title"] = structured.Title
	}
	doc.Content = text
	doc.Chunks = chunks
	return nil
}

func (s *IngestionService) embedChunks(ctx context.Context, chunks []domain.DocumentChunk) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Content)
		}

		vectors, err := s.embedding.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("%w: got %d embeddings for %d texts",
				domain.ErrEmbeddingUnavailable, len(vectors), len(texts))
		}
		for i, v := range vectors {
			chunks[start+i].Embedding = v
		}
	}
	return nil
}

func (s *IngestionService) bySourcePath(ctx context.Context, path string) ([]domain.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	docs, err := s.repo.GetAllDocuments(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.Document
	for _, d := range docs {
		if d.SourcePath == abs {
			out = append(out, d)
		}
	}
	return out, nil
}
