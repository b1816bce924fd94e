package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docrag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/similarity"
)

// DatabaseFile is the file name of the vector database inside the data directory.
const DatabaseFile = "vectors.db"

const dimensionKey = "dimension"

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore persists chunks and their embeddings in SQLite.
type VectorStore struct {
	db   *sql.DB
	path string

	// mu serialises writes.
	mu sync.Mutex

	// dim is 0 until fixed by configuration or the first stored batch.
	dim atomic.Int64
}

// NewVectorStore opens or creates the vector database in dataDir.
// If dataDir is empty, defaults to ~/.docrag/vectors.db.
// A positive dimension fixes the embedding length; it must match any
// dimension already recorded in the database.
func NewVectorStore(dataDir string, dimension int) (*VectorStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docrag")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Open database with WAL mode for concurrent readers
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &VectorStore{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	if err := s.initDimension(dimension); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *VectorStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *VectorStore) Path() string {
	return s.path
}

// Dimension returns the embedding length, or 0 while unset.
func (s *VectorStore) Dimension() int {
	return int(s.dim.Load())
}

// migrate runs all pending migrations.
func (s *VectorStore) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_chunks.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *VectorStore) initDimension(dimension int) error {
	stored, err := s.storedDimension(context.Background(), s.db)
	if err != nil {
		return err
	}

	switch {
	case stored > 0 && dimension > 0 && stored != dimension:
		return fmt.Errorf("%w: store holds %d-dimensional vectors, configured %d",
			domain.ErrDimensionMismatch, stored, dimension)
	case stored > 0:
		s.dim.Store(int64(stored))
	case dimension > 0:
		if _, err := s.db.Exec(`INSERT INTO store_meta (key, value) VALUES (?, ?)`,
			dimensionKey, strconv.Itoa(dimension)); err != nil {
			return fmt.Errorf("recording dimension: %w", err)
		}
		s.dim.Store(int64(dimension))
	}
	return nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *VectorStore) storedDimension(ctx context.Context, q querier) (int, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM store_meta WHERE key = ?`, dimensionKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading dimension: %w", err)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parsing dimension %q: %w", value, err)
	}
	return n, nil
}

// AddVectors inserts or replaces chunks keyed by chunk id.
// The whole batch is validated before anything is written.
func (s *VectorStore) AddVectors(ctx context.Context, chunks []domain.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return s.write(ctx, "", chunks)
}

// ReplaceVectors swaps the chunk set of documentID for chunks in one
// transaction. On any error the previous set is left untouched.
func (s *VectorStore) ReplaceVectors(ctx context.Context, documentID string, chunks []domain.DocumentChunk) error {
	if documentID == "" {
		return fmt.Errorf("%w: empty document id", domain.ErrInvalidInput)
	}
	for i := range chunks {
		if chunks[i].DocumentID != documentID {
			return fmt.Errorf("%w: chunk %s belongs to %q, not %q",
				domain.ErrInvalidInput, chunks[i].ID, chunks[i].DocumentID, documentID)
		}
	}
	return s.write(ctx, documentID, chunks)
}

// write stores chunks in one transaction, first dropping the rows of
// replaceDoc when it is set.
func (s *VectorStore) write(ctx context.Context, replaceDoc string, chunks []domain.DocumentChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dim := s.Dimension()
	if dim == 0 && len(chunks) > 0 {
		dim = len(chunks[0].Embedding)
	}
	if err := validateBatch(chunks, dim); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if replaceDoc != "" {
		if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", replaceDoc); err != nil {
			return fmt.Errorf("removing vectors for %s: %w", replaceDoc, err)
		}
	}

	if len(chunks) > 0 {
		if s.Dimension() == 0 {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO store_meta (key, value) VALUES (?, ?)
				ON CONFLICT(key) DO NOTHING
			`, dimensionKey, strconv.Itoa(dim)); err != nil {
				return fmt.Errorf("recording dimension: %w", err)
			}
		}
		if err := insertChunks(ctx, tx, chunks); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	if len(chunks) > 0 {
		s.dim.CompareAndSwap(0, int64(dim))
	}
	return nil
}

func insertChunks(ctx context.Context, tx *sql.Tx, chunks []domain.DocumentChunk) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, position, content, embedding, dimension,
			source, section_path, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			position = excluded.position,
			content = excluded.content,
			embedding = excluded.embedding,
			dimension = excluded.dimension,
			source = excluded.source,
			section_path = excluded.section_path,
			metadata = excluded.metadata
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range chunks {
		c := &chunks[i]
		metadata, err := marshalMetadata(c.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata for chunk %s: %w", c.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.DocumentID, c.Position, c.Content,
			encodeEmbedding(c.Embedding), len(c.Embedding), c.Source, c.SectionPath,
			metadata, now); err != nil {
			return fmt.Errorf("saving chunk %s: %w", c.ID, err)
		}
	}
	return nil
}

func validateBatch(chunks []domain.DocumentChunk, dim int) error {
	for i := range chunks {
		c := &chunks[i]
		switch {
		case c.ID == "":
			return fmt.Errorf("%w: chunk %d has no id", domain.ErrInvalidInput, i)
		case c.DocumentID == "":
			return fmt.Errorf("%w: chunk %s has no document id", domain.ErrInvalidInput, c.ID)
		case len(c.Embedding) == 0:
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, c.ID)
		case len(c.Embedding) != dim:
			return fmt.Errorf("%w: chunk %s has %d dimensions, want %d",
				domain.ErrDimensionMismatch, c.ID, len(c.Embedding), dim)
		}
	}
	return nil
}

// RemoveVectors deletes every chunk owned by documentID.
func (s *VectorStore) RemoveVectors(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("removing vectors for %s: %w", documentID, err)
	}
	return nil
}

// Search scores every stored chunk against query.
func (s *VectorStore) Search(ctx context.Context, query []float32, limit int) ([]domain.SimilarityResult, error) {
	return s.search(ctx, query, nil, limit)
}

// SearchInDocuments scores the chunks owned by documentIDs against query.
// An empty documentIDs matches nothing.
func (s *VectorStore) SearchInDocuments(ctx context.Context, query []float32, documentIDs []string, limit int) ([]domain.SimilarityResult, error) {
	if len(documentIDs) == 0 {
		return []domain.SimilarityResult{}, nil
	}
	return s.search(ctx, query, documentIDs, limit)
}

func (s *VectorStore) search(ctx context.Context, query []float32, documentIDs []string, limit int) ([]domain.SimilarityResult, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}
	dim := s.Dimension()
	if dim == 0 || limit <= 0 {
		return []domain.SimilarityResult{}, nil
	}
	if len(query) != dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, want %d",
			domain.ErrDimensionMismatch, len(query), dim)
	}

	q := `SELECT id, document_id, position, content, embedding, source, section_path, metadata
		FROM chunks`
	args := make([]any, 0, len(documentIDs))
	if len(documentIDs) > 0 {
		q += " WHERE document_id IN (" + placeholders(len(documentIDs)) + ")"
		for _, id := range documentIDs {
			args = append(args, id)
		}
	}
	q += " ORDER BY rowid"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	scorer := similarity.NewQuery(query)

	var results []domain.SimilarityResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, domain.SimilarityResult{
			Chunk: *chunk,
			Score: scorer.Score(chunk.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	// Rows arrive in insertion order, so a stable sort keeps ties in that order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []domain.SimilarityResult{}
	}
	return results, nil
}

// GetChunkByID returns the chunk, or nil when absent.
func (s *VectorStore) GetChunkByID(ctx context.Context, chunkID string) (*domain.DocumentChunk, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, position, content, embedding, source, section_path, metadata
		FROM chunks WHERE id = ?
	`, chunkID)

	chunk, err := scanChunk(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// GetChunksByDocument returns the chunks of documentID ordered by position.
func (s *VectorStore) GetChunksByDocument(ctx context.Context, documentID string) ([]domain.DocumentChunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, position, content, embedding, source, section_path, metadata
		FROM chunks WHERE document_id = ?
		ORDER BY position
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.DocumentChunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// CountByDocument returns the number of chunks owned by documentID.
func (s *VectorStore) CountByDocument(ctx context.Context, documentID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE document_id = ?", documentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return count, nil
}

// ==================== Helper Functions ====================

type scanner interface {
	Scan(dest ...any) error
}

func scanChunk(row scanner) (*domain.DocumentChunk, error) {
	var c domain.DocumentChunk
	var blob []byte
	var metadata sql.NullString

	if err := row.Scan(&c.ID, &c.DocumentID, &c.Position, &c.Content, &blob,
		&c.Source, &c.SectionPath, &metadata); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	embedding, err := decodeEmbedding(blob)
	if err != nil {
		return nil, fmt.Errorf("decoding chunk %s: %w", c.ID, err)
	}
	c.Embedding = embedding

	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &c.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling metadata for chunk %s: %w", c.ID, err)
		}
	}

	return &c, nil
}

func marshalMetadata(m map[string]string) (any, error) {
	if len(m) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
