package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/afero"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// Metadata file names under the data root.
const (
	MetadataFile     = "metadata.json"
	MetadataLockFile = "metadata.lock"
)

const metadataVersion = 1

// Ensure MetadataStore implements the interface.
var _ driven.MetadataStore = (*MetadataStore)(nil)

// metadataFile is the on-disk layout of metadata.json.
type metadataFile struct {
	Version   int                                `json:"version"`
	Documents map[string]domain.DocumentMetadata `json:"documents"`
}

// MetadataStore keeps every metadata record in one JSON file.
type MetadataStore struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string

	// lock guards read-modify-write cycles across processes.
	// Nil when fs is not the OS filesystem.
	lock *flock.Flock
}

// NewMetadataStore creates a metadata store in dataDir on the OS filesystem.
func NewMetadataStore(dataDir string) (*MetadataStore, error) {
	s, err := NewMetadataStoreWithFs(afero.NewOsFs(), dataDir)
	if err != nil {
		return nil, err
	}
	s.lock = flock.New(filepath.Join(dataDir, MetadataLockFile))
	return s, nil
}

// NewMetadataStoreWithFs creates a metadata store in dataDir on fs.
func NewMetadataStoreWithFs(fs afero.Fs, dataDir string) (*MetadataStore, error) {
	if err := fs.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating data directory: %w", domain.ErrStorage, err)
	}
	return &MetadataStore{fs: fs, path: filepath.Join(dataDir, MetadataFile)}, nil
}

// Path returns the metadata file path.
func (s *MetadataStore) Path() string {
	return s.path
}

// LoadAll returns every record keyed by document id.
func (s *MetadataStore) LoadAll(_ context.Context) (map[string]domain.DocumentMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// SaveAll replaces the full record set.
func (s *MetadataStore) SaveAll(_ context.Context, all map[string]domain.DocumentMetadata) error {
	return s.update(func(map[string]domain.DocumentMetadata) (map[string]domain.DocumentMetadata, error) {
		out := make(map[string]domain.DocumentMetadata, len(all))
		for id, m := range all {
			out[id] = m
		}
		return out, nil
	})
}

// GetByID returns the record for id, or nil when absent.
func (s *MetadataStore) GetByID(ctx context.Context, id string) (*domain.DocumentMetadata, error) {
	all, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	m, ok := all[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

// Save creates or replaces the record for meta.ID.
func (s *MetadataStore) Save(_ context.Context, meta domain.DocumentMetadata) error {
	if meta.ID == "" {
		return fmt.Errorf("%w: metadata without id", domain.ErrInvalidInput)
	}
	return s.update(func(all map[string]domain.DocumentMetadata) (map[string]domain.DocumentMetadata, error) {
		all[meta.ID] = meta
		return all, nil
	})
}

// Delete removes the record for id. A missing record is not an error.
func (s *MetadataStore) Delete(_ context.Context, id string) error {
	return s.update(func(all map[string]domain.DocumentMetadata) (map[string]domain.DocumentMetadata, error) {
		delete(all, id)
		return all, nil
	})
}

func (s *MetadataStore) update(fn func(map[string]domain.DocumentMetadata) (map[string]domain.DocumentMetadata, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lock != nil {
		if err := s.lock.Lock(); err != nil {
			return fmt.Errorf("%w: locking metadata: %w", domain.ErrStorage, err)
		}
		defer s.lock.Unlock() //nolint:errcheck // released on process exit regardless
	}

	all, err := s.read()
	if err != nil {
		return err
	}
	all, err = fn(all)
	if err != nil {
		return err
	}
	return s.write(all)
}

// read loads the file (caller must hold mu).
func (s *MetadataStore) read() (map[string]domain.DocumentMetadata, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]domain.DocumentMetadata), nil
		}
		return nil, fmt.Errorf("%w: reading metadata: %w", domain.ErrStorage, err)
	}

	var f metadataFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", domain.ErrStorage, s.path, err)
	}
	if f.Documents == nil {
		f.Documents = make(map[string]domain.DocumentMetadata)
	}
	return f.Documents, nil
}

// write replaces the file (caller must hold mu).
func (s *MetadataStore) write(all map[string]domain.DocumentMetadata) error {
	data, err := json.MarshalIndent(metadataFile{Version: metadataVersion, Documents: all}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}
	if err := writeAtomic(s.fs, s.path, data); err != nil {
		return fmt.Errorf("%w: writing metadata: %w", domain.ErrStorage, err)
	}
	return nil
}
