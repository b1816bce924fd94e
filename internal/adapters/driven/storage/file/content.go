package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
)

// ContentDir is the directory under the data root holding document text.
const ContentDir = "content"

const contentExt = ".txt"

// Ensure ContentStore implements the interface.
var _ driven.ContentStore = (*ContentStore)(nil)

// ContentStore keeps document text as content/<id>.txt.
type ContentStore struct {
	fs  afero.Fs
	dir string
}

// NewContentStore creates a content store under dataDir on the OS filesystem.
func NewContentStore(dataDir string) (*ContentStore, error) {
	return NewContentStoreWithFs(afero.NewOsFs(), dataDir)
}

// NewContentStoreWithFs creates a content store under dataDir on fs.
func NewContentStoreWithFs(fs afero.Fs, dataDir string) (*ContentStore, error) {
	dir := filepath.Join(dataDir, ContentDir)
	if err := fs.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating content directory: %w", domain.ErrStorage, err)
	}
	return &ContentStore{fs: fs, dir: dir}, nil
}

// Dir returns the content directory.
func (s *ContentStore) Dir() string {
	return s.dir
}

// LoadContent returns the text for id, or domain.ErrNotFound.
func (s *ContentStore) LoadContent(_ context.Context, id string) (string, error) {
	path, err := s.path(id)
	if err != nil {
		return "", err
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("content %s: %w", id, domain.ErrNotFound)
		}
		return "", fmt.Errorf("%w: reading content %s: %w", domain.ErrStorage, id, err)
	}
	return string(data), nil
}

// SaveContent writes the text for id, replacing any previous version.
func (s *ContentStore) SaveContent(_ context.Context, id, text string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := writeAtomic(s.fs, path, []byte(text)); err != nil {
		return fmt.Errorf("%w: writing content %s: %w", domain.ErrStorage, id, err)
	}
	return nil
}

// DeleteContent removes the text for id. A missing file is not an error.
func (s *ContentStore) DeleteContent(_ context.Context, id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: deleting content %s: %w", domain.ErrStorage, id, err)
	}
	return nil
}

func (s *ContentStore) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("%w: document id %q", domain.ErrInvalidInput, id)
	}
	return filepath.Join(s.dir, id+contentExt), nil
}

// writeAtomic writes data to a sibling temp file and renames it over path.
func writeAtomic(fs afero.Fs, path string, data []byte) error {
	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, data, 0600); err != nil {
		return err
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return err
	}
	return nil
}
