// Package markdown extracts text and heading structure from Markdown files.
package markdown

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/processors/textio"
)

// Ensure Processor implements the interface.
var _ driven.DocumentProcessor = (*Processor)(nil)

// Processor handles Markdown documents with optional YAML front matter.
type Processor struct {
	fs afero.Fs
}

// New creates a Markdown processor reading from the OS filesystem.
func New() *Processor {
	return NewWithFs(afero.NewOsFs())
}

// NewWithFs creates a Markdown processor reading from fs.
func NewWithFs(fs afero.Fs) *Processor {
	return &Processor{fs: fs}
}

// Name returns "markdown".
func (p *Processor) Name() string { return "markdown" }

// SupportedExtensions returns the Markdown extensions.
func (p *Processor) SupportedExtensions() []string {
	return []string{".md", ".markdown", ".mdown", ".mkd"}
}

// SupportedMIMETypes returns the MIME types this processor handles.
func (p *Processor) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// SupportsStructuredExtraction reports true for every Markdown extension.
func (p *Processor) SupportsStructuredExtraction(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range p.SupportedExtensions() {
		if e == ext {
			return true
		}
	}
	return false
}

// ExtractText returns the document body as plain text. Markup is removed,
// front matter is dropped and block elements are separated by blank lines.
func (p *Processor) ExtractText(_ context.Context, path string) (string, error) {
	text, err := textio.Read(p.fs, path)
	if err != nil {
		return "", err
	}
	_, body, _ := splitFrontMatter(text)
	return render(parse(body)), nil
}

// ExtractStructuredContent returns the typed elements of the document.
// The title comes from front matter, else the first level-1 heading,
// else the file name.
func (p *Processor) ExtractStructuredContent(_ context.Context, path string) (*domain.StructuredDocument, error) {
	text, err := textio.Read(p.fs, path)
	if err != nil {
		return nil, err
	}
	fm, body, err := splitFrontMatter(text)
	if err != nil {
		return nil, fmt.Errorf("front matter in %s: %w", filepath.Base(path), err)
	}

	elements := parse(body)
	title := fm.Title
	if title == "" {
		for _, el := range elements {
			if el.Type == domain.ElementHeading1 {
				title = el.Text
				break
			}
		}
	}
	if title == "" {
		title = textio.TitleFromPath(path)
	}
	return &domain.StructuredDocument{Title: title, Elements: elements}, nil
}
