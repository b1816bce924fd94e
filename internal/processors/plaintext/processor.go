// Package plaintext handles plain text, data and source code files.
package plaintext

import (
	"context"
	"fmt"

	"github.com/spf13/afero"

	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/processors/textio"
)

// Ensure Processor implements the interface.
var _ driven.DocumentProcessor = (*Processor)(nil)

// Processor returns file contents verbatim.
type Processor struct {
	fs afero.Fs
}

// New creates a plain text processor reading from the OS filesystem.
func New() *Processor {
	return NewWithFs(afero.NewOsFs())
}

// NewWithFs creates a plain text processor reading from fs.
func NewWithFs(fs afero.Fs) *Processor {
	return &Processor{fs: fs}
}

// Name returns "plaintext".
func (p *Processor) Name() string { return "plaintext" }

// SupportedExtensions returns the text and code extensions handled.
func (p *Processor) SupportedExtensions() []string {
	return []string{
		".txt", ".text", ".log", ".csv", ".tsv",
		".json", ".yaml", ".yml", ".toml", ".ini", ".cfg", ".conf", ".xml",
		".go", ".py", ".rs", ".java", ".c", ".h", ".cpp", ".hpp", ".rb",
		".sh", ".sql", ".js", ".jsx", ".ts", ".tsx", ".css",
	}
}

// SupportedMIMETypes returns the MIME types this processor handles.
func (p *Processor) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
		"text/tab-separated-values",
		"text/x-go",
		"text/x-python",
		"text/x-shellscript",
		"text/javascript",
		"application/json",
		"application/xml",
		"text/xml",
	}
}

// SupportsStructuredExtraction is always false.
func (p *Processor) SupportsStructuredExtraction(string) bool { return false }

// ExtractText returns the file text.
func (p *Processor) ExtractText(_ context.Context, path string) (string, error) {
	return textio.Read(p.fs, path)
}

// ExtractStructuredContent is not supported for plain text.
func (p *Processor) ExtractStructuredContent(context.Context, string) (*domain.StructuredDocument, error) {
	return nil, fmt.Errorf("%w: plain text has no structure", domain.ErrUnsupportedType)
}
