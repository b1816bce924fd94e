package driven

import (
	"context"

	"github.com/custodia-labs/docrag/internal/core/domain"
)

// DocumentProcessor extracts text, and optionally structure, from a file.
type DocumentProcessor interface {
	// Name returns the processor name for logging.
	Name() string

	// SupportedExtensions returns lower-case extensions including the dot.
	SupportedExtensions() []string

	// SupportedMIMETypes returns the MIME types this processor handles.
	SupportedMIMETypes() []string

	// SupportsStructuredExtraction reports whether ExtractStructuredContent
	// produces a StructuredDocument for files with extension ext.
	SupportsStructuredExtraction(ext string) bool

	// ExtractText returns the plain text of the file at path.
	ExtractText(ctx context.Context, path string) (string, error)

	// ExtractStructuredContent returns the structural annotation of the file.
	ExtractStructuredContent(ctx context.Context, path string) (*domain.StructuredDocument, error)
}

// ProcessorRegistry selects the processor for a file.
type ProcessorRegistry interface {
	// ProcessorFor returns the first processor handling path.
	// Returns domain.ErrUnsupportedType when none does.
	ProcessorFor(path string) (DocumentProcessor, error)

	// SupportedExtensions returns every extension some processor handles.
	SupportedExtensions() []string
}
