package driven

import "context"

// ContentStore persists the raw text of documents.
// Backed by one file per document.
type ContentStore interface {
	// LoadContent returns the text for id.
	// Returns domain.ErrNotFound if no content exists.
	LoadContent(ctx context.Context, id string) (string, error)

	// SaveContent creates or replaces the text for id.
	SaveContent(ctx context.Context, id, text string) error

	// DeleteContent removes the text for id.
	// Deleting a missing id is not an error.
	DeleteContent(ctx context.Context, id string) error
}
