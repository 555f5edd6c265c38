// Package ports defines interfaces for the collaborators of the quote
// collection engine. Adapters implement them so the application layer
// depends on contracts rather than storage media or operating system APIs.
//
// Port conventions:
//   - Context as first parameter for cancellation and deadlines
//   - Domain types in and out, never adapter DTOs
//   - Failures of the medium are reported as plain errors; the application
//     layer wraps them in domain.IOError
package ports

import (
	"context"

	"github.com/jsamuelsen/quotebook/internal/domain"
)

// QuoteRepository is the storage medium for a collection.
//
// Load is called once at startup and again when the medium changes
// externally. Persist is called after every mutation with the complete
// next collection; it either stores all of it or returns an error.
type QuoteRepository interface {
	// Load returns the stored collection. A medium that has never been
	// written returns an empty slice and no error.
	Load(ctx context.Context) ([]domain.QuoteRecord, error)

	// Persist replaces the stored collection with records.
	Persist(ctx context.Context, records []domain.QuoteRecord) error
}

// Clipboard receives text copied out of the engine (citations, merge
// results, exports).
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// FileSink accepts an exported document with a suggested file name and
// returns where it ended up.
type FileSink interface {
	WriteFile(ctx context.Context, name string, data []byte) (string, error)
}

// Confirmer asks the user before a destructive operation.
type Confirmer interface {
	Confirm(ctx context.Context, message string) (bool, error)
}

// DocumentSource fetches quote drafts from somewhere other than the
// local medium, such as a remote quote library.
//
// Implementations return domain.ErrNotFound for an unknown ref and
// domain.ErrUnavailable when the source cannot be reached.
type DocumentSource interface {
	FetchDrafts(ctx context.Context, ref string) ([]domain.Draft, error)
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, message string) (bool, error)

// Confirm calls f.
func (f ConfirmerFunc) Confirm(ctx context.Context, message string) (bool, error) {
	return f(ctx, message)
}
