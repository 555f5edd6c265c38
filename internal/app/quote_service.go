// Package app contains the application layer: the collection store and
// the use cases that combine it with clipboard, file and remote sources.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/jsamuelsen/quotebook/internal/domain"
	"github.com/jsamuelsen/quotebook/internal/ports"
)

// Confirmation prompts shown before destructive operations.
const (
	ImportPrompt = "Import will replace your current quotes. Continue?"
	DeletePrompt = "Delete this quote?"
)

// remoteFetchLimit bounds concurrent fetches in ImportRemote.
const remoteFetchLimit = 4

// QuoteService orchestrates import, export, merge and copy use cases on
// top of a Store. It depends on port interfaces, not concrete adapters.
type QuoteService struct {
	store     *Store
	clipboard ports.Clipboard
	files     ports.FileSink
	source    ports.DocumentSource
	merger    *domain.Normalizer
	logger    *slog.Logger
}

// QuoteServiceConfig contains the dependencies of the quote service.
type QuoteServiceConfig struct {
	// Store is the collection store. Required.
	Store *Store

	// Clipboard, FileSink and Source are optional; use cases that need a
	// missing one fail with domain.ErrUnavailable.
	Clipboard ports.Clipboard
	FileSink  ports.FileSink
	Source    ports.DocumentSource

	// MergeNormalizer is used by MergeDocument. Defaults to numeric ids.
	MergeNormalizer *domain.Normalizer

	Logger *slog.Logger
}

// ExportOptions selects where Export delivers the document.
type ExportOptions struct {
	ToFile      bool
	ToClipboard bool
}

// ExportResult describes a completed export.
type ExportResult struct {
	Document []byte
	Count    int
	Path     string
}

// MergeOutcome is the result of the merge tool.
type MergeOutcome struct {
	Document []byte
	Result   domain.DocumentMerge
	Copied   bool
}

// Summary describes the merge the way the tool reports it.
func (o MergeOutcome) Summary() string {
	return fmt.Sprintf("Merged %d old quotes with %d new quotes", o.Result.Base, o.Result.Added())
}

// NewQuoteService creates a quote service.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Store == nil {
		panic("quote service: store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	merger := cfg.MergeNormalizer
	if merger == nil {
		merger = domain.NewNormalizer(domain.NewIDGenerator(domain.FormatNumeric))
	}

	return &QuoteService{
		store:     cfg.Store,
		clipboard: cfg.Clipboard,
		files:     cfg.FileSink,
		source:    cfg.Source,
		merger:    merger,
		logger:    logger,
	}
}

// Store returns the underlying collection store.
func (s *QuoteService) Store() *Store {
	return s.store
}

// Import replaces the collection with the drafts in data after the user
// agrees. Declining returns ErrDeclined and changes nothing.
func (s *QuoteService) Import(ctx context.Context, data []byte, confirmer ports.Confirmer) (ReplaceResult, error) {
	if confirmer == nil {
		return ReplaceResult{}, domain.NewForbiddenError("import", "confirmation required")
	}

	return RunTransaction(ctx, s.logger, Transaction[[]domain.Draft, []domain.Draft, ReplaceResult]{
		Name: "import",
		Decode: func(context.Context) ([]domain.Draft, error) {
			return domain.DecodeDrafts(data)
		},
		Confirm: func([]domain.Draft) string { return ImportPrompt },
		Commit:  s.store.ReplaceAll,
	}, confirmer.Confirm)
}

// ImportRemote is Import with drafts fetched from the document source.
// Several refs are fetched concurrently and concatenated in order.
func (s *QuoteService) ImportRemote(ctx context.Context, confirmer ports.Confirmer, refs ...string) (ReplaceResult, error) {
	if s.source == nil {
		return ReplaceResult{}, domain.NewUnavailableError("library", "remote import is not configured")
	}

	if confirmer == nil {
		return ReplaceResult{}, domain.NewForbiddenError("import", "confirmation required")
	}

	if len(refs) == 0 {
		return ReplaceResult{}, domain.NewValidationError("ref", "at least one ref is required")
	}

	return RunTransaction(ctx, s.logger, Transaction[[][]domain.Draft, []domain.Draft, ReplaceResult]{
		Name: "import_remote",
		Decode: func(ctx context.Context) ([][]domain.Draft, error) {
			fetches := make([]func(context.Context) ([]domain.Draft, error), len(refs))
			for i, ref := range refs {
				fetches[i] = func(ctx context.Context) ([]domain.Draft, error) {
					return s.source.FetchDrafts(ctx, ref)
				}
			}

			return ParallelLimit(ctx, remoteFetchLimit, fetches...)
		},
		Compute: func(_ context.Context, batches [][]domain.Draft) ([]domain.Draft, error) {
			return slices.Concat(batches...), nil
		},
		Confirm: func([]domain.Draft) string { return ImportPrompt },
		Commit:  s.store.ReplaceAll,
	}, confirmer.Confirm)
}

// Export renders the collection and delivers it to the selected sinks
// concurrently. The document is returned even when a sink fails.
func (s *QuoteService) Export(ctx context.Context, opts ExportOptions) (ExportResult, error) {
	records := s.store.Records()

	data, err := domain.EncodeCollection(records)
	if err != nil {
		return ExportResult{}, err
	}

	result := ExportResult{Document: data, Count: len(records)}

	var deliveries []Delivery

	if opts.ToFile {
		if s.files == nil {
			return result, domain.NewUnavailableError("file sink", "not configured")
		}

		deliveries = append(deliveries, Delivery{Name: "file", Send: func(ctx context.Context) error {
			path, err := s.files.WriteFile(ctx, domain.ExportFilename, data)
			result.Path = path

			return err
		}})
	}

	if opts.ToClipboard {
		if s.clipboard == nil {
			return result, domain.NewUnavailableError("clipboard", "not configured")
		}

		deliveries = append(deliveries, Delivery{Name: "clipboard", Send: func(ctx context.Context) error {
			return s.clipboard.WriteText(ctx, string(data))
		}})
	}

	if err := DeliverAll(ctx, deliveries...); err != nil {
		s.logger.ErrorContext(ctx, "export delivery failed", slog.Any("error", err))
		return result, domain.NewIOError("export", err)
	}

	s.logger.InfoContext(ctx, "collection exported",
		slog.Int("count", result.Count),
		slog.String("path", result.Path),
	)

	return result, nil
}

// MergeDocument is the merge tool: it appends drafts to the collection in
// baseJSON and returns the merged document without touching the store.
// With copyResult the document is also put on the clipboard; a clipboard
// failure is returned as an IOError alongside the document.
func (s *QuoteService) MergeDocument(ctx context.Context, baseJSON []byte, drafts []domain.Draft, copyResult bool) (MergeOutcome, error) {
	outcome, err := RunTransaction(ctx, s.logger, Transaction[[]byte, domain.DocumentMerge, MergeOutcome]{
		Name: "merge_document",
		Decode: func(context.Context) ([]byte, error) {
			return baseJSON, nil
		},
		Compute: func(_ context.Context, base []byte) (domain.DocumentMerge, error) {
			return domain.MergeDocument(base, drafts, s.merger)
		},
		Commit: func(_ context.Context, result domain.DocumentMerge) (MergeOutcome, error) {
			return MergeOutcome{Document: result.Document, Result: result}, nil
		},
	}, nil)
	if err != nil || !copyResult {
		return outcome, err
	}

	if s.clipboard == nil {
		return outcome, domain.NewUnavailableError("clipboard", "not configured")
	}

	if err := s.clipboard.WriteText(ctx, string(outcome.Document)); err != nil {
		return outcome, domain.NewIOError("copy merged document", err)
	}

	outcome.Copied = true

	s.logger.InfoContext(ctx, outcome.Summary())

	return outcome, nil
}

// CopyQuote puts the citation of the record with id on the clipboard and
// returns it.
func (s *QuoteService) CopyQuote(ctx context.Context, id string) (string, error) {
	rec, ok := s.store.Get(id)
	if !ok {
		return "", domain.NewNotFoundError("quote", id)
	}

	citation := rec.Citation()

	if s.clipboard == nil {
		return citation, domain.NewUnavailableError("clipboard", "not configured")
	}

	if err := s.clipboard.WriteText(ctx, citation); err != nil {
		return citation, domain.NewIOError("copy quote", err)
	}

	return citation, nil
}

// DeleteQuote removes the record with id after the user agrees. A nil
// confirmer removes without asking.
func (s *QuoteService) DeleteQuote(ctx context.Context, id string, confirmer ports.Confirmer) (bool, error) {
	if _, ok := s.store.Get(id); !ok {
		return false, domain.NewNotFoundError("quote", id)
	}

	if confirmer != nil {
		ok, err := confirmer.Confirm(ctx, DeletePrompt)
		if err != nil {
			return false, err
		}

		if !ok {
			return false, ErrDeclined
		}
	}

	return s.store.Remove(ctx, id)
}
