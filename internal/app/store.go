package app

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jsamuelsen/quotebook/internal/domain"
	"github.com/jsamuelsen/quotebook/internal/ports"
)

// Store operation names reported to OnChange and in logs.
const (
	OpLoad    = "load"
	OpReload  = "reload"
	OpSeed    = "seed"
	OpAdd     = "add"
	OpUpdate  = "update"
	OpRemove  = "remove"
	OpToggle  = "toggle_favorite"
	OpReplace = "replace_all"
	OpMerge   = "merge"
)

// Store owns the authoritative quote collection. Every mutation builds the
// complete next collection, persists it, and only then makes it current,
// so a failed write leaves memory untouched.
type Store struct {
	mu      sync.RWMutex
	records []domain.QuoteRecord

	repo       ports.QuoteRepository
	normalizer *domain.Normalizer
	logger     *slog.Logger
	seed       bool
	now        func() time.Time
	onChange   func(op string, count int)
}

// StoreConfig contains the dependencies of a Store.
type StoreConfig struct {
	// Repository is the storage medium. Required.
	Repository ports.QuoteRepository

	// Normalizer builds records from drafts. Defaults to compact ids.
	Normalizer *domain.Normalizer

	// SeedExamples adds the example quotes when Load finds nothing.
	SeedExamples bool

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// OnChange is called after each committed change with the operation
	// name and the new collection size.
	OnChange func(op string, count int)

	Logger *slog.Logger
}

// ReplaceResult reports the outcome of ReplaceAll.
type ReplaceResult struct {
	Imported int
	Skipped  []domain.ValidationSkip
}

// NewStore creates an empty store. Call Load before serving reads.
func NewStore(cfg StoreConfig) *Store {
	if cfg.Repository == nil {
		panic("store: repository is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	normalizer := cfg.Normalizer
	if normalizer == nil {
		normalizer = &domain.Normalizer{IDs: &domain.IDGenerator{Format: domain.FormatCompact, Now: now}, Now: now}
	}

	onChange := cfg.OnChange
	if onChange == nil {
		onChange = func(string, int) {}
	}

	return &Store{
		records:    []domain.QuoteRecord{},
		repo:       cfg.Repository,
		normalizer: normalizer,
		logger:     logger.With(slog.String("component", "store")),
		seed:       cfg.SeedExamples,
		now:        now,
		onChange:   onChange,
	}
}

// Load reads the collection from the repository. A read failure falls back
// to an empty collection and is not seeded, so the examples never replace
// a file that exists but could not be decoded. A collection that loaded
// empty is seeded with the example quotes when seeding is enabled; only a
// failure to persist the seed is returned.
func (s *Store) Load(ctx context.Context) error {
	records, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "loading collection failed, starting empty",
			slog.Any("error", err),
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = domain.CloneRecords(records)
	s.onChange(OpLoad, len(s.records))

	s.logger.InfoContext(ctx, "collection loaded", slog.Int("count", len(s.records)))

	if err != nil || len(s.records) > 0 || !s.seed {
		return nil
	}

	return s.commit(ctx, OpSeed, domain.ExampleQuotes(s.now(), s.normalizer.IDs))
}

// Reload re-reads the repository without seeding. On failure the current
// collection is kept.
func (s *Store) Reload(ctx context.Context) error {
	records, err := s.repo.Load(ctx)
	if err != nil {
		return domain.NewIOError("reload collection", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = domain.CloneRecords(records)
	s.onChange(OpReload, len(s.records))

	s.logger.InfoContext(ctx, "collection reloaded", slog.Int("count", len(s.records)))

	return nil
}

// Add normalises d as a manual entry and appends it.
func (s *Store) Add(ctx context.Context, d domain.Draft) (domain.QuoteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.normalizer.Normalize(d, domain.ModeStore, domain.NewIDSet(s.records))
	if err != nil {
		return domain.QuoteRecord{}, domain.NewValidationError("text", "must not be empty")
	}

	next := append(slices.Clone(s.records), rec)
	if err := s.commit(ctx, OpAdd, next); err != nil {
		return domain.QuoteRecord{}, err
	}

	s.logger.InfoContext(ctx, "quote added", slog.String("quote_id", rec.ID))

	return rec.Clone(), nil
}

// Update overwrites the text, author and tags of the record with id and
// refreshes its updated time. An unknown id is a no-op that returns a nil
// record and no error.
func (s *Store) Update(ctx context.Context, id string, d domain.Draft) (*domain.QuoteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		s.logger.DebugContext(ctx, "update ignored, unknown quote", slog.String("quote_id", id))
		return nil, nil
	}

	text := d.Text.Trimmed()
	if text == "" {
		return nil, domain.NewValidationError("text", "must not be empty")
	}

	next := domain.CloneRecords(s.records)
	rec := &next[idx]
	rec.Text = text
	rec.Author = d.Author.Trimmed()
	rec.Tags = d.Tags.Resolve()
	rec.Updated = s.now().UnixMilli()

	if err := s.commit(ctx, OpUpdate, next); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "quote updated", slog.String("quote_id", id))

	out := rec.Clone()

	return &out, nil
}

// Remove drops the record with id. It reports whether a record was removed.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false, nil
	}

	next := slices.Delete(slices.Clone(s.records), idx, idx+1)
	if err := s.commit(ctx, OpRemove, next); err != nil {
		return false, err
	}

	s.logger.InfoContext(ctx, "quote removed", slog.String("quote_id", id))

	return true, nil
}

// ToggleFavorite flips the favourite flag of the record with id. An unknown
// id returns a nil record and no error.
func (s *Store) ToggleFavorite(ctx context.Context, id string) (*domain.QuoteRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, nil
	}

	next := domain.CloneRecords(s.records)
	next[idx].Fav = !next[idx].Fav

	if err := s.commit(ctx, OpToggle, next); err != nil {
		return nil, err
	}

	out := next[idx].Clone()

	return &out, nil
}

// ReplaceAll normalises each draft as an import and replaces the whole
// collection. Drafts without text are skipped. Asking the user first is
// the caller's job.
func (s *Store) ReplaceAll(ctx context.Context, drafts []domain.Draft) (ReplaceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := ReplaceResult{}
	next := make([]domain.QuoteRecord, 0, len(drafts))
	excluded := domain.IDSet{}

	for i, d := range drafts {
		rec, err := s.normalizer.Normalize(d, domain.ModeImport, excluded)
		if err != nil {
			result.Skipped = append(result.Skipped, domain.ValidationSkip{Index: i, Reason: "text is empty"})
			continue
		}

		excluded.Add(rec.ID)
		next = append(next, rec)
	}

	if err := s.commit(ctx, OpReplace, next); err != nil {
		return ReplaceResult{}, err
	}

	result.Imported = len(next)

	s.logger.InfoContext(ctx, "collection replaced",
		slog.Int("imported", result.Imported),
		slog.Int("skipped", len(result.Skipped)),
	)

	return result, nil
}

// Merge appends drafts to the collection with fresh ids. When every draft
// is skipped nothing changed and the repository is not written.
func (s *Store) Merge(ctx context.Context, drafts []domain.Draft) (domain.MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := domain.Merge(s.records, drafts, s.normalizer)
	if result.Added == 0 {
		return result, nil
	}

	if err := s.commit(ctx, OpMerge, result.Records); err != nil {
		return domain.MergeResult{}, err
	}

	s.logger.InfoContext(ctx, "drafts merged",
		slog.Int("added", result.Added),
		slog.Int("skipped", len(result.Skipped)),
	)

	return result, nil
}

// Get returns a copy of the record with id.
func (s *Store) Get(id string) (domain.QuoteRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return domain.QuoteRecord{}, false
	}

	return s.records[idx].Clone(), true
}

// Records returns a copy of the collection in stored order.
func (s *Store) Records() []domain.QuoteRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.CloneRecords(s.records)
}

// Len returns the collection size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// Stats summarises the collection.
func (s *Store) Stats() domain.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.ComputeStats(s.records)
}

// Query runs the query pipeline over the collection.
func (s *Store) Query(p domain.QueryParams) []domain.QuoteRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.CloneRecords(domain.Query(s.records, p))
}

// commit persists next and makes it current. Callers hold the write lock.
func (s *Store) commit(ctx context.Context, op string, next []domain.QuoteRecord) error {
	if err := s.repo.Persist(ctx, next); err != nil {
		s.logger.ErrorContext(ctx, "persisting collection failed",
			slog.String("op", op),
			slog.Any("error", err),
		)

		return domain.NewIOError("persist collection", err)
	}

	s.records = next
	s.onChange(op, len(next))

	return nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.records, func(r domain.QuoteRecord) bool { return r.ID == id })
}
