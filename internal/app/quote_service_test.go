package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotebook/internal/domain"
	"github.com/jsamuelsen/quotebook/internal/mocks"
)

type serviceDeps struct {
	repo      *memoryRepository
	store     *Store
	clipboard *mocks.MockClipboard
	files     *mocks.MockFileSink
	source    *mocks.MockDocumentSource
	svc       *QuoteService
}

func newServiceDeps(t *testing.T, initial ...domain.QuoteRecord) *serviceDeps {
	t.Helper()

	d := &serviceDeps{
		repo:      &memoryRepository{records: initial},
		clipboard: mocks.NewMockClipboard(t),
		files:     mocks.NewMockFileSink(t),
		source:    mocks.NewMockDocumentSource(t),
	}
	d.store = newTestStore(t, d.repo, false)

	clock := func() time.Time { return testNow }
	d.svc = NewQuoteService(QuoteServiceConfig{
		Store:     d.store,
		Clipboard: d.clipboard,
		FileSink:  d.files,
		Source:    d.source,
		MergeNormalizer: &domain.Normalizer{
			IDs: &domain.IDGenerator{Format: domain.FormatNumeric, Now: clock},
			Now: clock,
		},
		Logger: discardLogger(),
	})

	return d
}

func TestNewQuoteService_PanicsWithoutStore(t *testing.T) {
	assert.Panics(t, func() {
		NewQuoteService(QuoteServiceConfig{})
	})
}

func TestNewQuoteService_DefaultsOptionalDeps(t *testing.T) {
	store := newTestStore(t, &memoryRepository{}, false)

	svc := NewQuoteService(QuoteServiceConfig{Store: store})

	require.NotNil(t, svc)
	assert.Same(t, store, svc.Store())
	assert.NotNil(t, svc.merger)
}

func TestQuoteService_Import(t *testing.T) {
	existing := domain.QuoteRecord{ID: "old", Text: "old", Tags: []string{}}

	tests := []struct {
		name      string
		data      string
		answer    bool
		askErr    error
		expectAsk bool
		wantIDs   int
		errCheck  func(error) bool
		wantStage Stage
	}{
		{
			name:      "accepted",
			data:      `[{"text":"X"},{"text":"  "},{"id":"k","text":"Y","tags":"a,b","fav":"true"}]`,
			answer:    true,
			expectAsk: true,
			wantIDs:   2,
		},
		{
			name:      "declined",
			data:      `[{"text":"X"}]`,
			answer:    false,
			expectAsk: true,
			wantIDs:   1,
			errCheck:  func(err error) bool { return errors.Is(err, ErrDeclined) },
			wantStage: StageConfirm,
		},
		{
			name:      "prompt failure",
			data:      `[{"text":"X"}]`,
			askErr:    errors.New("stdin closed"),
			expectAsk: true,
			wantIDs:   1,
			errCheck:  func(err error) bool { return err != nil && strings.Contains(err.Error(), "stdin closed") },
			wantStage: StageConfirm,
		},
		{
			name:      "not an array",
			data:      `{"text":"X"}`,
			wantIDs:   1,
			errCheck:  domain.IsFormat,
			wantStage: StageDecode,
		},
		{
			name:      "malformed",
			data:      `[{"text":`,
			wantIDs:   1,
			errCheck:  domain.IsParse,
			wantStage: StageDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newServiceDeps(t, existing)
			confirmer := mocks.NewMockConfirmer(t)
			if tt.expectAsk {
				confirmer.EXPECT().Confirm(mock.Anything, ImportPrompt).Return(tt.answer, tt.askErr)
			}

			result, err := d.svc.Import(context.Background(), []byte(tt.data), confirmer)

			if tt.errCheck != nil {
				require.Error(t, err)
				assert.True(t, tt.errCheck(err), "unexpected error: %v", err)
				stage, ok := FailedStage(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantStage, stage)
				assert.Equal(t, []domain.QuoteRecord{existing}, d.store.Records(), "collection must be untouched")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, result.Imported)
			assert.Len(t, result.Skipped, 1)

			records := d.store.Records()
			require.Len(t, records, tt.wantIDs)
			assert.Equal(t, "k", records[1].ID)
			assert.Equal(t, []string{"a", "b"}, records[1].Tags)
			assert.True(t, records[1].Fav)
		})
	}
}

func TestQuoteService_ImportWithoutConfirmer(t *testing.T) {
	d := newServiceDeps(t)

	_, err := d.svc.Import(context.Background(), []byte(`[]`), nil)

	assert.True(t, domain.IsForbidden(err))
}

func TestQuoteService_ImportRemote(t *testing.T) {
	d := newServiceDeps(t)
	d.source.EXPECT().FetchDrafts(mock.Anything, "stoics").
		Return([]domain.Draft{{Text: "Waste no more time."}}, nil)
	d.source.EXPECT().FetchDrafts(mock.Anything, "poets").
		Return([]domain.Draft{{Text: "Hope is the thing with feathers."}}, nil)

	confirmer := mocks.NewMockConfirmer(t)
	confirmer.EXPECT().Confirm(mock.Anything, ImportPrompt).Return(true, nil)

	result, err := d.svc.ImportRemote(context.Background(), confirmer, "stoics", "poets")

	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)

	records := d.store.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "Waste no more time.", records[0].Text)
	assert.Equal(t, "Hope is the thing with feathers.", records[1].Text)
}

func TestQuoteService_ImportRemoteSourceFailure(t *testing.T) {
	d := newServiceDeps(t)
	d.source.EXPECT().FetchDrafts(mock.Anything, "stoics").
		Return(nil, domain.NewUnavailableError("library", "timeout"))

	confirmer := mocks.NewMockConfirmer(t)

	_, err := d.svc.ImportRemote(context.Background(), confirmer, "stoics")

	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
}

func TestQuoteService_ImportRemoteRequiresRef(t *testing.T) {
	d := newServiceDeps(t)

	_, err := d.svc.ImportRemote(context.Background(), mocks.NewMockConfirmer(t))

	assert.True(t, domain.IsValidation(err))
}

func TestQuoteService_Export(t *testing.T) {
	rec := domain.QuoteRecord{ID: "a", Text: "t", Author: "", Tags: []string{}, Created: 1, Updated: 1}

	t.Run("file and clipboard", func(t *testing.T) {
		d := newServiceDeps(t, rec)
		d.files.EXPECT().WriteFile(mock.Anything, "stellar_quotes.json", mock.Anything).
			Return("/tmp/out/stellar_quotes.json", nil)
		d.clipboard.EXPECT().WriteText(mock.Anything, mock.AnythingOfType("string")).Return(nil)

		result, err := d.svc.Export(context.Background(), ExportOptions{ToFile: true, ToClipboard: true})

		require.NoError(t, err)
		assert.Equal(t, 1, result.Count)
		assert.Equal(t, "/tmp/out/stellar_quotes.json", result.Path)
		assert.True(t, strings.HasPrefix(string(result.Document), "[\n  {"))
	})

	t.Run("clipboard failure still writes file", func(t *testing.T) {
		d := newServiceDeps(t, rec)
		d.files.EXPECT().WriteFile(mock.Anything, "stellar_quotes.json", mock.Anything).
			Return("/tmp/out/stellar_quotes.json", nil)
		d.clipboard.EXPECT().WriteText(mock.Anything, mock.Anything).Return(errors.New("no display"))

		result, err := d.svc.Export(context.Background(), ExportOptions{ToFile: true, ToClipboard: true})

		require.Error(t, err)
		assert.True(t, domain.IsIO(err))
		assert.Contains(t, err.Error(), "clipboard")
		assert.NotEmpty(t, result.Document)
	})

	t.Run("document only", func(t *testing.T) {
		d := newServiceDeps(t)

		result, err := d.svc.Export(context.Background(), ExportOptions{})

		require.NoError(t, err)
		assert.Equal(t, "[]", string(result.Document))
	})
}

func TestQuoteService_MergeDocument(t *testing.T) {
	base := `[{"id":"1","text":"Old","author":"A","tags":[],"fav":false,"created":1,"updated":1}]`
	drafts := []domain.Draft{{Text: "New"}, {Text: " "}}

	t.Run("copies result", func(t *testing.T) {
		d := newServiceDeps(t)
		var copied string
		d.clipboard.EXPECT().WriteText(mock.Anything, mock.Anything).
			Run(func(_ context.Context, text string) { copied = text }).
			Return(nil)

		outcome, err := d.svc.MergeDocument(context.Background(), []byte(base), drafts, true)

		require.NoError(t, err)
		assert.True(t, outcome.Copied)
		assert.Equal(t, "Merged 1 old quotes with 1 new quotes", outcome.Summary())
		assert.Equal(t, string(outcome.Document), copied)

		records, err := domain.DecodeCollection(outcome.Document)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "Unknown", records[1].Author)
		assert.Regexp(t, `^1700000000000\d{1,3}$`, records[1].ID)
		assert.Zero(t, d.store.Len(), "merge tool does not touch the store")
	})

	t.Run("clipboard failure returns document", func(t *testing.T) {
		d := newServiceDeps(t)
		d.clipboard.EXPECT().WriteText(mock.Anything, mock.Anything).Return(errors.New("no display"))

		outcome, err := d.svc.MergeDocument(context.Background(), []byte(base), drafts, true)

		require.Error(t, err)
		assert.True(t, domain.IsIO(err))
		assert.NotEmpty(t, outcome.Document)
		assert.False(t, outcome.Copied)
	})

	t.Run("loosely typed base is kept as written", func(t *testing.T) {
		d := newServiceDeps(t)
		loose := `{"id":1,"text":"Old","tags":"x, y","fav":"true","created":"2024-01-01","source":"book"}`

		outcome, err := d.svc.MergeDocument(context.Background(), []byte("["+loose+"]"), drafts, false)

		require.NoError(t, err)
		assert.Equal(t, "Merged 1 old quotes with 1 new quotes", outcome.Summary())
		assert.Contains(t, string(outcome.Document), loose)
	})

	t.Run("base must be an array", func(t *testing.T) {
		d := newServiceDeps(t)

		_, err := d.svc.MergeDocument(context.Background(), []byte(`{"a":1}`), drafts, false)

		require.Error(t, err)
		assert.True(t, domain.IsFormat(err))
	})
}

func TestQuoteService_CopyQuote(t *testing.T) {
	rec := domain.QuoteRecord{ID: "a", Text: "Stay hungry", Author: "Jobs", Tags: []string{}}

	t.Run("copies citation", func(t *testing.T) {
		d := newServiceDeps(t, rec)
		d.clipboard.EXPECT().WriteText(mock.Anything, `"Stay hungry" — Jobs`).Return(nil)

		citation, err := d.svc.CopyQuote(context.Background(), "a")

		require.NoError(t, err)
		assert.Equal(t, `"Stay hungry" — Jobs`, citation)
	})

	t.Run("unknown id", func(t *testing.T) {
		d := newServiceDeps(t, rec)

		_, err := d.svc.CopyQuote(context.Background(), "zzz")

		assert.True(t, domain.IsNotFound(err))
	})
}

func TestQuoteService_DeleteQuote(t *testing.T) {
	rec := domain.QuoteRecord{ID: "a", Text: "t", Tags: []string{}}

	t.Run("confirmed", func(t *testing.T) {
		d := newServiceDeps(t, rec)
		confirmer := mocks.NewMockConfirmer(t)
		confirmer.EXPECT().Confirm(mock.Anything, DeletePrompt).Return(true, nil)

		removed, err := d.svc.DeleteQuote(context.Background(), "a", confirmer)

		require.NoError(t, err)
		assert.True(t, removed)
		assert.Zero(t, d.store.Len())
	})

	t.Run("declined", func(t *testing.T) {
		d := newServiceDeps(t, rec)
		confirmer := mocks.NewMockConfirmer(t)
		confirmer.EXPECT().Confirm(mock.Anything, DeletePrompt).Return(false, nil)

		_, err := d.svc.DeleteQuote(context.Background(), "a", confirmer)

		require.ErrorIs(t, err, ErrDeclined)
		assert.Equal(t, 1, d.store.Len())
	})

	t.Run("unknown id", func(t *testing.T) {
		d := newServiceDeps(t, rec)

		_, err := d.svc.DeleteQuote(context.Background(), "zzz", nil)

		assert.True(t, domain.IsNotFound(err))
	})
}
