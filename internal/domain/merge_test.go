package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func sampleBase() []QuoteRecord {
	return []QuoteRecord{
		{ID: "abc", Text: "First", Author: "A", Tags: []string{"x"}, Created: 1, Updated: 1},
		{ID: "def", Text: "Second", Author: "", Tags: []string{}, Fav: true, Created: 2, Updated: 5},
	}
}

func TestMerge_IntoEmptyBase(t *testing.T) {
	n := newTestNormalizer(FormatNumeric)

	result := Merge(nil, []Draft{{Text: "Hello", Author: "A"}}, n)

	require.Len(t, result.Records, 1)
	rec := result.Records[0]
	assert.Equal(t, "Hello", rec.Text)
	assert.Equal(t, "A", rec.Author)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, rec.Created, rec.Updated)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 0, result.BaseCount())
}

func TestMerge_WhitespaceDraftLeavesBaseUnchanged(t *testing.T) {
	n := newTestNormalizer(FormatNumeric)
	base := sampleBase()

	result := Merge(base, []Draft{{Text: "  "}}, n)

	if diff := cmp.Diff(base, result.Records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []ValidationSkip{{Index: 0, Reason: "text is empty"}}, result.Skipped)
}

func TestMerge_DoesNotAliasCallerSlices(t *testing.T) {
	n := newTestNormalizer(FormatNumeric)
	base := sampleBase()

	result := Merge(base, []Draft{{Text: "new"}}, n)
	result.Records[0].Tags[0] = "mutated"
	result.Records[0].Text = "mutated"

	assert.Equal(t, "x", base[0].Tags[0])
	assert.Equal(t, "First", base[0].Text)
}

func TestMerge_KeepsDuplicateContent(t *testing.T) {
	n := newTestNormalizer(FormatNumeric)
	base := []QuoteRecord{{ID: "1", Text: "Same", Author: "A", Tags: []string{}}}

	result := Merge(base, []Draft{{Text: "Same", Author: "A"}, {Text: "Same", Author: "A"}}, n)

	require.Len(t, result.Records, 3)
	assert.NotEqual(t, result.Records[1].ID, result.Records[2].ID)
}

func TestMergeDocument(t *testing.T) {
	drafts := []Draft{{Text: "new", Tags: TagsFromString("a,b")}}

	tests := []struct {
		name      string
		base      string
		wantBase  int
		wantCheck func(error) bool
	}{
		{name: "blank base", base: "  \n"},
		{name: "empty array", base: "[]"},
		{name: "existing records", base: `[{"id":"a","text":"t","author":"","tags":[],"fav":false,"created":1,"updated":1}]`, wantBase: 1},
		{name: "loosely typed records", base: `[{"id":1,"text":"t"},{"created":"2024-01-01"},{"tags":"x, y"},{"fav":"true"}]`, wantBase: 4},
		{name: "elements that are not quotes", base: `[3,"x",{"tags":{"a":1}}]`, wantBase: 3},
		{name: "object is rejected", base: `{"id":"a"}`, wantCheck: IsFormat},
		{name: "null is rejected", base: `null`, wantCheck: IsFormat},
		{name: "malformed JSON", base: `[{"id":`, wantCheck: IsParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MergeDocument([]byte(tt.base), drafts, newTestNormalizer(FormatNumeric))

			if tt.wantCheck != nil {
				require.Error(t, err)
				assert.True(t, tt.wantCheck(err), "unexpected error kind: %v", err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantBase, result.Base)
			require.Equal(t, 1, result.Added())
			assert.Equal(t, "Unknown", result.New[0].Author)

			var elements []json.RawMessage
			require.NoError(t, json.Unmarshal(result.Document, &elements))
			assert.Len(t, elements, tt.wantBase+1)
		})
	}
}

func TestMergeDocument_KeepsBaseElementsVerbatim(t *testing.T) {
	base := []string{
		`{"id":"a","text":"old","source":"book"}`,
		`{"id": 7, "text": "spaced  out", "tags": "x, y", "fav": "true"}`,
		`{
      "id": "c",
      "text": "multi line"
    }`,
	}
	doc := "[" + strings.Join(base, ", ") + "]"

	result, err := MergeDocument([]byte(doc), []Draft{{Text: "new"}, {Text: " "}}, newTestNormalizer(FormatNumeric))
	require.NoError(t, err)

	var elements []json.RawMessage
	require.NoError(t, json.Unmarshal(result.Document, &elements))
	require.Len(t, elements, len(base)+1)

	for i, want := range base {
		assert.Equal(t, want, string(elements[i]), "base element %d", i)
	}

	assert.Equal(t, 3, result.Base)
	assert.Equal(t, []ValidationSkip{{Index: 1, Reason: "text is empty"}}, result.Skipped)

	added, err := DecodeCollection([]byte("[" + string(elements[3]) + "]"))
	require.NoError(t, err)
	assert.Equal(t, "new", added[0].Text)
	assert.NotContains(t, []string{"a", "7", "c"}, added[0].ID)
}

func TestMergeDocument_AvoidsLooseBaseIDs(t *testing.T) {
	n := newTestNormalizer(FormatNumeric)
	taken := (&IDGenerator{Format: FormatNumeric, Now: fixedClock, IntN: sequenceIntN()}).Generate(IDSet{})

	// The base holds the first candidate as a JSON number.
	result, err := MergeDocument([]byte(`[{"id":`+taken+`,"text":"old"}]`), []Draft{{Text: "new"}}, n)

	require.NoError(t, err)
	require.Len(t, result.New, 1)
	assert.NotEqual(t, taken, result.New[0].ID)
}

func TestMergeDocument_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := recordsGen().Draw(t, "base")
		drafts := rapid.SliceOfN(draftGen(), 0, 20).Draw(t, "drafts")
		n := &Normalizer{IDs: &IDGenerator{Format: FormatNumeric, Now: fixedClock}, Now: fixedClock}

		doc, err := EncodeCollection(base)
		if err != nil {
			t.Fatal(err)
		}

		result, err := MergeDocument(doc, drafts, n)
		if err != nil {
			t.Fatal(err)
		}

		var before, after []json.RawMessage
		if err := json.Unmarshal(doc, &before); err != nil {
			t.Fatal(err)
		}
		if err := json.Unmarshal(result.Document, &after); err != nil {
			t.Fatal(err)
		}

		if len(after) != len(before)+result.Added() {
			t.Fatalf("got %d elements, want %d", len(after), len(before)+result.Added())
		}

		// The first len(base) elements are the base, byte for byte.
		for i := range before {
			if string(before[i]) != string(after[i]) {
				t.Fatalf("base element %d changed:\n%s\n%s", i, before[i], after[i])
			}
		}

		added, err := DecodeCollection(result.Document)
		if err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff(result.New, added[len(base):], cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("new records changed:\n%s", diff)
		}
	})
}

func recordsGen() *rapid.Generator[[]QuoteRecord] {
	return rapid.Custom(func(t *rapid.T) []QuoteRecord {
		ids := rapid.SliceOfDistinct(rapid.StringMatching(`[0-9]{1,16}`), func(s string) string { return s }).Draw(t, "ids")
		records := make([]QuoteRecord, len(ids))
		for i, id := range ids {
			records[i] = QuoteRecord{
				ID:      id,
				Text:    rapid.StringMatching(`[a-z ]{1,12}`).Draw(t, "text"),
				Tags:    []string{},
				Fav:     rapid.Bool().Draw(t, "fav"),
				Created: rapid.Int64Range(0, 10).Draw(t, "created"),
			}
		}

		return records
	})
}

func TestMerge_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := recordsGen().Draw(t, "base")
		drafts := rapid.SliceOfN(draftGen(), 0, 20).Draw(t, "drafts")
		n := &Normalizer{IDs: &IDGenerator{Format: FormatNumeric, Now: fixedClock}, Now: fixedClock}

		result := Merge(base, drafts, n)

		nonEmpty := 0
		for _, d := range drafts {
			if strings.TrimSpace(string(d.Text)) != "" {
				nonEmpty++
			}
		}

		// Length is base plus every draft with text.
		assert.Len(t, result.Records, len(base)+nonEmpty)

		// Base is an unchanged prefix.
		if diff := cmp.Diff(base, result.Records[:len(base)]); diff != "" {
			t.Fatalf("base prefix changed:\n%s", diff)
		}

		// Ids are pairwise distinct.
		seen := IDSet{}
		for _, r := range result.Records {
			if seen.Has(r.ID) {
				t.Fatalf("duplicate id %q", r.ID)
			}
			seen.Add(r.ID)
		}
	})
}
