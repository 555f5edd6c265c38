package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraft_UnmarshalJSON_Shapes(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		verify func(t *testing.T, d Draft)
	}{
		{
			name:  "canonical record",
			input: `{"id":"a1","text":"Hello","author":"A","tags":["x","y"],"fav":true,"created":10,"updated":20}`,
			verify: func(t *testing.T, d Draft) {
				assert.Equal(t, LooseString("a1"), d.ID)
				assert.Equal(t, LooseString("Hello"), d.Text)
				assert.Equal(t, []string{"x", "y"}, d.Tags.Resolve())
				assert.True(t, bool(d.Fav))
				assert.Equal(t, Timestamp(10), d.Created)
				assert.Equal(t, Timestamp(20), d.Updated)
			},
		},
		{
			name:  "numeric id and text",
			input: `{"id":1712345678901,"text":42}`,
			verify: func(t *testing.T, d Draft) {
				assert.Equal(t, LooseString("1712345678901"), d.ID)
				assert.Equal(t, LooseString("42"), d.Text)
			},
		},
		{
			name:  "nulls count as absent",
			input: `{"id":null,"text":"x","author":null,"tags":null,"fav":null,"created":null,"updated":null}`,
			verify: func(t *testing.T, d Draft) {
				assert.Empty(t, d.ID)
				assert.Empty(t, d.Author)
				assert.Equal(t, []string{}, d.Tags.Resolve())
				assert.False(t, bool(d.Fav))
				assert.Zero(t, d.Created)
				assert.Zero(t, d.Updated)
			},
		},
		{
			name:  "comma separated tags",
			input: `{"tags":" a, ,b ,, c"}`,
			verify: func(t *testing.T, d Draft) {
				assert.False(t, d.Tags.IsList)
				assert.Equal(t, []string{"a", "b", "c"}, d.Tags.Resolve())
			},
		},
		{
			name:  "list tags drop blanks only",
			input: `{"tags":["Go ","", "  ","go"]}`,
			verify: func(t *testing.T, d Draft) {
				assert.True(t, d.Tags.IsList)
				assert.Equal(t, []string{"Go ", "go"}, d.Tags.Resolve())
			},
		},
		{
			name:  "fav as text",
			input: `{"fav":" TRUE "}`,
			verify: func(t *testing.T, d Draft) {
				assert.True(t, bool(d.Fav))
			},
		},
		{
			name:  "fav as other text",
			input: `{"fav":"yes"}`,
			verify: func(t *testing.T, d Draft) {
				assert.False(t, bool(d.Fav))
			},
		},
		{
			name:  "fav as number",
			input: `{"fav":1}`,
			verify: func(t *testing.T, d Draft) {
				assert.True(t, bool(d.Fav))
			},
		},
		{
			name:  "timestamps as strings",
			input: `{"created":"2024-03-01","updated":"1709251200000"}`,
			verify: func(t *testing.T, d Draft) {
				want := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
				assert.Equal(t, Timestamp(want), d.Created)
				assert.Equal(t, Timestamp(1709251200000), d.Updated)
			},
		},
		{
			name:  "float timestamp truncates",
			input: `{"created":1709251200000.9}`,
			verify: func(t *testing.T, d Draft) {
				assert.Equal(t, Timestamp(1709251200000), d.Created)
			},
		},
		{
			name:  "unparseable date is absent",
			input: `{"created":"last tuesday"}`,
			verify: func(t *testing.T, d Draft) {
				assert.Zero(t, d.Created)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Draft
			require.NoError(t, json.Unmarshal([]byte(tt.input), &d))
			tt.verify(t, d)
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	rfc := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	local := time.Date(2024, 5, 6, 7, 8, 0, 0, time.Local)

	tests := []struct {
		name  string
		input string
		want  Timestamp
	}{
		{"empty", "", 0},
		{"blank", "   ", 0},
		{"numeric", "1234", 1234},
		{"date only is UTC midnight", "2024-05-06", Timestamp(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC).UnixMilli())},
		{"datetime-local", "2024-05-06T07:08", Timestamp(local.UnixMilli())},
		{"rfc3339", rfc.Format(time.RFC3339), Timestamp(rfc.UnixMilli())},
		{"garbage", "soon", 0},
		{"beyond int64", "1e300", 0},
		{"below int64", "-9.3e18", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTimestamp(tt.input))
		})
	}
}

func TestTimestamp_OutOfRangeIsAbsent(t *testing.T) {
	for _, input := range []string{`1e300`, `-1e300`, `9223372036854775808`} {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(input), &ts))
		assert.Zero(t, ts, input)
	}

	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`9007199254740992`), &ts))
	assert.Equal(t, Timestamp(9007199254740992), ts)
}

func TestTimestamp_Or(t *testing.T) {
	assert.Equal(t, int64(7), Timestamp(0).Or(7))
	assert.Equal(t, int64(3), Timestamp(3).Or(7))
}

func TestParseFlag(t *testing.T) {
	assert.True(t, bool(ParseFlag("true")))
	assert.True(t, bool(ParseFlag(" True")))
	assert.False(t, bool(ParseFlag("1")))
	assert.False(t, bool(ParseFlag("")))
}

func TestDraft_RejectsWrongShapes(t *testing.T) {
	var d Draft
	require.Error(t, json.Unmarshal([]byte(`{"tags":{"a":1}}`), &d))
	require.Error(t, json.Unmarshal([]byte(`{"text":["x"]}`), &d))
}

func TestDraftFromRecord(t *testing.T) {
	rec := QuoteRecord{ID: "x", Text: "t", Author: "a", Tags: []string{"k"}, Fav: true, Created: 1, Updated: 2}

	d := DraftFromRecord(rec)

	assert.Equal(t, LooseString("x"), d.ID)
	assert.Equal(t, []string{"k"}, d.Tags.Resolve())
	assert.True(t, bool(d.Fav))
	assert.Equal(t, Timestamp(2), d.Updated)
}

func TestDraft_Record(t *testing.T) {
	var d Draft
	require.NoError(t, json.Unmarshal([]byte(
		`{"id":12,"text":" Keep going ","author":null,"tags":"x, ,y","fav":"TRUE","created":"2024-01-01"}`), &d))

	rec := d.Record()

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, QuoteRecord{
		ID:      "12",
		Text:    "Keep going",
		Author:  "",
		Tags:    []string{"x", "y"},
		Fav:     true,
		Created: created,
		Updated: created,
	}, rec)

	assert.Equal(t, QuoteRecord{Tags: []string{}}, Draft{}.Record())
}
