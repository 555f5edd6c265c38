package acl

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotebook/internal/adapters/clients"
	"github.com/jsamuelsen/quotebook/internal/domain"
	"github.com/jsamuelsen/quotebook/internal/platform/config"
)

func testClient(t *testing.T, baseURL string) *clients.Client {
	t.Helper()

	client, err := clients.New(&clients.Config{
		BaseURL:     baseURL,
		ServiceName: "library",
		Timeout:     2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
	})
	require.NoError(t, err)

	return client
}

func newTestLibrary(t *testing.T, handler http.HandlerFunc) *Library {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewLibrary(LibraryConfig{Client: testClient(t, server.URL)})
}

func serveBody(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestNewLibrary_PanicsWithoutClient(t *testing.T) {
	assert.Panics(t, func() { NewLibrary(LibraryConfig{}) })
}

func TestLibrary_FetchDrafts_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantText []string
	}{
		{
			name:     "bare array",
			body:     `[{"id":"1","text":"One"},{"id":"2","text":"Two"}]`,
			wantText: []string{"One", "Two"},
		},
		{
			name:     "results envelope",
			body:     `{"count":1,"results":[{"_id":"q1","content":"Remote"}]}`,
			wantText: []string{"Remote"},
		},
		{
			name:     "quotes envelope",
			body:     `{"quotes":[]}`,
			wantText: []string{},
		},
		{
			name:     "single quote",
			body:     `{"_id":"q1","content":"Alone","author":"Someone"}`,
			wantText: []string{"Alone"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := newTestLibrary(t, serveBody(http.StatusOK, tt.body))

			drafts, err := lib.FetchDrafts(context.Background(), "classics")

			require.NoError(t, err)
			texts := make([]string, 0, len(drafts))
			for _, d := range drafts {
				texts = append(texts, string(d.Text))
			}
			assert.Equal(t, tt.wantText, texts)
		})
	}
}

func TestLibrary_FetchDrafts_TranslatesFields(t *testing.T) {
	body := `[{
		"_id": "abc",
		"content": "Stay curious.",
		"author": "Someone",
		"tags": ["wisdom", " "],
		"fav": "true",
		"dateAdded": "2024-01-02"
	}]`

	var path string
	lib := newTestLibrary(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		serveBody(http.StatusOK, body)(w, r)
	})

	drafts, err := lib.FetchDrafts(context.Background(), "  my list ")

	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "/collections/my%20list", path)

	d := drafts[0]
	assert.Equal(t, domain.LooseString("abc"), d.ID)
	assert.Equal(t, domain.LooseString("Stay curious."), d.Text)
	assert.Equal(t, domain.LooseString("Someone"), d.Author)
	assert.Equal(t, []string{"wisdom"}, d.Tags.Resolve())
	assert.True(t, bool(d.Fav))
	assert.Equal(t, int64(1704153600000), int64(d.Created))
	assert.Zero(t, d.Updated)
}

func TestLibrary_FetchDrafts_PrefersNativeFields(t *testing.T) {
	lib := newTestLibrary(t, serveBody(http.StatusOK,
		`[{"id":"n1","text":"Native","created":5,"dateAdded":"2024-01-02"}]`))

	drafts, err := lib.FetchDrafts(context.Background(), "x")

	require.NoError(t, err)
	assert.Equal(t, domain.LooseString("n1"), drafts[0].ID)
	assert.Equal(t, domain.Timestamp(5), drafts[0].Created)
}

func TestLibrary_FetchDrafts_BadPayloads(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		check func(error) bool
	}{
		{"empty", "  ", domain.IsFormat},
		{"scalar", `42`, domain.IsFormat},
		{"truncated", `[{"text":"x"`, domain.IsParse},
		{"wrong element", `["just a string"]`, domain.IsFormat},
		{"object without quotes", `{"count":0}`, domain.IsFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lib := newTestLibrary(t, serveBody(http.StatusOK, tt.body))

			_, err := lib.FetchDrafts(context.Background(), "x")

			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}

func TestLibrary_FetchDrafts_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		check  func(error) bool
	}{
		{http.StatusNotFound, `{"error":{"code":"NOT_FOUND","message":"no such collection"}}`, domain.IsNotFound},
		{http.StatusConflict, ``, domain.IsConflict},
		{http.StatusBadRequest, `{"error":{"message":"bad","details":{"ref":"too long"}}}`, domain.IsValidation},
		{http.StatusUnauthorized, ``, domain.IsForbidden},
		{http.StatusForbidden, `{"message":"private"}`, domain.IsForbidden},
		{http.StatusTooManyRequests, ``, domain.IsUnavailable},
		{http.StatusTeapot, ``, domain.IsValidation},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			lib := newTestLibrary(t, serveBody(tt.status, tt.body))

			_, err := lib.FetchDrafts(context.Background(), "x")

			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}
}

func TestLibrary_FetchDrafts_ServerErrorIsUnavailable(t *testing.T) {
	lib := newTestLibrary(t, serveBody(http.StatusInternalServerError, ``))

	_, err := lib.FetchDrafts(context.Background(), "x")

	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
}

func TestLibrary_FetchDrafts_EmptyRef(t *testing.T) {
	lib := newTestLibrary(t, serveBody(http.StatusOK, `[]`))

	_, err := lib.FetchDrafts(context.Background(), "   ")

	assert.True(t, domain.IsValidation(err))
}

func TestLibrary_Check(t *testing.T) {
	healthy := newTestLibrary(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultHealthPath, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, healthy.Check(context.Background()))
	assert.Equal(t, "library", healthy.Name())

	sick := newTestLibrary(t, serveBody(http.StatusNotFound, ``))
	require.Error(t, sick.Check(context.Background()))
}

func TestMapHTTPError_ClientErrors(t *testing.T) {
	tests := []struct {
		err   error
		check func(error) bool
	}{
		{clients.ErrCircuitOpen, domain.IsUnavailable},
		{clients.ErrMaxRetriesExceeded, domain.IsUnavailable},
		{clients.ErrResponseTooLarge, domain.IsFormat},
		{errors.New("dial tcp: refused"), domain.IsUnavailable},
	}

	for _, tt := range tests {
		got := MapHTTPError(nil, tt.err, "library", "fetch", "x")
		assert.True(t, tt.check(got), "%v mapped to %v", tt.err, got)
	}

	assert.True(t, domain.IsUnavailable(MapHTTPError(nil, nil, "library", "fetch", "x")))
	assert.NoError(t, MapHTTPError(&http.Response{StatusCode: http.StatusOK}, nil, "library", "fetch", "x"))
}

func TestParseErrorResponse(t *testing.T) {
	nested := ParseErrorResponse(strings.NewReader(`{"error":{"code":"NOT_FOUND","message":"gone"}}`))
	require.NotNil(t, nested)
	assert.Equal(t, "NOT_FOUND", nested.GetCode())
	assert.Equal(t, "gone", nested.GetMessage())

	flat := ParseErrorResponse(strings.NewReader(`{"code":"X","message":"flat"}`))
	require.NotNil(t, flat)
	assert.Equal(t, "X", flat.GetCode())
	assert.Equal(t, "flat", flat.GetMessage())

	assert.Nil(t, ParseErrorResponse(strings.NewReader(`not json`)))
	assert.Nil(t, ParseErrorResponse(strings.NewReader(`{}`)))
	assert.Nil(t, ParseErrorResponse(nil))
}

func TestTranslateSlice_StopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")

	_, err := TranslateSlice([]int{1, 2, 3}, func(n *int) (string, error) {
		if *n == 2 {
			return "", boom
		}
		return "ok", nil
	})

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "item 1")
}
