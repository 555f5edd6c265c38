package sinks

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/atotto/clipboard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClipboard_WriteText(t *testing.T) {
	if clipboard.Unsupported {
		t.Skip("no clipboard on this system")
	}

	var got string
	old := clipboardWriteAll
	clipboardWriteAll = func(s string) error { got = s; return nil }
	defer func() { clipboardWriteAll = old }()

	require.NoError(t, NewClipboard().WriteText(context.Background(), `"Iterate fast." — —`))
	assert.Equal(t, `"Iterate fast." — —`, got)
}

func TestClipboard_PropagatesFailure(t *testing.T) {
	if clipboard.Unsupported {
		t.Skip("no clipboard on this system")
	}

	old := clipboardWriteAll
	clipboardWriteAll = func(string) error { return errors.New("exec: xclip not found") }
	defer func() { clipboardWriteAll = old }()

	require.Error(t, NewClipboard().WriteText(context.Background(), "x"))
}

func TestClipboard_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, NewClipboard().WriteText(ctx, "x"), context.Canceled)
}

func TestDirectory_WriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	sink := NewDirectory(dir)

	path, err := sink.WriteFile(context.Background(), "stellar_quotes.json", []byte("[]"))

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "stellar_quotes.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestDirectory_RejectsPathNames(t *testing.T) {
	sink := NewDirectory(t.TempDir())

	for _, name := range []string{"", "../escape.json", "sub/file.json", ".hidden"} {
		_, err := sink.WriteFile(context.Background(), name, []byte("[]"))
		assert.Error(t, err, name)
	}
}

func TestFixedPath_IgnoresSuggestedName(t *testing.T) {
	target := filepath.Join(t.TempDir(), "backup.json")

	path, err := NewFixedPath(target).WriteFile(context.Background(), "stellar_quotes.json", []byte("[]"))

	require.NoError(t, err)
	assert.Equal(t, target, path)
	assert.FileExists(t, target)
}

func TestStream_WriteFile(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	_, err = NewStream(f).WriteFile(context.Background(), "ignored", []byte("[]"))
	require.NoError(t, err)

	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestPrompt_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yep\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompt(strings.NewReader(tt.input), &out)

			got, err := p.Confirm(context.Background(), "Delete this quote?")

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Delete this quote? [y/N]: ", out.String())
		})
	}
}

func TestAlways(t *testing.T) {
	yes, err := Always(true).Confirm(context.Background(), "?")
	require.NoError(t, err)
	assert.True(t, yes)

	no, err := Always(false).Confirm(context.Background(), "?")
	require.NoError(t, err)
	assert.False(t, no)
}
