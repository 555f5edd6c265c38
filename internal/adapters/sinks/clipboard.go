// Package sinks implements the outbound ports that leave the process:
// the system clipboard, export files on disk and interactive confirmation.
package sinks

import (
	"context"
	"errors"

	"github.com/atotto/clipboard"
)

// ErrNoClipboard is returned when the platform has no usable clipboard
// (no xclip/xsel/wl-copy on Linux, a headless session, and so on).
var ErrNoClipboard = errors.New("clipboard unsupported on this system")

// clipboardWriteAll is swapped in tests.
var clipboardWriteAll = clipboard.WriteAll

// Clipboard implements ports.Clipboard on the system clipboard.
type Clipboard struct{}

// NewClipboard returns the system clipboard sink.
func NewClipboard() *Clipboard {
	return &Clipboard{}
}

// WriteText replaces the clipboard contents with text.
func (c *Clipboard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if clipboard.Unsupported {
		return ErrNoClipboard
	}

	return clipboardWriteAll(text)
}
