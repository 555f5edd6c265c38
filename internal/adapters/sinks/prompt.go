package sinks

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jsamuelsen/quotebook/internal/ports"
)

// Prompt implements ports.Confirmer by asking on a terminal.
type Prompt struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompt returns a confirmer that writes the question to out and reads
// the answer from in.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: bufio.NewReader(in), out: out}
}

// Confirm returns true for "y" or "yes" in any case. Anything else,
// including end of input, is a no.
func (p *Prompt) Confirm(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if _, err := fmt.Fprintf(p.out, "%s [y/N]: ", message); err != nil {
		return false, err
	}

	line, err := p.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Always returns a confirmer that answers every question with answer.
func Always(answer bool) ports.Confirmer {
	return ports.ConfirmerFunc(func(context.Context, string) (bool, error) {
		return answer, nil
	})
}
