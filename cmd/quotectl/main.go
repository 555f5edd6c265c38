// Package main provides quotectl, the command-line front end of the quote
// collection.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jsamuelsen/quotebook/internal/app"
	"github.com/jsamuelsen/quotebook/internal/domain"
)

// Build-time variables, injected via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

// Exit codes.
const (
	exitUserError = 1
	exitSysError  = 2
)

func main() {
	root := newRootCmd(newEnv())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode separates mistakes the user can fix from failures of the
// medium or the environment.
func exitCode(err error) int {
	switch {
	case domain.IsValidation(err), domain.IsNotFound(err), domain.IsFormat(err),
		domain.IsParse(err), domain.IsForbidden(err), errors.Is(err, app.ErrDeclined):
		return exitUserError
	default:
		return exitSysError
	}
}
