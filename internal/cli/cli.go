// Package cli holds the argument and output plumbing shared by the
// command line tools.
package cli

import (
	"errors"
	"flag"
	"io"

	"github.com/chatman-media/timeline/internal/models"
	"github.com/chatman-media/timeline/internal/storage"
)

// Exit codes
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Parse parses fs allowing flags before, between and after positional
// arguments, and returns the positional arguments in order. Everything after
// a "--" terminator is positional.
func Parse(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// UsageCode maps a Parse error to an exit code. -h is not an error.
func UsageCode(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return ExitOK
	}
	return ExitUsage
}

// Fail prints the top-level error document and returns ExitError
func Fail(stdout io.Writer, msg string) int {
	_ = storage.WriteJSON(stdout, models.ErrorResult{Error: msg})
	return ExitError
}
