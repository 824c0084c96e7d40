package cmd

import (
	"errors"

	"github.com/corey/astdump/internal/adapters/treesitter"
	"github.com/corey/astdump/internal/app"
)

// Process exit codes.
const (
	exitOK          = 0
	exitFailure     = 1 // usage errors and anything not listed below
	exitIO          = 3
	exitUnsupported = 4
	exitGrammar     = 5
	exitParse       = 6
)

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, app.ErrIO):
		return exitIO
	case errors.Is(err, treesitter.ErrUnsupportedExtension):
		return exitUnsupported
	case errors.Is(err, treesitter.ErrModuleNotFound),
		errors.Is(err, treesitter.ErrSymbolMissing),
		errors.Is(err, treesitter.ErrAbiMismatch):
		return exitGrammar
	case errors.Is(err, treesitter.ErrParseFailure):
		return exitParse
	default:
		return exitFailure
	}
}
