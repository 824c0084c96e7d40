package cmd

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// isTerminal reports whether w is an *os.File attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func stderrTTY() bool {
	return isTerminal(os.Stderr)
}

// resolveColor determines whether to colour output written to out.
// colorFlag is "auto", "always" or "never" in any case; noColor wins over everything.
// NO_COLOR in the environment turns auto off.
func resolveColor(colorFlag string, noColor bool, out io.Writer) bool {
	if noColor {
		return false
	}
	switch strings.ToLower(colorFlag) {
	case "always":
		return true
	case "never":
		return false
	default: // "auto"
		if _, set := os.LookupEnv("NO_COLOR"); set {
			return false
		}
		return isTerminal(out)
	}
}
