// astdump prints the concrete syntax tree of a source file using tree-sitter
// grammars loaded from shared libraries at runtime.
package main

import (
	"os"

	"github.com/corey/astdump/cmd/astdump/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
