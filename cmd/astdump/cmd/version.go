package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/corey/astdump/internal/adapters/treesitter"
)

// Set at build time with -ldflags "-X github.com/corey/astdump/cmd/astdump/cmd.version=...".
var version = "dev"

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and supported grammar ABI range",
		Args:  cobra.NoArgs,
		// No config needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "astdump %s\n", version)
			fmt.Fprintf(out, "go:       %s\n", runtime.Version())
			fmt.Fprintf(out, "platform: %s\n", treesitter.PlatformString())
			fmt.Fprintf(out, "abi:      %d-%d\n", tree_sitter.MIN_COMPATIBLE_LANGUAGE_VERSION, tree_sitter.LANGUAGE_VERSION)
			return nil
		},
	}
}
