package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	fsw "github.com/corey/astdump/internal/adapters/fsnotify"
)

func newWatchCommand(root *rootCommand) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <dir>",
		Short: "Re-print the tree of each source file under dir when it changes",
		Long: `Watch a directory tree and print the syntax tree of every supported file
that is created or modified. Deletions and failures are logged; the watch keeps
running until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := root.newInspector()
			if err != nil {
				return err
			}
			w, err := fsw.NewWatcher(root.cfg.WatchDebounce, root.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return in.Watch(ctx, args[0], w, cmd.OutOrStdout())
		},
	}
}
