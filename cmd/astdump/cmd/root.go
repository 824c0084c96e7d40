package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/corey/astdump/internal/adapters/treesitter"
	"github.com/corey/astdump/internal/app"
	"github.com/corey/astdump/internal/config"
	"github.com/corey/astdump/internal/render"
)

// rootCommand holds the flags and the state shared by every subcommand.
type rootCommand struct {
	fs     afero.Fs
	logger *logrus.Logger
	cfg    *config.Config

	configPath  string
	grammarDirs []string
	logLevel    string
	color       string
	noColor     bool
	columns     string
	depth       int

	cmd *cobra.Command
}

func newRootCommand(fs afero.Fs) *rootCommand {
	c := &rootCommand{fs: fs, logger: logrus.New()}

	c.cmd = &cobra.Command{
		Use:   "astdump <file>",
		Short: "Print the syntax tree of a source file",
		Long: `Parse a source file with a tree-sitter grammar loaded at runtime and print
every node of the syntax tree, one per line, as "kind [row:col]".

The language is chosen by file extension: .py python, .rs rust, .ts typescript,
.tsx tsx. More languages can be declared in .astdump.yaml. Put "--" before a
file named like a subcommand: astdump -- version`,
		Args:              cobra.ExactArgs(1),
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		RunE:              c.runDump,
	}

	flags := c.cmd.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default ./"+config.DefaultFile+")")
	flags.StringArrayVar(&c.grammarDirs, "grammar-dir", nil, "directory holding grammar shared libraries (repeatable, searched first)")
	flags.StringVar(&c.logLevel, "log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
	flags.StringVar(&c.color, "color", config.DefaultColor, "colour output: auto, always, never")
	flags.BoolVar(&c.noColor, "no-color", false, "disable colour output")
	flags.StringVar(&c.columns, "columns", config.DefaultColumns, "column unit: byte or char")
	flags.IntVar(&c.depth, "depth", 0, "deepest tree level to print (0 = unlimited)")

	c.cmd.AddCommand(
		newWatchCommand(c),
		newGrammarCommand(c),
		newVersionCommand(),
	)
	return c
}

// setup loads the config file and lets explicitly set flags override it.
func (c *rootCommand) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.fs, c.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	if flags.Changed("color") {
		cfg.Color = c.color
	}
	if flags.Changed("columns") {
		cfg.Columns = c.columns
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := logrus.ParseLevel(cfg.LogLevel)
	c.logger.SetOutput(cmd.ErrOrStderr())
	c.logger.SetLevel(level)
	c.logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:    !stderrTTY() || c.noColor,
		DisableTimestamp: true,
	})

	c.cfg = cfg
	c.logger.WithField("config", cfg.Path).Debug("configuration loaded")
	return nil
}

// grammarPaths lists grammar directories in search order: flags, config
// file, then the project and home defaults.
func (c *rootCommand) grammarPaths() []string {
	var paths []string
	paths = append(paths, c.grammarDirs...)
	paths = append(paths, c.cfg.GrammarPaths...)
	return append(paths, treesitter.DefaultGrammarPaths(projectRoot())...)
}

func (c *rootCommand) languages() []treesitter.Language {
	return c.cfg.ApplyLanguages(treesitter.DefaultLanguages())
}

func (c *rootCommand) newRegistry() *treesitter.Registry {
	paths := c.grammarPaths()
	return treesitter.NewRegistry(treesitter.NewDynamicLoader(paths), paths, c.languages(), c.logger)
}

func (c *rootCommand) newInspector() (*app.Inspector, error) {
	columns, err := render.ParseColumnMode(c.cfg.Columns)
	if err != nil {
		return nil, err
	}
	return app.New(app.Config{
		Fs:       c.fs,
		Registry: c.newRegistry(),
		Printer: &render.Printer{
			Columns: columns,
			Color:   resolveColor(c.cfg.Color, c.noColor, c.cmd.OutOrStdout()),
		},
		MaxDepth: c.depth,
		Log:      c.logger,
	}), nil
}

func (c *rootCommand) runDump(cmd *cobra.Command, args []string) error {
	in, err := c.newInspector()
	if err != nil {
		return err
	}
	return in.Inspect(args[0], cmd.OutOrStdout())
}

// projectRoot returns the working directory, or "." when it can't be determined.
func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}

// Execute runs the CLI against the process arguments and returns the exit code.
func Execute() int {
	return run(os.Args[1:], colorable.NewColorableStdout(), os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	c := newRootCommand(afero.NewOsFs())
	c.cmd.SetArgs(args)
	c.cmd.SetOut(stdout)
	c.cmd.SetErr(stderr)

	if err := c.cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return ExitCode(err)
	}
	return exitOK
}
