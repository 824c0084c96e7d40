package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/astdump/internal/adapters/treesitter"
)

func newGrammarCommand(root *rootCommand) *cobra.Command {
	grammarCmd := &cobra.Command{
		Use:   "grammar",
		Short: "Inspect the grammars astdump can load",
		Long:  "List known languages, show where their shared libraries are looked up, and test-load them.",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List languages and whether their grammar is installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGrammarList(root, cmd)
		},
	}

	var load bool
	infoCmd := &cobra.Command{
		Use:   "info <language>",
		Short: "Show details about a grammar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGrammarInfo(root, cmd, args[0], load)
		},
	}
	infoCmd.Flags().BoolVar(&load, "load", false, "load the grammar and report its ABI version")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Show grammar search paths in lookup order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, p := range root.grammarPaths() {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	grammarCmd.AddCommand(listCmd, infoCmd, pathCmd)
	return grammarCmd
}

func installed(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func runGrammarList(root *rootCommand, cmd *cobra.Command) error {
	reg := root.newRegistry()
	out := cmd.OutOrStdout()

	known := make(map[string]bool)
	for _, lang := range reg.Languages() {
		known[lang.LibraryBase()] = true
		path := reg.ModulePath(lang)
		status := "  "
		if installed(path) {
			status = "I "
		}
		fmt.Fprintf(out, "%s%-12s %-16s %s\n", status, lang.Name, strings.Join(lang.Extensions, " "), path)
	}

	// Libraries on disk that no language maps to; declare them in the config file.
	var unmapped []string
	for _, name := range treesitter.NewDynamicLoader(root.grammarPaths()).InstalledGrammars() {
		if !known[name] {
			unmapped = append(unmapped, name)
		}
	}
	if len(unmapped) > 0 {
		fmt.Fprintf(out, "\nUnmapped libraries: %s\n", strings.Join(unmapped, ", "))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "I = installed")
	fmt.Fprintf(out, "Search paths: %s\n", strings.Join(root.grammarPaths(), ", "))
	return nil
}

func runGrammarInfo(root *rootCommand, cmd *cobra.Command, name string, load bool) error {
	reg := root.newRegistry()
	lang, ok := reg.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", treesitter.ErrUnsupportedExtension, name)
	}

	out := cmd.OutOrStdout()
	path := reg.ModulePath(lang)
	fmt.Fprintf(out, "Grammar:    %s\n", lang.Name)
	fmt.Fprintf(out, "Extensions: %s\n", strings.Join(lang.Extensions, ", "))
	symbol := treesitter.CSymbolName(lang.Name)
	if lang.Symbol != "" {
		symbol = lang.Symbol
	}
	fmt.Fprintf(out, "C symbol:   %s (fallback %s)\n", symbol, treesitter.GenericSymbol)
	fmt.Fprintf(out, "Module:     %s\n", path)
	if installed(path) {
		fmt.Fprintln(out, "Status:     installed")
	} else {
		fmt.Fprintln(out, "Status:     not installed")
	}

	if info, ok := treesitter.BuiltinManifest().Grammars[lang.Name]; ok {
		fmt.Fprintf(out, "Version:    %s\n", info.Version)
		fmt.Fprintf(out, "Repository: %s\n", info.RepoURL)
		if !installed(path) {
			fmt.Fprintln(out, "Build from a checkout of the repository:")
			fmt.Fprintf(out, "  %s\n", info.BuildCommand("<repo>", root.grammarPaths()[0]))
		}
	}

	if !load {
		return nil
	}
	g, err := reg.Resolve(lang.Name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Loaded:     %s via %s, ABI %d\n", g.Path, g.Symbol, g.ABI)
	return nil
}
