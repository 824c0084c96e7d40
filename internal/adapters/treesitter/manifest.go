package treesitter

import (
	"path/filepath"
	"sort"
	"strings"
)

// GrammarInfo describes where a grammar comes from and how to build its
// shared library.
type GrammarInfo struct {
	Name    string
	Version string
	RepoURL string
	SrcDir  string   // grammar source directory inside the repo
	Sources []string // C files under SrcDir
}

// Manifest lists the grammars astdump knows how to build.
type Manifest struct {
	Grammars map[string]GrammarInfo
}

// BuiltinManifest returns metadata for the built-in languages.
// This is embedded in the binary so `astdump grammar list` works without network.
func BuiltinManifest() *Manifest {
	return &Manifest{
		Grammars: map[string]GrammarInfo{
			"python":     {Name: "python", Version: "0.25.0", RepoURL: "https://github.com/tree-sitter/tree-sitter-python", SrcDir: "src", Sources: []string{"parser.c", "scanner.c"}},
			"rust":       {Name: "rust", Version: "0.24.0", RepoURL: "https://github.com/tree-sitter/tree-sitter-rust", SrcDir: "src", Sources: []string{"parser.c", "scanner.c"}},
			"typescript": {Name: "typescript", Version: "0.23.2", RepoURL: "https://github.com/tree-sitter/tree-sitter-typescript", SrcDir: "typescript/src", Sources: []string{"parser.c", "scanner.c"}},
			"tsx":        {Name: "tsx", Version: "0.23.2", RepoURL: "https://github.com/tree-sitter/tree-sitter-typescript", SrcDir: "tsx/src", Sources: []string{"parser.c", "scanner.c"}},
		},
	}
}

// Names returns the grammar names in the manifest, sorted.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Grammars))
	for name := range m.Grammars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildArgs returns the compiler arguments that turn a checkout of the grammar
// repo at repoDir into outDir/<lib>.so (or .dylib).
func (info GrammarInfo) BuildArgs(repoDir, outDir string) []string {
	src := filepath.Join(repoDir, filepath.FromSlash(info.SrcDir))
	out := filepath.Join(outDir, SOBaseName(info.Name)+LibExtension())
	args := []string{"-shared", "-fPIC", "-O2", "-I" + src, "-o", out}
	for _, f := range info.Sources {
		args = append(args, filepath.Join(src, f))
	}
	return args
}

// BuildCommand is BuildArgs as a shell command line using cc.
func (info GrammarInfo) BuildCommand(repoDir, outDir string) string {
	return "cc " + strings.Join(info.BuildArgs(repoDir, outDir), " ")
}
