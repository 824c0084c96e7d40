package treesitter

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// errSkip marks a missing prerequisite (gcc, grammar sources) rather than a failure.
var errSkip = errors.New("skip")

// grammarSourceDir finds a tree-sitter grammar checkout in the Go module cache,
// e.g. module "tree-sitter-python" with sub-directory "src".
func grammarSourceDir(module, sub string) (string, error) {
	modCache := os.Getenv("GOMODCACHE")
	if modCache == "" {
		goPath := os.Getenv("GOPATH")
		if goPath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("%w: %v", errSkip, err)
			}
			goPath = filepath.Join(home, "go")
		}
		modCache = filepath.Join(goPath, "pkg", "mod")
	}

	matches, _ := filepath.Glob(filepath.Join(modCache, "github.com", "tree-sitter", module+"@*", sub))
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s grammar source not in module cache", errSkip, module)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

// compileGrammar compiles parser.c (and scanner.c when present) plus any extra
// C files into dir/<name>.so.
func compileGrammar(dir, name, module, sub string, extra ...string) (string, error) {
	if _, err := exec.LookPath("gcc"); err != nil {
		return "", fmt.Errorf("%w: gcc not available", errSkip)
	}
	src, err := grammarSourceDir(module, sub)
	if err != nil {
		return "", err
	}

	files := append([]string{filepath.Join(src, "parser.c")}, extra...)
	if _, err := os.Stat(filepath.Join(src, "scanner.c")); err == nil {
		files = append(files, filepath.Join(src, "scanner.c"))
	}

	out := filepath.Join(dir, name+LibExtension())
	args := append([]string{"-shared", "-fPIC", "-O0", "-I" + src, "-o", out}, files...)
	if cmdOut, err := exec.Command("gcc", args...).CombinedOutput(); err != nil {
		return "", fmt.Errorf("gcc failed: %v: %s", err, cmdOut)
	}
	return out, nil
}

func grammarSource(t *testing.T, module, sub string) string {
	t.Helper()
	src, err := grammarSourceDir(module, sub)
	if errors.Is(err, errSkip) {
		t.Skip(err.Error())
	}
	require.NoError(t, err)
	return src
}

// buildGrammar compiles a grammar into dir, skipping the test when gcc or the
// grammar sources are unavailable.
func buildGrammar(t *testing.T, dir, name, module, sub string, extra ...string) string {
	t.Helper()
	out, err := compileGrammar(dir, name, module, sub, extra...)
	if errors.Is(err, errSkip) {
		t.Skip(err.Error())
	}
	require.NoError(t, err)
	return out
}

// The Python grammar is compiled once per test binary; parser.c is large.
var (
	pythonOnce sync.Once
	pythonPath string
	pythonErr  error
)

// pythonGrammar loads the shared Python grammar build.
func pythonGrammar(t *testing.T) *Grammar {
	t.Helper()
	pythonOnce.Do(func() {
		dir, err := os.MkdirTemp("", "astdump-grammar-")
		if err != nil {
			pythonErr = err
			return
		}
		pythonPath, pythonErr = compileGrammar(dir, "python", "tree-sitter-python", "src")
	})
	if errors.Is(pythonErr, errSkip) {
		t.Skip(pythonErr.Error())
	}
	require.NoError(t, pythonErr)

	g, err := NewDynamicLoader(nil).Load(pythonPath, "python")
	require.NoError(t, err)
	return g
}
