//go:build ignore

// build-grammars compiles the built-in grammars into shared libraries astdump
// can load, then prints the size and SHA256 of each result.
//
// Usage: go run scripts/build-grammars.go [--src DIR] [--out .astdump/grammars] [--cc cc] [lang...]
//
// --src holds tree-sitter-<name> checkouts; when empty the Go module cache is searched.
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/corey/astdump/internal/adapters/treesitter"
)

func main() {
	srcRoot := flag.String("src", "", "directory containing tree-sitter-<name> checkouts (default: Go module cache)")
	outDir := flag.String("out", filepath.Join(".astdump", "grammars"), "output directory for shared libraries")
	cc := flag.String("cc", "cc", "C compiler")
	flag.Parse()

	manifest := treesitter.BuiltinManifest()
	names := flag.Args()
	if len(names) == 0 {
		names = manifest.Names()
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating %s: %v\n", *outDir, err)
		os.Exit(1)
	}

	failed := 0
	for _, name := range names {
		info, ok := manifest.Grammars[name]
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown grammar %q (known: %s)\n", name, strings.Join(manifest.Names(), ", "))
			failed++
			continue
		}

		repo, err := findRepo(*srcRoot, info.RepoURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			failed++
			continue
		}

		cmd := exec.Command(*cc, info.BuildArgs(repo, *outDir)...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			failed++
			continue
		}

		lib := filepath.Join(*outDir, treesitter.SOBaseName(name)+treesitter.LibExtension())
		hash, size, err := hashFile(lib)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			failed++
			continue
		}
		fmt.Printf("%-12s %9d  %s  %s\n", name, size, hash, lib)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// findRepo locates a checkout of repoURL under srcRoot, or the newest matching
// module in the Go module cache.
func findRepo(srcRoot, repoURL string) (string, error) {
	base := filepath.Base(repoURL)
	if srcRoot != "" {
		dir := filepath.Join(srcRoot, base)
		if _, err := os.Stat(dir); err != nil {
			return "", err
		}
		return dir, nil
	}

	modCache := os.Getenv("GOMODCACHE")
	if modCache == "" {
		out, err := exec.Command("go", "env", "GOMODCACHE").Output()
		if err != nil {
			return "", fmt.Errorf("locate module cache: %w", err)
		}
		modCache = strings.TrimSpace(string(out))
	}
	matches, _ := filepath.Glob(filepath.Join(modCache, "github.com", "tree-sitter", base+"@*"))
	if len(matches) == 0 {
		return "", fmt.Errorf("%s not found in %s (go mod download github.com/tree-sitter/%s)", base, modCache, base)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}
