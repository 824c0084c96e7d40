package treesitter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// GenericSymbol is the entry point name used by grammar modules that don't
// export a language-specific tree_sitter_{name} function.
const GenericSymbol = "tree_sitter_language"

// Grammar is a tree-sitter language loaded from a shared library. It owns the
// dlopen handle that keeps the library resident, so Language stays valid for as
// long as the Grammar is reachable. Grammars are never unloaded.
type Grammar struct {
	Name     string
	Path     string
	Symbol   string
	ABI      uint32
	Language *tree_sitter.Language

	handle uintptr
}

// GrammarLoader opens grammar modules. extraSymbols are tried before the
// conventional entry point names.
type GrammarLoader interface {
	Load(path, name string, extraSymbols ...string) (*Grammar, error)
}

// DynamicLoader loads tree-sitter grammars from shared libraries (.so on Linux,
// .dylib on macOS) using purego. It also knows where grammar files live so the
// registry and the grammar commands can locate them.
type DynamicLoader struct {
	searchPaths []string
	mu          sync.Mutex
	handles     []uintptr
}

var _ GrammarLoader = (*DynamicLoader)(nil)

// NewDynamicLoader creates a loader that searches the given paths for grammar
// shared libraries. Paths are searched in order; first match wins.
func NewDynamicLoader(searchPaths []string) *DynamicLoader {
	return &DynamicLoader{searchPaths: searchPaths}
}

// DefaultGrammarPaths returns the default search paths for grammar shared libraries.
// Project-local (.astdump/grammars/) is searched first, then global (~/.astdump/grammars/).
func DefaultGrammarPaths(projectRoot string) []string {
	var paths []string
	if projectRoot != "" {
		paths = append(paths, filepath.Join(projectRoot, ".astdump", "grammars"))
	}
	if dir := GlobalGrammarDir(); dir != "" {
		paths = append(paths, dir)
	}
	return paths
}

// LibExtension returns the shared library extension for the current platform.
func LibExtension() string {
	if runtime.GOOS == "darwin" {
		return ".dylib"
	}
	return ".so"
}

// symbolOverrides maps language names to C symbol names where the default
// derivation (tree_sitter_{name}) doesn't apply.
var symbolOverrides = map[string]string{
	"objc": "tree_sitter_objc",
}

// CSymbolName returns the C function name for a language's tree-sitter grammar.
func CSymbolName(lang string) string {
	if sym, ok := symbolOverrides[lang]; ok {
		return sym
	}
	return "tree_sitter_" + strings.ReplaceAll(lang, "-", "_")
}

// soFileOverrides maps language names to shared library base names where the
// grammar lives in a differently-named file.
var soFileOverrides = map[string]string{
	"c_sharp": "csharp",
}

// SOBaseName returns the expected shared library base name for a language.
func SOBaseName(lang string) string {
	if base, ok := soFileOverrides[lang]; ok {
		return base
	}
	return lang
}

// Load opens the shared library at path, resolves the grammar entry point and
// calls it once. The handle is never closed: the returned Language points into
// the library's static data.
func (dl *DynamicLoader) Load(path, name string, extraSymbols ...string) (*Grammar, error) {
	if path == "" {
		return nil, fmt.Errorf("grammar %q: %w: no module path", name, ErrModuleNotFound)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("grammar %q: %w: %v", name, ErrModuleNotFound, err)
	}

	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("grammar %q: %w: dlopen %s: %v", name, ErrModuleNotFound, path, err)
	}
	dl.mu.Lock()
	dl.handles = append(dl.handles, handle)
	dl.mu.Unlock()

	symName, addr := resolveEntry(handle, entrySymbols(name, extraSymbols))
	if addr == 0 {
		return nil, fmt.Errorf("grammar %q: %w: none of %s in %s", name, ErrSymbolMissing,
			strings.Join(entrySymbols(name, extraSymbols), ", "), path)
	}

	var langFunc func() uintptr
	purego.RegisterFunc(&langFunc, addr)

	ptr := langFunc()
	if ptr == 0 {
		return nil, fmt.Errorf("grammar %q: %w: %s() returned null", name, ErrSymbolMissing, symName)
	}

	// Convert uintptr from C (purego) to unsafe.Pointer without triggering go vet's
	// unsafeptr check. ptr is a static TSLanguage* inside the grammar library,
	// not Go memory the GC could move.
	language := tree_sitter.NewLanguage(*(*unsafe.Pointer)(unsafe.Pointer(&ptr)))

	abi := language.AbiVersion()
	if err := checkABI(abi); err != nil {
		return nil, fmt.Errorf("grammar %q: %w", name, err)
	}

	return &Grammar{
		Name:     name,
		Path:     path,
		Symbol:   symName,
		ABI:      abi,
		Language: language,
		handle:   handle,
	}, nil
}

// entrySymbols lists entry point candidates in lookup order, without duplicates.
func entrySymbols(name string, extra []string) []string {
	candidates := make([]string, 0, len(extra)+2)
	candidates = append(candidates, extra...)
	candidates = append(candidates, CSymbolName(name), GenericSymbol)

	seen := make(map[string]bool)
	var syms []string
	for _, s := range candidates {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		syms = append(syms, s)
	}
	return syms
}

// resolveEntry returns the first candidate symbol present in the library.
func resolveEntry(handle uintptr, candidates []string) (string, uintptr) {
	for _, sym := range candidates {
		addr, err := purego.Dlsym(handle, sym)
		if err == nil && addr != 0 {
			return sym, addr
		}
	}
	return "", 0
}

// checkABI rejects grammars generated for an ABI outside the range the linked
// tree-sitter runtime understands.
func checkABI(abi uint32) error {
	lo := uint32(tree_sitter.MIN_COMPATIBLE_LANGUAGE_VERSION)
	hi := uint32(tree_sitter.LANGUAGE_VERSION)
	if abi < lo || abi > hi {
		return fmt.Errorf("%w: version %d, runtime supports %d..%d", ErrAbiMismatch, abi, lo, hi)
	}
	return nil
}

// findModule returns the first search path holding file, or "" if none does.
func findModule(searchPaths []string, file string) string {
	for _, dir := range searchPaths {
		candidate := filepath.Join(dir, file)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// InstalledGrammars returns language names found as shared libraries in the search paths.
func (dl *DynamicLoader) InstalledGrammars() []string {
	ext := LibExtension()
	seen := make(map[string]bool)
	var names []string
	for _, dir := range dl.searchPaths {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			if strings.HasSuffix(name, ext) {
				lang := strings.TrimSuffix(name, ext)
				if !seen[lang] {
					seen[lang] = true
					names = append(names, lang)
				}
			}
		}
	}
	return names
}

// OpenModules returns how many libraries this loader has opened.
func (dl *DynamicLoader) OpenModules() int {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	return len(dl.handles)
}

// SearchPaths returns the configured search paths.
func (dl *DynamicLoader) SearchPaths() []string {
	return dl.searchPaths
}
