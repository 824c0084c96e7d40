package treesitter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLoader records every Load call and hands back fake grammars.
type countingLoader struct {
	mu      sync.Mutex
	calls   map[string]int
	paths   map[string]string
	symbols map[string][]string
	fail    map[string]error
	delay   time.Duration
	total   atomic.Int64
}

func newCountingLoader() *countingLoader {
	return &countingLoader{
		calls:   make(map[string]int),
		paths:   make(map[string]string),
		symbols: make(map[string][]string),
		fail:    make(map[string]error),
	}
}

func (c *countingLoader) Load(path, name string, extraSymbols ...string) (*Grammar, error) {
	c.total.Add(1)
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[name]++
	c.paths[name] = path
	c.symbols[name] = extraSymbols
	if err := c.fail[name]; err != nil {
		return nil, err
	}
	return &Grammar{Name: name, Path: path, Symbol: CSymbolName(name), ABI: 14}, nil
}

func (c *countingLoader) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

func TestRegistry_ResolveCachesPerLanguage(t *testing.T) {
	for _, lang := range DefaultLanguages() {
		t.Run(lang.Name, func(t *testing.T) {
			loader := newCountingLoader()
			r := NewRegistry(loader, []string{"/grammars"}, DefaultLanguages(), nil)

			first, err := r.Resolve(lang.Name)
			require.NoError(t, err)
			second, err := r.Resolve(lang.Extensions[0])
			require.NoError(t, err)

			assert.Same(t, first, second)
			assert.Equal(t, 1, loader.count(lang.Name))
		})
	}
}

func TestRegistry_ResolveByExtension(t *testing.T) {
	loader := newCountingLoader()
	r := NewRegistry(loader, []string{"/grammars"}, DefaultLanguages(), nil)

	g, err := r.Resolve(".TSX")
	require.NoError(t, err)
	assert.Equal(t, "tsx", g.Name)
	assert.Equal(t, filepath.Join("/grammars", "tsx"+LibExtension()), loader.paths["tsx"])
}

func TestRegistry_ResolvePath(t *testing.T) {
	r := NewRegistry(newCountingLoader(), []string{"/grammars"}, DefaultLanguages(), nil)

	g, err := r.ResolvePath("/src/lib.rs")
	require.NoError(t, err)
	assert.Equal(t, "rust", g.Name)

	_, err = r.ResolvePath("/src/notes.txt")
	assert.ErrorIs(t, err, ErrUnsupportedExtension)
	assert.Contains(t, err.Error(), "unsupported extension")

	_, err = r.ResolvePath("/src/Makefile")
	assert.ErrorIs(t, err, ErrUnsupportedExtension)
}

func TestRegistry_UnsupportedDoesNotLoad(t *testing.T) {
	loader := newCountingLoader()
	r := NewRegistry(loader, nil, DefaultLanguages(), nil)

	for _, key := range []string{".txt", ".jsx", "cobol", ""} {
		_, err := r.Resolve(key)
		assert.ErrorIs(t, err, ErrUnsupportedExtension, key)
	}
	assert.Equal(t, int64(0), loader.total.Load())
}

func TestRegistry_FailureIsMemoized(t *testing.T) {
	loader := newCountingLoader()
	loader.fail["python"] = fmt.Errorf("grammar %q: %w", "python", ErrModuleNotFound)
	r := NewRegistry(loader, nil, DefaultLanguages(), nil)

	for i := 0; i < 3; i++ {
		g, err := r.Resolve("python")
		assert.Nil(t, g)
		assert.ErrorIs(t, err, ErrModuleNotFound)
	}
	assert.Equal(t, 1, loader.count("python"))
	assert.Empty(t, r.Loaded())
}

func TestRegistry_ConcurrentSingleLoad(t *testing.T) {
	loader := newCountingLoader()
	loader.delay = 20 * time.Millisecond
	r := NewRegistry(loader, nil, DefaultLanguages(), nil)

	const workers = 32
	results := make([]*Grammar, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := "python"
			if i%2 == 1 {
				key = ".py"
			}
			g, err := r.Resolve(key)
			assert.NoError(t, err)
			results[i] = g
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, loader.count("python"))
	for _, g := range results {
		assert.Same(t, results[0], g)
	}
}

func TestRegistry_ConcurrentDistinctLanguages(t *testing.T) {
	loader := newCountingLoader()
	r := NewRegistry(loader, nil, DefaultLanguages(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			langs := DefaultLanguages()
			_, err := r.Resolve(langs[i%len(langs)].Name)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for _, l := range DefaultLanguages() {
		assert.Equal(t, 1, loader.count(l.Name), l.Name)
	}
	assert.Equal(t, []string{"python", "rust", "tsx", "typescript"}, r.Loaded())
}

func TestRegistry_SymbolOverridePassedToLoader(t *testing.T) {
	loader := newCountingLoader()
	langs := MergeLanguages(DefaultLanguages(), []Language{{Name: "python", Symbol: "tree_sitter_py3"}})
	r := NewRegistry(loader, nil, langs, nil)

	_, err := r.Resolve("python")
	require.NoError(t, err)
	assert.Equal(t, []string{"tree_sitter_py3"}, loader.symbols["python"])
}

func TestRegistry_ModulePath(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()
	installed := filepath.Join(dir2, "rust"+LibExtension())
	require.NoError(t, os.WriteFile(installed, nil, 0o644))

	r := NewRegistry(newCountingLoader(), []string{dir1, dir2}, DefaultLanguages(), nil)

	assert.Equal(t, installed, r.ModulePath(Language{Name: "rust"}))
	assert.Equal(t, filepath.Join(dir1, "python"+LibExtension()), r.ModulePath(Language{Name: "python"}))
	assert.Equal(t, "/abs/ts.so", r.ModulePath(Language{Name: "typescript", Library: "/abs/ts.so"}))
	assert.Equal(t, filepath.Join(dir1, "ts"+LibExtension()), r.ModulePath(Language{Name: "typescript", Library: "ts" + LibExtension()}))

	empty := NewRegistry(newCountingLoader(), nil, DefaultLanguages(), nil)
	assert.Equal(t, "", empty.ModulePath(Language{Name: "python"}))
}

func TestRegistry_LookupAndSupports(t *testing.T) {
	langs := MergeLanguages(DefaultLanguages(), []Language{{Name: "javascript", Extensions: []string{".js", ".jsx"}}})
	r := NewRegistry(newCountingLoader(), nil, langs, nil)

	l, ok := r.Lookup(".jsx")
	require.True(t, ok)
	assert.Equal(t, "javascript", l.Name)

	_, ok = r.Lookup("go")
	assert.False(t, ok)

	assert.True(t, r.Supports("/x/y/app.PY"))
	assert.True(t, r.Supports("widget.jsx"))
	assert.False(t, r.Supports("README.md"))

	names := make([]string, 0)
	for _, l := range r.Languages() {
		names = append(names, l.Name)
	}
	assert.Equal(t, []string{"javascript", "python", "rust", "tsx", "typescript"}, names)
}

func TestRegistry_ReassignedExtension(t *testing.T) {
	langs := MergeLanguages(DefaultLanguages(), []Language{{Name: "javascript", Extensions: []string{".py"}}})
	r := NewRegistry(newCountingLoader(), nil, langs, nil)

	l, ok := r.Lookup(".py")
	require.True(t, ok)
	assert.Equal(t, "javascript", l.Name)

	for _, l := range r.Languages() {
		if l.Name != "javascript" {
			assert.NotContains(t, l.Extensions, ".py", l.Name)
		}
	}
}

func TestRegistry_RealLoaderMissingModule(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry(NewDynamicLoader([]string{dir}), []string{dir}, DefaultLanguages(), nil)

	_, err := r.Resolve(".py")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModuleNotFound))
	assert.Contains(t, err.Error(), filepath.Join(dir, "python"+LibExtension()))
}
