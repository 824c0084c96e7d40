package treesitter

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Registry maps language names and file extensions to grammars and loads each
// grammar at most once. The first outcome for a name, success or failure, is
// kept for the life of the Registry.
type Registry struct {
	loader      GrammarLoader
	searchPaths []string
	log         logrus.FieldLogger

	languages map[string]Language // name -> language
	extToLang map[string]string   // extension -> name

	mu    sync.RWMutex
	cache map[string]cacheEntry
	group singleflight.Group
}

type cacheEntry struct {
	grammar *Grammar
	err     error
}

// NewRegistry creates a registry over langs. Module files are looked up in
// searchPaths unless a language names an absolute library path. A nil log
// discards log output.
func NewRegistry(loader GrammarLoader, searchPaths []string, langs []Language, log logrus.FieldLogger) *Registry {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	r := &Registry{
		loader:      loader,
		searchPaths: searchPaths,
		log:         log,
		languages:   make(map[string]Language, len(langs)),
		extToLang:   make(map[string]string),
		cache:       make(map[string]cacheEntry),
	}
	for _, l := range MergeLanguages(nil, langs) {
		r.languages[l.Name] = l
		for _, ext := range l.Extensions {
			r.extToLang[ext] = l.Name
		}
	}
	return r
}

// Lookup finds the language for an extension (".py") or a name ("python").
func (r *Registry) Lookup(extOrName string) (Language, bool) {
	key := strings.TrimSpace(extOrName)
	if strings.HasPrefix(key, ".") {
		name, ok := r.extToLang[strings.ToLower(key)]
		if !ok {
			return Language{}, false
		}
		key = name
	}
	l, ok := r.languages[key]
	return l, ok
}

// Resolve returns the loaded grammar for an extension or language name,
// loading it on first use.
func (r *Registry) Resolve(extOrName string) (*Grammar, error) {
	lang, ok := r.Lookup(extOrName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, extOrName)
	}

	r.mu.RLock()
	entry, hit := r.cache[lang.Name]
	r.mu.RUnlock()
	if hit {
		return entry.grammar, entry.err
	}

	v, _, _ := r.group.Do(lang.Name, func() (any, error) {
		r.mu.RLock()
		entry, hit := r.cache[lang.Name]
		r.mu.RUnlock()
		if hit {
			return entry, nil
		}

		entry = r.load(lang)
		r.mu.Lock()
		r.cache[lang.Name] = entry
		r.mu.Unlock()
		return entry, nil
	})
	entry = v.(cacheEntry)
	return entry.grammar, entry.err
}

// ResolvePath returns the grammar for a file, chosen by its extension.
func (r *Registry) ResolvePath(filePath string) (*Grammar, error) {
	ext := FileExtension(filePath)
	if ext == "" {
		return nil, fmt.Errorf("%w: %s has no extension", ErrUnsupportedExtension, filepath.Base(filePath))
	}
	return r.Resolve(ext)
}

// Supports reports whether a file's extension maps to a registered language.
func (r *Registry) Supports(filePath string) bool {
	_, ok := r.extToLang[FileExtension(filePath)]
	return ok
}

// Languages returns the registered languages sorted by name.
func (r *Registry) Languages() []Language {
	out := make([]Language, 0, len(r.languages))
	for _, l := range r.languages {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Loaded returns the names of grammars loaded successfully so far.
func (r *Registry) Loaded() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for name, e := range r.cache {
		if e.err == nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ModulePath returns the shared library path the registry would load for lang.
// When no search path holds the file, the candidate in the first search path is
// returned so load errors name a concrete location.
func (r *Registry) ModulePath(lang Language) string {
	base := lang.LibraryBase()
	if filepath.IsAbs(base) {
		return base
	}
	file := base
	if filepath.Ext(file) != LibExtension() {
		file += LibExtension()
	}
	if found := findModule(r.searchPaths, file); found != "" {
		return found
	}
	if len(r.searchPaths) > 0 {
		return filepath.Join(r.searchPaths[0], file)
	}
	return ""
}

func (r *Registry) load(lang Language) cacheEntry {
	path := r.ModulePath(lang)
	log := r.log.WithFields(logrus.Fields{"grammar": lang.Name, "path": path})

	var extra []string
	if lang.Symbol != "" {
		extra = append(extra, lang.Symbol)
	}
	g, err := r.loader.Load(path, lang.Name, extra...)
	if err != nil {
		log.WithError(err).Debug("grammar load failed")
		return cacheEntry{err: err}
	}
	log.WithFields(logrus.Fields{"symbol": g.Symbol, "abi": g.ABI}).Debug("grammar loaded")
	return cacheEntry{grammar: g}
}
