package treesitter

import (
	"slices"
	"strings"
)

// Language describes one grammar the registry knows how to load.
type Language struct {
	Name       string   // logical name, also the cache key ("python")
	Extensions []string // file extensions including the dot (".py")
	Library    string   // shared library base name or absolute path; defaults to SOBaseName(Name)
	Symbol     string   // entry point override; defaults to CSymbolName(Name)
}

// LibraryBase returns the shared library base name for the language.
func (l Language) LibraryBase() string {
	if l.Library != "" {
		return l.Library
	}
	return SOBaseName(l.Name)
}

// DefaultLanguages returns the built-in language table. Each call returns a
// fresh copy that callers may modify.
func DefaultLanguages() []Language {
	return []Language{
		{Name: "python", Extensions: []string{".py"}},
		{Name: "rust", Extensions: []string{".rs"}},
		{Name: "typescript", Extensions: []string{".ts"}},
		{Name: "tsx", Extensions: []string{".tsx"}},
	}
}

// MergeLanguages overlays extra onto base. An entry whose name already exists
// gains its extensions and replaces its library/symbol when set; new names are
// appended. Extensions are lower-cased and given a leading dot. An extension
// belongs to exactly one language: the last entry to claim it takes it away
// from any earlier owner.
func MergeLanguages(base, extra []Language) []Language {
	out := make([]Language, 0, len(base)+len(extra))
	index := make(map[string]int) // name -> position in out
	owner := make(map[string]int) // extension -> position in out

	merge := func(l Language) {
		exts := normalizeExts(l.Extensions)
		i, ok := index[l.Name]
		if !ok {
			l.Extensions = nil
			i = len(out)
			index[l.Name] = i
			out = append(out, l)
		} else {
			if l.Library != "" {
				out[i].Library = l.Library
			}
			if l.Symbol != "" {
				out[i].Symbol = l.Symbol
			}
		}
		for _, ext := range exts {
			prev, claimed := owner[ext]
			if claimed && prev == i {
				continue
			}
			if claimed {
				out[prev].Extensions = slices.DeleteFunc(out[prev].Extensions, func(e string) bool { return e == ext })
			}
			owner[ext] = i
			out[i].Extensions = append(out[i].Extensions, ext)
		}
	}
	for _, l := range base {
		merge(l)
	}
	for _, l := range extra {
		merge(l)
	}
	return out
}

func normalizeExts(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}
