// Package config loads the optional .astdump.yaml file. Command-line flags
// override anything set here.
package config

import (
	"sort"
	"time"

	"github.com/corey/astdump/internal/adapters/treesitter"
)

// DefaultFile is looked up in the working directory when --config is not given.
const DefaultFile = ".astdump.yaml"

// Default values for configuration fields.
const (
	DefaultColumns       = "byte"
	DefaultColor         = "auto"
	DefaultLogLevel      = "warn"
	DefaultWatchDebounce = 50 * time.Millisecond
)

// Config is the on-disk configuration.
type Config struct {
	// GrammarPaths are searched before the built-in grammar directories.
	// Relative entries are resolved against the config file's directory.
	GrammarPaths []string `yaml:"grammar_paths"`

	Columns       string        `yaml:"columns"`
	Color         string        `yaml:"color"`
	LogLevel      string        `yaml:"log_level"`
	WatchDebounce time.Duration `yaml:"watch_debounce"`

	// Languages adds extensions to built-in languages or declares new ones.
	Languages map[string]LanguageConfig `yaml:"languages"`

	// Path is the file the config was read from, empty for defaults.
	Path string `yaml:"-"`
}

// LanguageConfig overrides or declares one language.
type LanguageConfig struct {
	Extensions []string `yaml:"extensions"`
	Library    string   `yaml:"library"`
	Symbol     string   `yaml:"symbol"`
}

// Defaults returns a configuration with every field at its default.
func Defaults() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Columns == "" {
		cfg.Columns = DefaultColumns
	}
	if cfg.Color == "" {
		cfg.Color = DefaultColor
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.WatchDebounce == 0 {
		cfg.WatchDebounce = DefaultWatchDebounce
	}
}

// ApplyLanguages overlays the configured languages onto base, in name order.
func (c *Config) ApplyLanguages(base []treesitter.Language) []treesitter.Language {
	names := make([]string, 0, len(c.Languages))
	for name := range c.Languages {
		names = append(names, name)
	}
	sort.Strings(names)

	extra := make([]treesitter.Language, 0, len(names))
	for _, name := range names {
		lc := c.Languages[name]
		extra = append(extra, treesitter.Language{
			Name:       name,
			Extensions: lc.Extensions,
			Library:    lc.Library,
			Symbol:     lc.Symbol,
		})
	}
	return treesitter.MergeLanguages(base, extra)
}
