package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration at path from fsys, fills in defaults and
// validates the result. When explicit is false a missing file yields Defaults();
// when the user named the file it must exist. Unknown keys are rejected.
func Load(fsys afero.Fs, path string, explicit bool) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return Defaults(), nil
		}
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}

	cfg.Path = path
	applyDefaults(&cfg)

	dir := filepath.Dir(path)
	for i, p := range cfg.GrammarPaths {
		if p != "" {
			cfg.GrammarPaths[i] = resolve(dir, p)
		}
	}
	// A library with a file extension is a path; a bare name is looked up in
	// the grammar search paths.
	for name, lc := range cfg.Languages {
		if lc.Library != "" && filepath.Ext(lc.Library) != "" {
			lc.Library = resolve(dir, lc.Library)
			cfg.Languages[name] = lc
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return &cfg, nil
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	joined := filepath.Join(dir, p)
	if abs, err := filepath.Abs(joined); err == nil {
		return abs
	}
	return joined
}
