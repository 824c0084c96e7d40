// Package app wires the grammar registry, parser, walker and renderer into the
// operations the CLI exposes: inspect one file, or watch a tree and re-inspect
// files as they change.
package app

import (
	"errors"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/corey/astdump/internal/adapters/treesitter"
	"github.com/corey/astdump/internal/render"
)

// ErrIO means the source file could not be read.
var ErrIO = errors.New("i/o error")

// Config holds the Inspector's collaborators. Zero fields get defaults.
type Config struct {
	Fs       afero.Fs             // defaults to the OS filesystem
	Registry *treesitter.Registry // required
	Printer  *render.Printer      // defaults to byte columns without colour
	MaxDepth int                  // deepest level printed; <= 0 prints everything
	Log      logrus.FieldLogger   // defaults to a discarding logger
}

// Inspector parses files and prints their syntax trees.
type Inspector struct {
	fs       afero.Fs
	registry *treesitter.Registry
	printer  *render.Printer
	maxDepth int
	log      logrus.FieldLogger
}

// New creates an Inspector from cfg.
func New(cfg Config) *Inspector {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Printer == nil {
		cfg.Printer = &render.Printer{Columns: render.ColumnsByte}
	}
	if cfg.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		cfg.Log = l
	}
	return &Inspector{
		fs:       cfg.Fs,
		registry: cfg.Registry,
		printer:  cfg.Printer,
		maxDepth: cfg.MaxDepth,
		log:      cfg.Log,
	}
}

// Registry returns the grammar registry the Inspector resolves files with.
func (in *Inspector) Registry() *treesitter.Registry {
	return in.registry
}
