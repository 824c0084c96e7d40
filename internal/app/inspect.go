package app

import (
	"bytes"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/corey/astdump/internal/adapters/treesitter"
)

// Inspect reads the file at path, parses it with the grammar chosen by its
// extension and writes the rendered tree to w. Nothing is written unless every
// step succeeds.
func (in *Inspector) Inspect(path string, w io.Writer) error {
	source, err := afero.ReadFile(in.fs, path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	g, err := in.registry.ResolvePath(path)
	if err != nil {
		return err
	}

	tree, err := treesitter.Parse(g, source)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer tree.Close()

	in.log.WithFields(logrus.Fields{
		"file":    path,
		"grammar": g.Name,
		"bytes":   len(source),
		"errors":  tree.HasError(),
	}).Debug("parsed")

	var buf bytes.Buffer
	records := treesitter.WalkDepth(tree.Root(), in.maxDepth)
	if err := in.printer.Render(&buf, tree.RootKind(), records, source); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}
	return nil
}
