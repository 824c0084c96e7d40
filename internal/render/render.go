// Package render prints walked syntax trees as indented "kind [row:col]" lines.
package render

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/fatih/color"
	"github.com/rivo/uniseg"

	"github.com/corey/astdump/internal/adapters/treesitter"
)

// ColumnMode selects how columns are counted.
type ColumnMode string

const (
	// ColumnsByte reports tree-sitter's byte offset within the line, 1-based.
	ColumnsByte ColumnMode = "byte"
	// ColumnsChar reports user-perceived characters (grapheme clusters), 1-based.
	ColumnsChar ColumnMode = "char"
)

// ParseColumnMode validates a --columns value. Empty means byte.
func ParseColumnMode(s string) (ColumnMode, error) {
	switch ColumnMode(strings.ToLower(s)) {
	case "", ColumnsByte:
		return ColumnsByte, nil
	case ColumnsChar:
		return ColumnsChar, nil
	default:
		return "", fmt.Errorf("invalid column mode %q (want byte or char)", s)
	}
}

// Printer renders walk records.
type Printer struct {
	Columns ColumnMode
	Color   bool
}

// HeaderPrefix starts the line that names the root node.
const HeaderPrefix = "[AST] Root node: "

// Render writes the header line followed by one line per record, indented two
// spaces per depth level. source is only consulted in ColumnsChar mode.
func (p *Printer) Render(w io.Writer, rootKind string, records iter.Seq[treesitter.Record], source []byte) error {
	bw := bufio.NewWriter(w)

	errKind := color.New(color.FgRed, color.Bold)
	missingKind := color.New(color.FgYellow)
	pos := color.New(color.FgHiBlack)
	for _, c := range []*color.Color{errKind, missingKind, pos} {
		if p.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	var lines *lineIndex
	if p.Columns == ColumnsChar {
		lines = newLineIndex(source)
	}

	fmt.Fprintf(bw, "%s%s\n", HeaderPrefix, rootKind)
	for r := range records {
		kind := r.Kind
		switch {
		case r.Error:
			kind = errKind.Sprint(kind)
		case r.Missing:
			kind = missingKind.Sprint(kind)
		}

		col := r.Column
		if lines != nil {
			col = lines.charColumn(r.Row, r.Column)
		}

		bw.WriteString(strings.Repeat("  ", r.Depth))
		bw.WriteString(kind)
		bw.WriteByte(' ')
		bw.WriteString(pos.Sprintf("[%d:%d]", r.Row, col))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// lineIndex maps 1-based rows to byte ranges of the source.
type lineIndex struct {
	source []byte
	starts []int
}

func newLineIndex(source []byte) *lineIndex {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{source: source, starts: starts}
}

// charColumn converts a 1-based byte column on a 1-based row into a 1-based
// grapheme column. Out-of-range positions are returned unchanged.
func (li *lineIndex) charColumn(row, byteCol int) int {
	if row < 1 || row > len(li.starts) || byteCol < 1 {
		return byteCol
	}
	start := li.starts[row-1]
	end := len(li.source)
	if row < len(li.starts) {
		end = li.starts[row] - 1
	}
	stop := min(start+byteCol-1, end)
	if stop <= start {
		return 1
	}
	return uniseg.GraphemeClusterCount(string(li.source[start:stop])) + 1
}
