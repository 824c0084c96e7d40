package render

import (
	"bytes"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corey/astdump/internal/adapters/treesitter"
)

func TestParseColumnMode(t *testing.T) {
	for in, want := range map[string]ColumnMode{"": ColumnsByte, "byte": ColumnsByte, "CHAR": ColumnsChar} {
		got, err := ParseColumnMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseColumnMode("rune")
	assert.Error(t, err)
}

func TestRender_IndentsTwoSpacesPerDepth(t *testing.T) {
	records := []treesitter.Record{
		{Depth: 0, Kind: "module", Row: 1, Column: 1},
		{Depth: 1, Kind: "expression_statement", Row: 1, Column: 1},
		{Depth: 2, Kind: "assignment", Row: 1, Column: 1},
		{Depth: 3, Kind: "identifier", Row: 1, Column: 1},
		{Depth: 3, Kind: "=", Row: 1, Column: 3},
		{Depth: 3, Kind: "integer", Row: 1, Column: 5},
	}

	var buf bytes.Buffer
	p := &Printer{Columns: ColumnsByte}
	require.NoError(t, p.Render(&buf, "module", slices.Values(records), nil))

	want := "[AST] Root node: module\n" +
		"module [1:1]\n" +
		"  expression_statement [1:1]\n" +
		"    assignment [1:1]\n" +
		"      identifier [1:1]\n" +
		"      = [1:3]\n" +
		"      integer [1:5]\n"
	assert.Equal(t, want, buf.String())
}

func TestRender_ErrorNodesPlainWithoutColor(t *testing.T) {
	records := []treesitter.Record{
		{Depth: 0, Kind: "module", Row: 1, Column: 1},
		{Depth: 1, Kind: "ERROR", Row: 1, Column: 1, Error: true},
		{Depth: 1, Kind: ")", Row: 1, Column: 9, Missing: true},
	}

	var buf bytes.Buffer
	require.NoError(t, (&Printer{}).Render(&buf, "module", slices.Values(records), nil))
	assert.NotContains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "  ERROR [1:1]\n")
}

func TestRender_ColorMarksErrorNodes(t *testing.T) {
	records := []treesitter.Record{
		{Depth: 0, Kind: "module", Row: 1, Column: 1},
		{Depth: 1, Kind: "ERROR", Row: 1, Column: 1, Error: true},
	}

	var buf bytes.Buffer
	require.NoError(t, (&Printer{Color: true}).Render(&buf, "module", slices.Values(records), nil))
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "ERROR")
}

func TestRender_CharColumns(t *testing.T) {
	// "é" is two bytes, the flag is eight.
	source := []byte("é = 1\ns = \"🇩🇪\" + x\n")
	records := []treesitter.Record{
		{Depth: 0, Kind: "module", Row: 1, Column: 1},
		{Depth: 1, Kind: "=", Row: 1, Column: 4},
		{Depth: 1, Kind: "integer", Row: 1, Column: 6},
		{Depth: 1, Kind: "+", Row: 2, Column: 16},
		{Depth: 1, Kind: "identifier", Row: 2, Column: 18},
	}

	var byteBuf, charBuf bytes.Buffer
	require.NoError(t, (&Printer{Columns: ColumnsByte}).Render(&byteBuf, "module", slices.Values(records), source))
	require.NoError(t, (&Printer{Columns: ColumnsChar}).Render(&charBuf, "module", slices.Values(records), source))

	assert.Contains(t, byteBuf.String(), "integer [1:6]")
	assert.Contains(t, charBuf.String(), "= [1:3]")
	assert.Contains(t, charBuf.String(), "integer [1:5]")
	assert.Contains(t, charBuf.String(), "+ [2:9]")
	assert.Contains(t, charBuf.String(), "identifier [2:11]")
}

func TestLineIndex_OutOfRange(t *testing.T) {
	li := newLineIndex([]byte("ab\ncd"))
	assert.Equal(t, 7, li.charColumn(9, 7))
	assert.Equal(t, 1, li.charColumn(1, 1))
	assert.Equal(t, 3, li.charColumn(1, 40), "clamped to line end")
	assert.Equal(t, 3, li.charColumn(2, 3))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRender_WriteError(t *testing.T) {
	records := []treesitter.Record{{Kind: "module", Row: 1, Column: 1}}
	err := (&Printer{}).Render(failingWriter{}, "module", slices.Values(records), nil)
	assert.EqualError(t, err, "disk full")
}
