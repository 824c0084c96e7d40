// Package treesitter loads tree-sitter grammars from shared libraries at
// runtime, parses source text with them and walks the resulting syntax trees.
//
// Grammars are opened with purego and never unloaded, so every Language and
// Tree handed out stays valid for the life of the process.
package treesitter

import (
	"fmt"
	"iter"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Tree is a parsed syntax tree. It keeps the source it was parsed from and the
// grammar that produced it.
type Tree struct {
	tree    *tree_sitter.Tree
	grammar *Grammar
	source  []byte
}

// Parse parses source with the grammar. Syntax errors don't fail the parse:
// they show up as ERROR and MISSING nodes in the tree.
func Parse(g *Grammar, source []byte) (*Tree, error) {
	if g == nil || g.Language == nil {
		return nil, fmt.Errorf("%w: grammar not loaded", ErrParseFailure)
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(g.Language); err != nil {
		return nil, fmt.Errorf("grammar %q: %w: %v", g.Name, ErrAbiMismatch, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("grammar %q: %w: no tree returned", g.Name, ErrParseFailure)
	}
	return &Tree{tree: tree, grammar: g, source: source}, nil
}

// Root returns the root node, or nil once the tree is closed.
func (t *Tree) Root() Node {
	if t.tree == nil {
		return nil
	}
	return wrapNode(t.tree.RootNode())
}

// RootKind returns the kind of the root node, or "" once the tree is closed.
func (t *Tree) RootKind() string {
	if t.tree == nil {
		return ""
	}
	return t.tree.RootNode().Kind()
}

// HasError reports whether the tree contains any ERROR or MISSING node.
func (t *Tree) HasError() bool {
	if t.tree == nil {
		return false
	}
	return t.tree.RootNode().HasError()
}

// Walk walks the whole tree. See Walk.
func (t *Tree) Walk() iter.Seq[Record] {
	return Walk(t.Root())
}

// Source returns the parsed source text.
func (t *Tree) Source() []byte { return t.source }

// Grammar returns the grammar that produced the tree.
func (t *Tree) Grammar() *Grammar { return t.grammar }

// Close releases the native tree. The grammar stays loaded.
func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}
