package treesitter

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Point is a 0-based position as reported by the grammar.
type Point struct {
	Row    uint
	Column uint
}

// Node is the read-only view of a syntax node that the walker needs.
type Node interface {
	Kind() string
	Start() Point
	ChildCount() uint
	// Child returns nil when i is out of range.
	Child(i uint) Node
	IsError() bool
	IsMissing() bool
}

// tsNode adapts *tree_sitter.Node to Node.
type tsNode struct {
	n *tree_sitter.Node
}

var _ Node = tsNode{}

func wrapNode(n *tree_sitter.Node) Node {
	if n == nil {
		return nil
	}
	return tsNode{n: n}
}

func (t tsNode) Kind() string { return t.n.Kind() }

func (t tsNode) Start() Point {
	p := t.n.StartPosition()
	return Point{Row: p.Row, Column: p.Column}
}

func (t tsNode) ChildCount() uint { return t.n.ChildCount() }

func (t tsNode) Child(i uint) Node { return wrapNode(t.n.Child(i)) }

func (t tsNode) IsError() bool { return t.n.IsError() }

func (t tsNode) IsMissing() bool { return t.n.IsMissing() }
