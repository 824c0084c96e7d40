package treesitter

import "iter"

// Record is one visited node: its depth below the root and its 1-based start
// position.
type Record struct {
	Depth   int
	Kind    string
	Row     int
	Column  int
	Error   bool // ERROR node from the grammar's recovery
	Missing bool // zero-width node inserted by recovery
}

// Walk visits root and its descendants in pre-order, children left to right.
// The sequence can be ranged over any number of times; each pass starts fresh.
func Walk(root Node) iter.Seq[Record] {
	return WalkDepth(root, 0)
}

// WalkDepth is Walk limited to nodes at most maxDepth below the root.
// maxDepth <= 0 means unlimited.
func WalkDepth(root Node, maxDepth int) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		if root == nil {
			return
		}

		type pending struct {
			node  Node
			depth int
		}
		// Explicit stack so tree depth never turns into call-stack depth.
		stack := []pending{{node: root}}
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if !yield(newRecord(top.node, top.depth)) {
				return
			}
			if maxDepth > 0 && top.depth >= maxDepth {
				continue
			}

			// Push in reverse so the leftmost child is popped first.
			for i := top.node.ChildCount(); i > 0; i-- {
				if child := top.node.Child(i - 1); child != nil {
					stack = append(stack, pending{node: child, depth: top.depth + 1})
				}
			}
		}
	}
}

func newRecord(n Node, depth int) Record {
	p := n.Start()
	return Record{
		Depth:   depth,
		Kind:    n.Kind(),
		Row:     int(p.Row) + 1,
		Column:  int(p.Column) + 1,
		Error:   n.IsError(),
		Missing: n.IsMissing(),
	}
}
