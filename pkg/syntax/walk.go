package syntax

import (
	"fmt"
	"strings"
)

// Walk calls fn for n and every descendant in document order. Returning false from fn
// skips the node's children.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}

// Leaves returns the leaves under n in document order.
func Leaves(n Node) []Node {
	var leaves []Node
	Walk(n, func(c Node) bool {
		if c.IsLeaf() {
			leaves = append(leaves, c)
		}
		return true
	})
	return leaves
}

// LeafAt returns the leaf whose range contains offset. The end of the text resolves to
// the last leaf. It returns nil when offset is out of range.
func LeafAt(n Node, offset int) Node {
	rng := n.TextRange()
	if offset < rng.Start || offset > rng.End {
		return nil
	}

	for !n.IsLeaf() {
		children := n.Children()
		var next Node
		for i, c := range children {
			r := c.TextRange()
			if offset >= r.Start && (offset < r.End || (i == len(children)-1 && offset == r.End)) {
				next = c
				break
			}
		}
		if next == nil {
			return nil
		}
		n = next
	}
	return n
}

// Reconstruct concatenates the leaf texts under n.
func Reconstruct(n Node) string {
	var sb strings.Builder
	for _, l := range Leaves(n) {
		sb.WriteString(l.Text())
	}
	return sb.String()
}

// Dump renders the tree one node per line, indented by depth.
func Dump(n Node) string {
	var sb strings.Builder
	var visit func(n Node, depth int)
	visit = func(n Node, depth int) {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString(fmt.Sprintf("%s %s", n.Type(), n.TextRange()))
		if n.IsLeaf() {
			sb.WriteString(fmt.Sprintf(" %q", n.Text()))
		}
		sb.WriteByte('\n')
		for _, c := range n.Children() {
			visit(c, depth+1)
		}
	}
	visit(n, 0)
	return sb.String()
}
