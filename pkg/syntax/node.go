// Package syntax materializes parsed templates into an immutable tree of typed leaves
// and composites with parent and sibling navigation.
package syntax

import (
	"github.com/walteh/goqute/pkg/elements"
	"github.com/walteh/goqute/pkg/position"
	"github.com/walteh/goqute/pkg/template"
)

// Node is an element of a materialized tree. Offsets are absolute in the tree's text.
type Node interface {
	Type() *elements.ElementType
	TextRange() position.TextRange
	Text() string

	// Parent returns nil for the root.
	Parent() Node
	Children() []Node
	FirstChild() Node
	PrevSibling() Node
	NextSibling() Node
	IsLeaf() bool

	// Source returns the parsed node this was materialized from, or nil for gap leaves.
	Source() *template.Node
}

// base holds what leaves and composites share. The parent link and index are lookups
// into the parent's children slice, not ownership.
type base struct {
	typ    *elements.ElementType
	start  int
	end    int
	text   string
	source *template.Node
	parent *Composite
	index  int
}

func (b *base) Type() *elements.ElementType {
	return b.typ
}

func (b *base) TextRange() position.TextRange {
	return position.TextRange{Start: b.start, End: b.end}
}

func (b *base) Text() string {
	return b.text[b.start:b.end]
}

func (b *base) Source() *template.Node {
	return b.source
}

func (b *base) Parent() Node {
	if b.parent == nil {
		return nil
	}
	return b.parent
}

func (b *base) PrevSibling() Node {
	if b.parent == nil || b.index == 0 {
		return nil
	}
	return b.parent.children[b.index-1]
}

func (b *base) NextSibling() Node {
	if b.parent == nil || b.index+1 >= len(b.parent.children) {
		return nil
	}
	return b.parent.children[b.index+1]
}

// Leaf is a token with no children.
type Leaf struct {
	base
}

func (l *Leaf) Children() []Node {
	return nil
}

func (l *Leaf) FirstChild() Node {
	return nil
}

func (l *Leaf) IsLeaf() bool {
	return true
}

func (l *Leaf) String() string {
	return l.typ.String() + l.TextRange().String()
}

// Composite owns an ordered list of children whose texts concatenate to its own.
type Composite struct {
	base
	children []Node
}

// Children returns the children in source order. The slice must not be modified.
func (c *Composite) Children() []Node {
	return c.children
}

func (c *Composite) FirstChild() Node {
	if len(c.children) == 0 {
		return nil
	}
	return c.children[0]
}

func (c *Composite) IsLeaf() bool {
	return false
}

func (c *Composite) String() string {
	return c.typ.String() + c.TextRange().String()
}

func (c *Composite) adopt(child Node) {
	switch n := child.(type) {
	case *Leaf:
		n.parent, n.index = c, len(c.children)
	case *Composite:
		n.parent, n.index = c, len(c.children)
	}
	c.children = append(c.children, child)
}
