package expr

import (
	"github.com/walteh/goqute/pkg/syntax"
)

// At returns the part under offset. A cursor placed right after a part, as when typing,
// resolves to that part.
func At(tree *syntax.Tree, offset int) (*Part, bool) {
	leaf := tree.LeafAt(offset)
	if leaf == nil {
		return nil, false
	}
	if p, ok := PartOf(leaf); ok {
		return p, true
	}
	if offset > 0 && leaf.TextRange().Start == offset {
		return PartOf(tree.LeafAt(offset - 1))
	}
	return nil, false
}

// Parts returns every part under n in document order.
func Parts(n syntax.Node) []*Part {
	var parts []*Part
	syntax.Walk(n, func(c syntax.Node) bool {
		p, ok := PartOf(c)
		if !ok || p.node != c {
			return true
		}
		parts = append(parts, p)
		return false
	})
	return parts
}
