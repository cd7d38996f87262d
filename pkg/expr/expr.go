// Package expr resolves the parts of a Qute expression to the part that anchors it and
// to the span of the expression they belong to.
//
// Given {uri:Todos.getAll()[0].name}, every part resolves to the namespace part "uri":
//
//	part     kind          range
//	Todos    object        uri:Todos
//	getAll   method        uri:Todos.getAll()
//	name     property      uri:Todos.getAll()[0].name
//
// Results are computed on each call. Trees are immutable, so a Part stays valid for the
// lifetime of its tree.
package expr

import (
	"github.com/walteh/goqute/pkg/elements"
	"github.com/walteh/goqute/pkg/position"
	"github.com/walteh/goqute/pkg/syntax"
	"github.com/walteh/goqute/pkg/template"
)

// Kind is the variant of an expression part.
type Kind int

const (
	Object Kind = iota + 1
	Property
	Method
	InfixMethod
)

func (k Kind) String() string {
	switch k {
	case Object:
		return "object"
	case Property:
		return "property"
	case Method:
		return "method"
	case InfixMethod:
		return "infix-method"
	}
	return "unknown"
}

var (
	objectType      = elements.TypeFor(template.NameObjectPart)
	propertyType    = elements.TypeFor(template.NamePropertyPart)
	methodType      = elements.TypeFor(template.NameMethodPart)
	infixMethodType = elements.TypeFor(template.NameInfixMethodPart)

	namespaceType    = elements.TypeFor(template.NameNamespacePart)
	colonSpaceType   = elements.TypeFor(template.NameColonSpace)
	whitespaceType   = elements.TypeFor(template.NameWhitespace)
	openBracketType  = elements.TypeFor(template.NameOpenBracket)
	closeBracketType = elements.TypeFor(template.NameCloseBracket)
	endDelimiterType = elements.TypeFor(template.NameEndDelimiter)
)

var kinds = map[*elements.ElementType]Kind{
	objectType:      Object,
	propertyType:    Property,
	methodType:      Method,
	infixMethodType: InfixMethod,
}

// Part is one segment of an expression.
type Part struct {
	kind Kind
	node syntax.Node
}

// PartOf returns the part represented by n. A leaf whose parent carries the same type
// resolves to the parent.
func PartOf(n syntax.Node) (*Part, bool) {
	if n == nil {
		return nil, false
	}
	kind, ok := kinds[n.Type()]
	if !ok {
		return nil, false
	}
	return &Part{kind: kind, node: canonical(n)}, true
}

func (p *Part) Kind() Kind {
	return p.kind
}

// Node returns the canonical syntax node of the part.
func (p *Part) Node() syntax.Node {
	return p.node
}

func (p *Part) Text() string {
	return p.node.Text()
}

func (p *Part) TextRange() position.TextRange {
	return p.node.TextRange()
}

func (p *Part) String() string {
	return p.kind.String() + " " + p.node.TextRange().String()
}

// RootPart returns the node anchoring the expression: the namespace part of a
// namespace:object pair, the object part itself, or for other kinds the root of the
// nearest object part among the preceding siblings. It returns nil when no object part
// precedes the part.
func (p *Part) RootPart() syntax.Node {
	if p.kind == Object {
		return objectRoot(p.node)
	}

	obj := findObjectPart(p.node)
	if obj == nil {
		return nil
	}
	return objectRoot(obj)
}

// TextRangeInExpression returns the span from the root part through this part. Method
// parts extend through their matching close bracket and infix methods through their
// argument. ok is false when the part has no root.
func (p *Part) TextRangeInExpression() (rng position.TextRange, ok bool) {
	root := p.RootPart()
	if root == nil {
		return position.TextRange{}, false
	}

	self := p.node.TextRange()
	if root == p.node {
		return self, true
	}

	end := self.End
	switch p.kind {
	case Method:
		end = methodEnd(p.node)
	case InfixMethod:
		end = infixEnd(p.node)
	}

	return position.TextRange{Start: root.TextRange().Start, End: end}, true
}

// Expression returns the source text of TextRangeInExpression, or "" without a root.
func (p *Part) Expression() string {
	rng, ok := p.TextRangeInExpression()
	if !ok {
		return ""
	}
	return rng.Slice(rootText(p.node))
}

// rootText returns the full text the node's offsets index into.
func rootText(n syntax.Node) string {
	for n.Parent() != nil {
		n = n.Parent()
	}
	return n.Text()
}

func canonical(n syntax.Node) syntax.Node {
	for {
		parent := n.Parent()
		if parent == nil || parent.Type() != n.Type() {
			return n
		}
		n = parent
	}
}

// isPart reports whether n is of type typ, or is a composite part whose first child is.
func isPart(n syntax.Node, typ *elements.ElementType) bool {
	if n.Type() == typ {
		return true
	}
	if _, wrapper := kinds[n.Type()]; !wrapper || n.IsLeaf() {
		return false
	}
	first := n.FirstChild()
	return first != nil && first.Type() == typ
}

func objectRoot(obj syntax.Node) syntax.Node {
	sep := obj.PrevSibling()
	if sep == nil || sep.Type() != colonSpaceType {
		return obj
	}
	ns := sep.PrevSibling()
	if ns == nil || !isPart(ns, namespaceType) {
		return obj
	}
	return ns
}

// findObjectPart returns the nearest preceding sibling that is an object part.
func findObjectPart(n syntax.Node) syntax.Node {
	for s := n.PrevSibling(); s != nil; s = s.PrevSibling() {
		if isPart(s, objectType) {
			return s
		}
	}
	return nil
}

// methodEnd returns the end of the bracket closing the call after a method name, or the
// method's own end when there is no call or it is not closed.
func methodEnd(method syntax.Node) int {
	self := method.TextRange().End

	next := method.NextSibling()
	if next == nil || next.Type() != openBracketType {
		return self
	}

	depth := 0
	for s := next; s != nil; s = s.NextSibling() {
		switch s.Type() {
		case openBracketType:
			depth++
		case closeBracketType:
			depth--
			if depth == 0 {
				return s.TextRange().End
			}
		}
	}
	return self
}

// infixEnd returns the end of the argument following a single whitespace token, or the
// method's own end.
func infixEnd(infix syntax.Node) int {
	self := infix.TextRange().End

	ws := infix.NextSibling()
	if ws == nil || ws.Type() != whitespaceType {
		return self
	}
	arg := ws.NextSibling()
	if arg == nil || arg.Type() == endDelimiterType || arg.Type() == whitespaceType {
		return self
	}
	return arg.TextRange().End
}
