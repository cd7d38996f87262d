// Package template parses Qute templates into a tree of named nodes.
//
// AST Structure:
//
//	#template
//	   ├── #text                       raw host-language text
//	   ├── #comment                    {! ... !}
//	   ├── #cdata                      {| ... |}
//	   ├── #parameter-declaration      {@org.acme.Item item}
//	   ├── #expression                 {uri:Todos.getAll()[0].name}
//	   │     ├── start-delimiter
//	   │     ├── namespace-part colon-space object-part
//	   │     ├── dot property-part | dot method-part open-bracket method-parameters close-bracket
//	   │     ├── whitespace infix-method-part whitespace infix-parameter
//	   │     └── end-delimiter
//	   └── #section                    {#each items}...{/each}
//	         ├── section-start-tag     start-delimiter section-tag whitespace parameter...
//	         ├── ... body nodes ...
//	         └── section-end-tag
//
// Every node carries byte offsets into the template text. Children are ordered,
// non-overlapping and contained in their parent.
package template

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/walteh/goqute/pkg/elements"
	"github.com/walteh/goqute/pkg/position"
)

// Node names produced by the parser.
const (
	NameTemplate             = "#template"
	NameText                 = elements.ContentName
	NameComment              = elements.CommentName
	NameCData                = "#cdata"
	NameExpression           = "#expression"
	NameSection              = "#section"
	NameParameterDeclaration = "#parameter-declaration"

	NameSectionStartTag = "section-start-tag"
	NameSectionEndTag   = "section-end-tag"
	NameSectionTag      = "section-tag"
	NameParameter       = "parameter"
	NameParameterName   = "parameter-name"
	NameParameterType   = "parameter-type"
	NameStartDelimiter  = "start-delimiter"
	NameEndDelimiter    = "end-delimiter"

	NameNamespacePart    = "namespace-part"
	NameColonSpace       = "colon-space"
	NameObjectPart       = "object-part"
	NamePropertyPart     = "property-part"
	NameMethodPart       = "method-part"
	NameInfixMethodPart  = "infix-method-part"
	NameInfixParameter   = "infix-parameter"
	NameMethodParameters = "method-parameters"

	NameWhitespace    = "whitespace"
	NameOpenBracket   = "open-bracket"
	NameCloseBracket  = "close-bracket"
	NameDot           = "dot"
	NameComma         = "comma"
	NameAssign        = "assign"
	NameOperator      = "operator"
	NameStringLiteral = "string-literal"
	NameNumberLiteral = "number-literal"
	NameUnknown       = "unknown"
)

// Node is one parsed unit of a template.
type Node struct {
	name     string
	start    int
	end      int
	parent   *Node
	children []*Node
	template *Template
}

func (n *Node) Name() string {
	return n.name
}

func (n *Node) Start() int {
	return n.start
}

func (n *Node) End() int {
	return n.end
}

// Parent returns the structural parent, or nil for the template root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the direct children in source order. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

func (n *Node) Template() *Template {
	return n.template
}

func (n *Node) TextRange() position.TextRange {
	return position.TextRange{Start: n.start, End: n.end}
}

// Text returns the source text covered by the node.
func (n *Node) Text() string {
	return n.template.text[n.start:n.end]
}

// Tag returns the section name of a #section, section-start-tag or section-end-tag node.
func (n *Node) Tag() string {
	switch n.name {
	case NameSection:
		if len(n.children) > 0 && n.children[0].name == NameSectionStartTag {
			return n.children[0].Tag()
		}
	case NameSectionStartTag, NameSectionEndTag:
		for _, c := range n.children {
			if c.name == NameSectionTag {
				return c.Text()
			}
		}
	}
	return ""
}

func (n *Node) String() string {
	return fmt.Sprintf("%s[%d,%d)", n.name, n.start, n.end)
}

// Walk calls fn for n and its descendants in document order. Returning false from fn
// skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		Walk(c, fn)
	}
}

// ProblemCode identifies a structural problem found while parsing.
type ProblemCode string

const (
	ProblemUnclosedExpression ProblemCode = "unclosed-expression"
	ProblemUnclosedSection    ProblemCode = "unclosed-section"
	ProblemUnclosedTag        ProblemCode = "unclosed-tag"
	ProblemUnclosedComment    ProblemCode = "unclosed-comment"
	ProblemUnclosedCData      ProblemCode = "unclosed-cdata"
	ProblemUnclosedBracket    ProblemCode = "unclosed-bracket"
	ProblemOrphanEndTag       ProblemCode = "orphan-end-tag"
	ProblemMissingSectionTag  ProblemCode = "missing-section-tag"
)

// Problem is a recoverable syntax problem. The parser records it and keeps going.
type Problem struct {
	Code    ProblemCode
	Message string
	Range   position.TextRange
}

func (p Problem) String() string {
	return fmt.Sprintf("%s %s: %s", p.Range, p.Code, p.Message)
}

// Template is the immutable result of one parse.
type Template struct {
	// ID identifies this parse; every call to Parse yields a fresh one.
	ID uuid.UUID

	text     string
	root     *Node
	problems []Problem
}

func (t *Template) Text() string {
	return t.text
}

// Root returns the #template node spanning the whole text.
func (t *Template) Root() *Node {
	return t.root
}

// Children returns the top-level nodes.
func (t *Template) Children() []*Node {
	return t.root.children
}

func (t *Template) Problems() []Problem {
	return t.problems
}

// NodeAt returns the deepest node whose range contains offset. An offset equal to the
// end of the text resolves to the deepest last node.
func (t *Template) NodeAt(offset int) *Node {
	if offset < 0 || offset > len(t.text) {
		return nil
	}

	current := t.root
	for {
		var next *Node
		for _, c := range current.children {
			if c.start <= offset && (offset < c.end || (offset == c.end && c.end == len(t.text))) {
				next = c
				break
			}
		}
		if next == nil {
			return current
		}
		current = next
	}
}
