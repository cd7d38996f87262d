package expr_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/goqute/pkg/elements"
	"github.com/walteh/goqute/pkg/expr"
	"github.com/walteh/goqute/pkg/position"
	"github.com/walteh/goqute/pkg/syntax"
	"github.com/walteh/goqute/pkg/template"
)

func build(t *testing.T, text string) *syntax.Tree {
	t.Helper()
	tree, err := syntax.Build(context.Background(), nil, text)
	require.NoError(t, err)
	return tree
}

func findPart(t *testing.T, tree *syntax.Tree, kind expr.Kind, text string) *expr.Part {
	t.Helper()
	for _, p := range expr.Parts(tree.Root()) {
		if p.Kind() == kind && p.Text() == text {
			return p
		}
	}
	require.Failf(t, "part not found", "%s %q", kind, text)
	return nil
}

func TestTextRangeInExpression(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		kind       expr.Kind
		part       string
		root       string
		expression string
	}{
		{name: "plain_object_is_own_root", input: "{task}", kind: expr.Object, part: "task", root: "task", expression: "task"},
		{name: "namespaced_object", input: "{uri:Todos}", kind: expr.Object, part: "Todos", root: "uri", expression: "uri:Todos"},
		{name: "property_chain", input: "{task.name}", kind: expr.Property, part: "name", root: "task", expression: "task.name"},
		{name: "long_property_chain", input: "{a.b.c.d}", kind: expr.Property, part: "c", root: "a", expression: "a.b.c"},
		{name: "method_call", input: "{list.get(0)}", kind: expr.Method, part: "get", root: "list", expression: "list.get(0)"},
		{name: "method_nested_brackets", input: "{map.get(list[0])}", kind: expr.Method, part: "get", root: "map", expression: "map.get(list[0])"},
		{name: "method_then_index", input: "{list.get(0)[1]}", kind: expr.Method, part: "get", root: "list", expression: "list.get(0)"},
		{name: "method_without_call", input: "{list.size}", kind: expr.Property, part: "size", root: "list", expression: "list.size"},
		{name: "unclosed_call", input: "{list.get(", kind: expr.Method, part: "get", root: "list", expression: "list.get"},
		{name: "unclosed_call_with_args", input: "{list.get(a, b", kind: expr.Method, part: "get", root: "list", expression: "list.get"},
		{name: "infix_with_argument", input: "{a plus b}", kind: expr.InfixMethod, part: "plus", root: "a", expression: "a plus b"},
		{name: "infix_without_argument", input: "{a plus}", kind: expr.InfixMethod, part: "plus", root: "a", expression: "a plus"},
		{name: "infix_trailing_space", input: "{a plus }", kind: expr.InfixMethod, part: "plus", root: "a", expression: "a plus"},
		{name: "infix_chain_argument", input: "{item.name or other.x}", kind: expr.InfixMethod, part: "or", root: "item", expression: "item.name or other.x"},
		{name: "elvis_operator", input: "{item.name ?: 'none'}", kind: expr.InfixMethod, part: "?:", root: "item", expression: "item.name ?: 'none'"},
		{name: "infix_argument_has_own_root", input: "{a or b.c}", kind: expr.Property, part: "c", root: "b", expression: "b.c"},
		{name: "method_argument_has_own_root", input: "{a.b(c.d)}", kind: expr.Property, part: "d", root: "c", expression: "c.d"},
		{name: "nearest_object_wins", input: "{a b.c}", kind: expr.Property, part: "c", root: "b", expression: "b.c"},
		{name: "section_parameter", input: "{#for item in order.items}{/for}", kind: expr.Property, part: "items", root: "order", expression: "order.items"},
		{name: "scenario_object", input: "{uri:Todos.getAll()[0].name}", kind: expr.Object, part: "Todos", root: "uri", expression: "uri:Todos"},
		{name: "scenario_method", input: "{uri:Todos.getAll()[0].name}", kind: expr.Method, part: "getAll", root: "uri", expression: "uri:Todos.getAll()"},
		{name: "scenario_property", input: "{uri:Todos.getAll()[0].name}", kind: expr.Property, part: "name", root: "uri", expression: "uri:Todos.getAll()[0].name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := build(t, tt.input)
			part := findPart(t, tree, tt.kind, tt.part)

			root := part.RootPart()
			require.NotNil(t, root, "root part")
			assert.Equal(t, tt.root, root.Text())

			rng, ok := part.TextRangeInExpression()
			require.True(t, ok)
			assert.Equal(t, tt.expression, rng.Slice(tt.input))
			assert.Equal(t, tt.expression, part.Expression())
		})
	}
}

func TestRootIdentity(t *testing.T) {
	tree := build(t, "{uri:Todos.getAll()[0].name} {task}")

	todos := findPart(t, tree, expr.Object, "Todos")
	name := findPart(t, tree, expr.Property, "name")
	assert.Equal(t, "namespace-part", todos.RootPart().Type().Name())
	assert.Equal(t, todos.RootPart(), name.RootPart(), "parts of one expression share a root node")

	task := findPart(t, tree, expr.Object, "task")
	assert.Equal(t, task.Node(), task.RootPart(), "a bare object is its own root")
}

func TestNoAnchor(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  expr.Kind
		part  string
	}{
		{name: "property_after_literal", input: "{'x'.length}", kind: expr.Property, part: "length"},
		{name: "leading_dot", input: "{.name}", kind: expr.Property, part: "name"},
		{name: "method_after_number", input: "{1.foo()}", kind: expr.Method, part: "foo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			part := findPart(t, build(t, tt.input), tt.kind, tt.part)
			assert.Nil(t, part.RootPart())

			_, ok := part.TextRangeInExpression()
			assert.False(t, ok)
			assert.Equal(t, "", part.Expression())
		})
	}
}

func TestAt(t *testing.T) {
	input := "<p>{task.name}</p>"
	tree := build(t, input)

	tests := []struct {
		offset int
		kind   expr.Kind
		text   string
		found  bool
	}{
		{offset: 0, found: false},
		{offset: 4, kind: expr.Object, text: "task", found: true},
		{offset: 8, kind: expr.Object, text: "task", found: true},
		{offset: 9, kind: expr.Property, text: "name", found: true},
		{offset: 13, kind: expr.Property, text: "name", found: true},
		{offset: 14, found: false},
	}

	for _, tt := range tests {
		p, ok := expr.At(tree, tt.offset)
		require.Equal(t, tt.found, ok, "offset %d", tt.offset)
		if !tt.found {
			continue
		}
		assert.Equal(t, tt.kind, p.Kind(), "offset %d", tt.offset)
		assert.Equal(t, tt.text, p.Text(), "offset %d", tt.offset)
	}
}

func TestParts(t *testing.T) {
	tree := build(t, "{uri:Todos.getAll()[0].name or x}")

	var got []string
	for _, p := range expr.Parts(tree.Root()) {
		got = append(got, p.String())
	}
	assert.Equal(t, []string{
		"object [5,10)",
		"method [11,17)",
		"property [23,27)",
		"infix-method [28,30)",
		"object [31,32)",
	}, got)
}

func TestPartOfRejectsOtherNodes(t *testing.T) {
	tree := build(t, "{uri:x}")
	_, ok := expr.PartOf(tree.LeafAt(1))
	assert.False(t, ok, "namespace part is not an expression part")
	_, ok = expr.PartOf(nil)
	assert.False(t, ok)
	assert.Equal(t, "unknown", expr.Kind(0).String())
}

// wrapped is a hand-built syntax node for shapes the parser does not emit.
type wrapped struct {
	typ      *elements.ElementType
	start    int
	end      int
	text     string
	parent   *wrapped
	index    int
	children []*wrapped
}

func (w *wrapped) Type() *elements.ElementType   { return w.typ }
func (w *wrapped) TextRange() position.TextRange { return position.NewTextRange(w.start, w.end) }
func (w *wrapped) Text() string                  { return w.text[w.start:w.end] }
func (w *wrapped) IsLeaf() bool                  { return len(w.children) == 0 }
func (w *wrapped) Source() *template.Node        { return nil }

func (w *wrapped) Parent() syntax.Node {
	if w.parent == nil {
		return nil
	}
	return w.parent
}

func (w *wrapped) Children() []syntax.Node {
	out := make([]syntax.Node, len(w.children))
	for i, c := range w.children {
		out[i] = c
	}
	return out
}

func (w *wrapped) FirstChild() syntax.Node {
	if len(w.children) == 0 {
		return nil
	}
	return w.children[0]
}

func (w *wrapped) PrevSibling() syntax.Node {
	if w.parent == nil || w.index == 0 {
		return nil
	}
	return w.parent.children[w.index-1]
}

func (w *wrapped) NextSibling() syntax.Node {
	if w.parent == nil || w.index+1 >= len(w.parent.children) {
		return nil
	}
	return w.parent.children[w.index+1]
}

func node(text, name string, start, end int, children ...*wrapped) *wrapped {
	w := &wrapped{typ: elements.TypeFor(name), start: start, end: end, text: text}
	for i, c := range children {
		c.parent, c.index = w, i
	}
	w.children = children
	return w
}

func TestCompositeWrappers(t *testing.T) {
	const text = "uri:Todos.name"

	nsLeaf := node(text, template.NameNamespacePart, 0, 3)
	objLeaf := node(text, template.NameObjectPart, 4, 9)
	propLeaf := node(text, template.NamePropertyPart, 10, 14)

	ns := node(text, template.NameNamespacePart, 0, 3, nsLeaf)
	obj := node(text, template.NameObjectPart, 4, 9, objLeaf)
	prop := node(text, template.NamePropertyPart, 10, 14, propLeaf)

	node(text, template.NameExpression, 0, 14,
		ns,
		node(text, template.NameColonSpace, 3, 4),
		obj,
		node(text, template.NameDot, 9, 10),
		prop,
	)

	objPart, ok := expr.PartOf(objLeaf)
	require.True(t, ok)
	assert.Same(t, obj, objPart.Node(), "leaf resolves to its same-typed wrapper")
	assert.Same(t, ns, objPart.RootPart())

	rng, ok := objPart.TextRangeInExpression()
	require.True(t, ok)
	assert.Equal(t, position.NewTextRange(0, 9), rng)
	assert.Equal(t, "uri:Todos", objPart.Expression())

	propPart, ok := expr.PartOf(propLeaf)
	require.True(t, ok)
	assert.Same(t, prop, propPart.Node())
	assert.Equal(t, expr.Property, propPart.Kind())
	assert.Same(t, ns, propPart.RootPart(), "object wrapper found through its first child")

	rng, ok = propPart.TextRangeInExpression()
	require.True(t, ok)
	assert.Equal(t, position.NewTextRange(0, 14), rng)
	assert.Equal(t, text, propPart.Expression())

	_, ok = expr.PartOf(node(text, template.NameDot, 9, 10))
	assert.False(t, ok)
}

func TestObjectFoundThroughFirstChild(t *testing.T) {
	const text = "uri:Todos.name"

	ns := node(text, template.NameNamespacePart, 0, 3)
	// a part wrapper of another kind whose first child is the object part
	chain := node(text, template.NamePropertyPart, 4, 9, node(text, template.NameObjectPart, 4, 9))
	name := node(text, template.NamePropertyPart, 10, 14)

	node(text, template.NameExpression, 0, 14,
		ns,
		node(text, template.NameColonSpace, 3, 4),
		chain,
		node(text, template.NameDot, 9, 10),
		name,
	)

	p, ok := expr.PartOf(name)
	require.True(t, ok)
	assert.Same(t, ns, p.RootPart())

	rng, ok := p.TextRangeInExpression()
	require.True(t, ok)
	assert.Equal(t, position.NewTextRange(0, 14), rng)

	// a non-part composite is never unwrapped
	other := node(text, template.NameInfixParameter, 4, 9, node(text, template.NameObjectPart, 4, 9))
	lone := node(text, template.NamePropertyPart, 10, 14)
	node(text, template.NameExpression, 4, 14, other, node(text, template.NameDot, 9, 10), lone)

	p, ok = expr.PartOf(lone)
	require.True(t, ok)
	assert.Nil(t, p.RootPart())
	_, ok = p.TextRangeInExpression()
	assert.False(t, ok)
}
