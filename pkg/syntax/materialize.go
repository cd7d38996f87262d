package syntax

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/goqute/pkg/elements"
	"github.com/walteh/goqute/pkg/template"
)

// Materialize converts a parsed node into a syntax node. A node without children becomes
// a leaf typed by its name. Otherwise it becomes a composite whose children are the
// materialized children with Content gap leaves covering any text between them.
// An empty node becomes a childless composite, so no leaf is ever zero length.
func Materialize(n *template.Node) Node {
	if len(n.Children()) == 0 && n.Start() < n.End() {
		return newLeaf(elements.TypeFor(n.Name()), n.Start(), n.End(), n.Template().Text(), n)
	}
	return materializeComposite(n)
}

func newLeaf(typ *elements.ElementType, start, end int, text string, source *template.Node) *Leaf {
	return &Leaf{base: base{typ: typ, start: start, end: end, text: text, source: source}}
}

func materializeComposite(n *template.Node) *Composite {
	text := n.Template().Text()
	c := &Composite{base: base{
		typ:    elements.TypeFor(n.Name()),
		start:  n.Start(),
		end:    n.End(),
		text:   text,
		source: n,
	}}

	cursor := n.Start()
	for _, child := range n.Children() {
		if child.Start() == child.End() {
			continue
		}
		if child.Start() > cursor {
			c.adopt(newLeaf(elements.Content, cursor, child.Start(), text, nil))
		}
		c.adopt(Materialize(child))
		cursor = child.End()
	}
	if cursor < n.End() {
		c.adopt(newLeaf(elements.Content, cursor, n.End(), text, nil))
	}
	return c
}

// Tree is the materialized form of one parse.
type Tree struct {
	root     *Composite
	template *template.Template
}

// Build parses text and materializes the whole template under a #template composite.
// Parse errors are returned as is; no partial tree is produced.
func Build(ctx context.Context, p *template.Parser, text string) (*Tree, error) {
	if p == nil {
		p = template.NewParser(template.DefaultOptions())
	}

	tmpl, err := p.Parse(ctx, text)
	if err != nil {
		return nil, errors.Errorf("building syntax tree: %w", err)
	}

	tree := &Tree{
		root:     materializeComposite(tmpl.Root()),
		template: tmpl,
	}

	zerolog.Ctx(ctx).Debug().
		Str("template_id", tmpl.ID.String()).
		Int("top_level", len(tree.root.children)).
		Msg("built syntax tree")

	return tree, nil
}

func (t *Tree) Root() *Composite {
	return t.root
}

func (t *Tree) Text() string {
	return t.template.Text()
}

func (t *Tree) Template() *template.Template {
	return t.template
}

// Generation identifies the parse the tree was built from. A re-parse of the same text
// yields a different generation.
func (t *Tree) Generation() uuid.UUID {
	return t.template.ID
}

// LeafAt returns the leaf containing offset, see LeafAt.
func (t *Tree) LeafAt(offset int) Node {
	return LeafAt(t.root, offset)
}
