// Package splice separates a template document into host-language text and template
// content so that two grammars can share one buffer.
package splice

import (
	"strings"

	"github.com/walteh/goqute/pkg/elements"
	"github.com/walteh/goqute/pkg/position"
	"github.com/walteh/goqute/pkg/syntax"
	"github.com/walteh/goqute/pkg/template"
)

// Kind says which grammar owns a span.
type Kind int

const (
	Template Kind = iota
	OuterLanguage
)

func (k Kind) String() string {
	if k == OuterLanguage {
		return "outer-language"
	}
	return "template"
}

var sectionType = elements.TypeFor(template.NameSection)

// Classify maps an element type to the grammar that owns it. Only content is host text.
func Classify(typ *elements.ElementType) Kind {
	if typ == elements.Content {
		return OuterLanguage
	}
	return Template
}

// MarkerFor returns the element type a grammar uses to mark the other grammar's zones.
func MarkerFor(k Kind) *elements.ElementType {
	if k == OuterLanguage {
		return elements.OuterLanguageBlock
	}
	return elements.TemplateData
}

// Span is a maximal run of text owned by one grammar.
type Span struct {
	Kind  Kind
	Range position.TextRange
}

// Marker is the element type marking the span in the other grammar's tree.
func (s Span) Marker() *elements.ElementType {
	return MarkerFor(s.Kind)
}

// Spans partitions the document into ordered, adjacent spans. A leaf is host text when
// it is content and sits directly in the root or in section bodies.
func Spans(tree *syntax.Tree) []Span {
	var spans []Span
	for _, leaf := range syntax.Leaves(tree.Root()) {
		kind := Template
		if Classify(leaf.Type()) == OuterLanguage && inBody(leaf) {
			kind = OuterLanguage
		}

		rng := leaf.TextRange()
		if n := len(spans); n > 0 && spans[n-1].Kind == kind {
			spans[n-1].Range.End = rng.End
			continue
		}
		spans = append(spans, Span{Kind: kind, Range: rng})
	}
	return spans
}

func inBody(n syntax.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Parent() != nil && p.Type() != sectionType {
			return false
		}
	}
	return true
}

// SpanAt returns the span containing offset. The end of the document belongs to the
// last span.
func SpanAt(spans []Span, offset int) (Span, bool) {
	for i, s := range spans {
		if s.Range.Contains(offset) && (offset < s.Range.End || i == len(spans)-1) {
			return s, true
		}
	}
	return Span{}, false
}

// HostText returns the document with template spans blanked, keeping offsets and lines.
func HostText(tree *syntax.Tree) string {
	return view(tree, OuterLanguage)
}

// TemplateText returns the document with host spans blanked, keeping offsets and lines.
func TemplateText(tree *syntax.Tree) string {
	return view(tree, Template)
}

func view(tree *syntax.Tree, keep Kind) string {
	text := tree.Text()

	var sb strings.Builder
	sb.Grow(len(text))
	for _, s := range Spans(tree) {
		chunk := s.Range.Slice(text)
		if s.Kind == keep {
			sb.WriteString(chunk)
			continue
		}
		sb.WriteString(blank(chunk))
	}
	return sb.String()
}

// blank replaces every byte except line breaks with a space so byte offsets survive.
func blank(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c != '\n' && c != '\r' {
			b[i] = ' '
		}
	}
	return string(b)
}
