package template_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/goqute/pkg/template"
)

// outline renders the tree below the root, one node per line, leaves with their text.
func outline(tmpl *template.Template) []string {
	var lines []string
	var visit func(n *template.Node, depth int)
	visit = func(n *template.Node, depth int) {
		indent := strings.Repeat("  ", depth)
		if len(n.Children()) == 0 {
			lines = append(lines, fmt.Sprintf("%s%s %q", indent, n.Name(), n.Text()))
			return
		}
		lines = append(lines, indent+n.Name())
		for _, c := range n.Children() {
			visit(c, depth+1)
		}
	}
	for _, c := range tmpl.Children() {
		visit(c, 0)
	}
	return lines
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "plain_text",
			input:    "<p>hi</p>",
			expected: []string{`#text "<p>hi</p>"`},
		},
		{
			name:  "namespace_method_index_property",
			input: "{uri:Todos.getAll()[0].name}",
			expected: []string{
				"#expression",
				`  start-delimiter "{"`,
				`  namespace-part "uri"`,
				`  colon-space ":"`,
				`  object-part "Todos"`,
				`  dot "."`,
				`  method-part "getAll"`,
				`  open-bracket "("`,
				`  close-bracket ")"`,
				`  open-bracket "["`,
				"  method-parameters",
				`    number-literal "0"`,
				`  close-bracket "]"`,
				`  dot "."`,
				`  property-part "name"`,
				`  end-delimiter "}"`,
			},
		},
		{
			name:  "method_arguments",
			input: "{item.price(a, 'b')}",
			expected: []string{
				"#expression",
				`  start-delimiter "{"`,
				`  object-part "item"`,
				`  dot "."`,
				`  method-part "price"`,
				`  open-bracket "("`,
				"  method-parameters",
				`    object-part "a"`,
				`    comma ","`,
				`    whitespace " "`,
				`    string-literal "'b'"`,
				`  close-bracket ")"`,
				`  end-delimiter "}"`,
			},
		},
		{
			name:  "infix_method",
			input: "{item.name or 'N/A'}",
			expected: []string{
				"#expression",
				`  start-delimiter "{"`,
				`  object-part "item"`,
				`  dot "."`,
				`  property-part "name"`,
				`  whitespace " "`,
				`  infix-method-part "or"`,
				`  whitespace " "`,
				"  infix-parameter",
				`    string-literal "'N/A'"`,
				`  end-delimiter "}"`,
			},
		},
		{
			name:  "section_with_body",
			input: "<ul>{#for item in items}<li>{item}</li>{/for}</ul>",
			expected: []string{
				`#text "<ul>"`,
				"#section",
				"  section-start-tag",
				`    start-delimiter "{#"`,
				`    section-tag "for"`,
				`    whitespace " "`,
				"    parameter",
				`      object-part "item"`,
				`    whitespace " "`,
				"    parameter",
				`      object-part "in"`,
				`    whitespace " "`,
				"    parameter",
				`      object-part "items"`,
				`    end-delimiter "}"`,
				`  #text "<li>"`,
				"  #expression",
				`    start-delimiter "{"`,
				`    object-part "item"`,
				`    end-delimiter "}"`,
				`  #text "</li>"`,
				"  section-end-tag",
				`    start-delimiter "{/"`,
				`    section-tag "for"`,
				`    end-delimiter "}"`,
				`#text "</ul>"`,
			},
		},
		{
			name:  "let_assignment",
			input: "{#let x=1 /}",
			expected: []string{
				"#section",
				"  section-start-tag",
				`    start-delimiter "{#"`,
				`    section-tag "let"`,
				`    whitespace " "`,
				"    parameter",
				`      parameter-name "x"`,
				`      assign "="`,
				`      number-literal "1"`,
				`    whitespace " "`,
				`    end-delimiter "/}"`,
			},
		},
		{
			name:  "parameter_declaration",
			input: "{@java.util.List<String> items}",
			expected: []string{
				"#parameter-declaration",
				`  start-delimiter "{@"`,
				`  parameter-type "java.util.List<String>"`,
				`  whitespace " "`,
				`  parameter-name "items"`,
				`  end-delimiter "}"`,
			},
		},
		{
			name:  "comment_and_cdata",
			input: "{! note !}{|{raw}|}",
			expected: []string{
				`#comment "{! note !}"`,
				`#cdata "{|{raw}|}"`,
			},
		},
		{
			name:  "block_label_stays_in_section",
			input: "{#if a}x{#else}y{/}",
			expected: []string{
				"#section",
				"  section-start-tag",
				`    start-delimiter "{#"`,
				`    section-tag "if"`,
				`    whitespace " "`,
				"    parameter",
				`      object-part "a"`,
				`    end-delimiter "}"`,
				`  #text "x"`,
				"  section-start-tag",
				`    start-delimiter "{#"`,
				`    section-tag "else"`,
				`    end-delimiter "}"`,
				`  #text "y"`,
				"  section-end-tag",
				`    start-delimiter "{/"`,
				`    end-delimiter "}"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := template.Parse(context.Background(), tt.input)
			require.NoError(t, err, "parsing should succeed")
			assert.Empty(t, tmpl.Problems(), "no problems expected")
			assert.Equal(t, tt.expected, outline(tmpl))
		})
	}
}

func TestParseInvariants(t *testing.T) {
	inputs := []string{
		"{uri:Todos.getAll()[0].name}",
		"<ul>{#for item in items}<li>{item.name ?: 'x'}</li>{/for}</ul>",
		"{#if a}{#each b}{it}{/each}{#else}{c.d(e.f(g), h)}{/if}",
		"{list.get(",
		"text {#if open}{!unclosed",
		"{/orphan} {@Type name='x'}",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			tmpl, err := template.Parse(context.Background(), input)
			require.NoError(t, err)

			root := tmpl.Root()
			assert.Equal(t, 0, root.Start())
			assert.Equal(t, len(input), root.End())
			assert.Nil(t, root.Parent())

			template.Walk(root, func(n *template.Node) bool {
				prev := n.Start()
				for _, c := range n.Children() {
					assert.Same(t, n, c.Parent(), "parent link of %s", c)
					assert.GreaterOrEqual(t, c.Start(), prev, "%s is ordered within %s", c, n)
					assert.LessOrEqual(t, c.End(), n.End(), "%s is contained in %s", c, n)
					prev = c.End()
				}
				return true
			})
		})
	}
}

func TestParseProblems(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []template.ProblemCode
	}{
		{name: "unclosed_expression", input: "{list.get(", expected: []template.ProblemCode{template.ProblemUnclosedBracket, template.ProblemUnclosedExpression}},
		{name: "unclosed_section", input: "{#if a}x", expected: []template.ProblemCode{template.ProblemUnclosedSection}},
		{name: "unclosed_comment", input: "a{! b", expected: []template.ProblemCode{template.ProblemUnclosedComment}},
		{name: "unclosed_cdata", input: "{| b", expected: []template.ProblemCode{template.ProblemUnclosedCData}},
		{name: "orphan_end_tag", input: "x{/if}", expected: []template.ProblemCode{template.ProblemOrphanEndTag}},
		{name: "mismatched_inner_section", input: "{#if a}{#each b}{/if}", expected: []template.ProblemCode{template.ProblemUnclosedSection}},
		{name: "unclosed_tag", input: "{#if a", expected: []template.ProblemCode{template.ProblemUnclosedTag}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := template.Parse(context.Background(), tt.input)
			require.NoError(t, err, "problems are not errors")

			var codes []template.ProblemCode
			for _, p := range tmpl.Problems() {
				codes = append(codes, p.Code)
			}
			assert.Equal(t, tt.expected, codes)
		})
	}
}

func TestParseUnclosedSectionEndsAtLastChild(t *testing.T) {
	tmpl, err := template.Parse(context.Background(), "{#if a}body")
	require.NoError(t, err)

	section := tmpl.Children()[0]
	assert.Equal(t, template.NameSection, section.Name())
	assert.Equal(t, "if", section.Tag())
	assert.Equal(t, "{#if a}body", section.Text())
}

func TestParseErrors(t *testing.T) {
	t.Run("invalid_utf8", func(t *testing.T) {
		_, err := template.Parse(context.Background(), "a\xffb")
		require.ErrorIs(t, err, template.ErrInvalidUTF8)
	})

	t.Run("max_depth", func(t *testing.T) {
		p := template.NewParser(template.Options{MaxDepth: 3})
		_, err := p.Parse(context.Background(), "{a(b(c(d(e))))}")
		require.ErrorIs(t, err, template.ErrMaxDepth)

		_, err = p.Parse(context.Background(), "{#a}{#b}{#c}{#d}{/d}{/c}{/b}{/a}")
		require.ErrorIs(t, err, template.ErrMaxDepth)
	})

	t.Run("fresh_id_per_parse", func(t *testing.T) {
		a, err := template.Parse(context.Background(), "x")
		require.NoError(t, err)
		b, err := template.Parse(context.Background(), "x")
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})
}

func TestNodeAt(t *testing.T) {
	input := "ab{c.d}"
	tmpl, err := template.Parse(context.Background(), input)
	require.NoError(t, err)

	tests := []struct {
		offset   int
		expected string
	}{
		{offset: 0, expected: "#text"},
		{offset: 2, expected: "start-delimiter"},
		{offset: 3, expected: "object-part"},
		{offset: 5, expected: "property-part"},
		{offset: 6, expected: "end-delimiter"},
		{offset: 7, expected: "end-delimiter"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.offset), func(t *testing.T) {
			n := tmpl.NodeAt(tt.offset)
			require.NotNil(t, n)
			assert.Equal(t, tt.expected, n.Name())
		})
	}

	assert.Nil(t, tmpl.NodeAt(-1))
	assert.Nil(t, tmpl.NodeAt(len(input)+1))
}
